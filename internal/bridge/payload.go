package bridge

import (
	"errors"
	"fmt"

	"github.com/vk/restobridge/internal/config"
	"github.com/vk/restobridge/internal/restore"
)

// decodeArgs converts the raw modify_photo payload into a restore.Request,
// filling unset options from the configured pipeline defaults. socket.io
// delivers JSON objects as map[string]any; keys are camelCase to match the
// webview side.
func decodeArgs(raw any, defaults config.PipelineSettings) (restore.Request, error) {
	req := restore.Request{
		OutputFolder: defaults.OutputFolder,
		GPU:          defaults.GPU,
		WithScratch:  defaults.WithScratch,
		HR:           defaults.HR,
		Python:       defaults.Python,
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return req, fmt.Errorf("expected an arguments object, got %T", raw)
	}

	if v, ok := m["runId"].(string); ok {
		req.RunID = v
	}
	if v, ok := m["inputPath"].(string); ok {
		req.InputPath = v
	}
	if v, ok := m["outputFolder"].(string); ok && v != "" {
		req.OutputFolder = v
	}
	if v, ok := m["gpu"].(string); ok && v != "" {
		req.GPU = v
	}
	if v, ok := m["withScratch"].(bool); ok {
		req.WithScratch = v
	}
	if v, ok := m["hr"].(bool); ok {
		req.HR = v
	}
	if v, ok := m["python"].(string); ok && v != "" {
		req.Python = v
	}

	if req.InputPath == "" {
		return req, errors.New("inputPath is required")
	}
	return req, nil
}

// progressPayload mirrors the desktop shell's event shape: camelCase keys,
// null stage for unclassified lines.
func progressPayload(ev restore.Event) map[string]any {
	var stage any
	if ev.Stage != nil {
		stage = *ev.Stage
	}
	return map[string]any{
		"runId":   ev.RunID,
		"stage":   stage,
		"message": ev.Message,
		"isError": ev.IsError,
	}
}
