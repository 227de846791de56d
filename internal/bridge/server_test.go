package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	sioclient "github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/restobridge/internal/config"
)

// testBridgePort is fixed because the engine.io listener takes an address,
// not a listener; chosen high to avoid collisions.
const testBridgePort = 19547

const bridgeWorkerScript = `#!/bin/sh
echo "Running Stage 1: Overall restoration"
echo "Running Stage 4: Blending"
echo "restored" > "$4/final_output/result.png"
`

// waitForHealth polls the bridge's health endpoint until it answers.
func waitForHealth(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(addr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("bridge server did not become healthy at %s", addr)
}

func TestServer_ModifyPhotoRoundTrip(t *testing.T) {
	// Not parallel: binds a fixed local port.

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "run.py"), []byte(bridgeWorkerScript), 0o755))
	input := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(input, []byte("image-bytes"), 0o644))

	settings := config.Settings{
		Pipeline: config.PipelineSettings{
			Root:        root,
			Script:      "run.py",
			Python:      "/bin/sh",
			GPU:         "-1",
			WithScratch: true,
		},
		Bridge: config.BridgeSettings{Port: testBridgePort},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(settings, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Run(ctx) }()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", testBridgePort)
	waitForHealth(t, baseURL)

	opts := sioclient.DefaultOptions()
	opts.SetTransports(types.NewSet(transports.WebSocket))
	manager := sioclient.NewManager(baseURL, opts)
	client := manager.Socket("/", opts)
	defer client.Disconnect()

	toMap := func(data ...any) map[string]any {
		if len(data) > 0 {
			if m, ok := data[0].(map[string]any); ok {
				return m
			}
		}
		return nil
	}

	progress := make(chan map[string]any, 64)
	resultCh := make(chan map[string]any, 1)
	errCh := make(chan map[string]any, 1)

	client.On(types.EventName(eventProgress), func(data ...any) { progress <- toMap(data...) })
	client.On(types.EventName(eventResult), func(data ...any) { resultCh <- toMap(data...) })
	client.On(types.EventName(eventError), func(data ...any) { errCh <- toMap(data...) })
	client.On(types.EventName("connect"), func(...any) {
		client.Emit(eventModify, map[string]any{
			"runId":     "run-live",
			"inputPath": input,
		})
	})
	client.Connect()

	select {
	case res := <-resultCh:
		require.NotNil(t, res)
		assert.Equal(t, "run-live", res["runId"])
		outputPath, _ := res["outputPath"].(string)
		assert.Equal(t, filepath.Join(root, "output_gui", "final_output", "result.png"), outputPath)
	case ev := <-errCh:
		t.Fatalf("run failed: %v", ev)
	case <-time.After(20 * time.Second):
		t.Fatal("timed out waiting for modify_result")
	}

	// The progress stream must have carried the run's start and end markers.
	messages := map[string]bool{}
drain:
	for {
		select {
		case ev := <-progress:
			if ev != nil && ev["runId"] == "run-live" {
				messages[fmt.Sprint(ev["message"])] = true
			}
		default:
			break drain
		}
	}
	assert.True(t, messages["Starting..."], "expected a Starting... progress event")
	assert.True(t, messages["Done"], "expected a Done progress event")
}
