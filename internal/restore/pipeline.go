package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vk/restobridge/internal/ctxlog"
	"github.com/vk/restobridge/internal/fsutil"
	"github.com/vk/restobridge/internal/proc"
)

// DefaultScript is the pipeline entry script name.
const DefaultScript = "run.py"

// defaultPollInterval bounds how long the drain loop blocks on worker
// output before it logs a liveness breadcrumb.
const defaultPollInterval = 200 * time.Millisecond

// Pipeline runs restoration requests against one pipeline installation.
// A single Pipeline serves concurrent runs as long as their output folders
// are disjoint; runs share no mutable state beyond the filesystem.
type Pipeline struct {
	root         string
	script       string
	sink         Sink
	pollInterval time.Duration
}

// NewPipeline returns a Pipeline rooted at the given project directory.
// script is the entry script file name relative to root; empty selects
// DefaultScript. sink may be nil, which discards progress.
func NewPipeline(root, script string, sink Sink) *Pipeline {
	if script == "" {
		script = DefaultScript
	}
	return &Pipeline{
		root:         root,
		script:       script,
		sink:         sink,
		pollInterval: defaultPollInterval,
	}
}

func (p *Pipeline) emit(ev Event) {
	if p.sink != nil {
		p.sink(ev)
	}
}

// fail surfaces err as a final error-flagged event before returning it, so
// the consumer has a human-readable trace alongside the run-level failure.
func (p *Pipeline) fail(req Request, stage *int, err error) error {
	p.emit(Event{RunID: req.RunID, Stage: stage, Message: err.Error(), IsError: true})
	return err
}

// stageRef returns a pointer to its own copy of n, so later updates to the
// current stage never mutate events already emitted.
func stageRef(n int) *int {
	return &n
}

// resolveOutputFolder applies the override rules: empty selects the default
// under the project root, relative paths resolve against the root, absolute
// paths are taken as-is.
func (p *Pipeline) resolveOutputFolder(override string) string {
	override = strings.TrimSpace(override)
	switch {
	case override == "":
		return filepath.Join(p.root, defaultOutputDirName)
	case filepath.IsAbs(override):
		return override
	default:
		return filepath.Join(p.root, override)
	}
}

// Modify runs one restoration end to end and returns the final artifact
// path. The run is at-most-once: no step is retried, and once the worker is
// spawned it cannot be aborted — ctx carries the logger, not a cancel
// signal. Every terminal failure is first surfaced as an error-flagged
// progress event.
//
// Partially created directories are intentionally left in place on failure;
// they double as diagnostic artifacts, and the next run resets them.
func (p *Pipeline) Modify(ctx context.Context, req Request) (*Result, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	logger := ctxlog.FromContext(ctx).With("run_id", req.RunID)
	ctx = ctxlog.WithLogger(ctx, logger)

	stage := stageRef(0)
	p.emit(Event{RunID: req.RunID, Stage: stage, Message: "Starting..."})
	logger.Info("🎞 Restoration run starting.", "input", req.InputPath)

	outputFolder := p.resolveOutputFolder(req.OutputFolder)
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return nil, p.fail(req, stage, fmt.Errorf("failed to create output folder: %w", err))
	}

	info, err := os.Stat(req.InputPath)
	if err != nil {
		return nil, p.fail(req, stage, fmt.Errorf("%w: %s", ErrInputNotFound, req.InputPath))
	}

	inputFolder, err := filepath.Abs(req.InputPath)
	if err != nil {
		return nil, p.fail(req, stage, fmt.Errorf("failed to resolve input path: %w", err))
	}
	if !info.IsDir() {
		if inputFolder, err = stageSingleInput(inputFolder, outputFolder); err != nil {
			return nil, p.fail(req, stage, err)
		}
	}

	if err := resetStageDirs(outputFolder); err != nil {
		return nil, p.fail(req, stage, err)
	}

	scriptPath := filepath.Join(p.root, p.script)
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, p.fail(req, stage, fmt.Errorf("%w: %s", ErrScriptMissing, scriptPath))
	}

	worker, err := proc.Start(ctx, proc.Spec{
		Python:       req.Python,
		Script:       scriptPath,
		Dir:          p.root,
		InputFolder:  inputFolder,
		OutputFolder: outputFolder,
		GPU:          req.GPU,
		WithScratch:  req.WithScratch,
		HR:           req.HR,
	})
	if err != nil {
		return nil, p.fail(req, stage, fmt.Errorf("%w: %w", ErrSpawn, err))
	}

	lines, join := proc.StreamLines(ctx, worker.Stdout, worker.Stderr)

	// Wait may only run after both streams reach EOF: it closes the pipes,
	// and any buffered output still in them would be lost.
	waitCh := make(chan error, 1)
	go func() {
		if err := join(); err != nil {
			logger.Debug("Worker output readers finished with error.", "error", err)
		}
		waitCh <- worker.Wait()
	}()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Fold the merged output stream into the current known stage: a later
	// classified stage overwrites, an unclassified line keeps the prior one.
	var exitErr error
	exited := false
	for lines != nil || !exited {
		select {
		case l, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if s, ok := StageFromLine(l.Text); ok {
				stage = stageRef(s)
				logger.Info("Pipeline entered stage.", "stage", s)
			}
			p.emit(Event{RunID: req.RunID, Stage: stage, Message: l.Text, IsError: l.Stderr})
		case exitErr = <-waitCh:
			exited = true
			waitCh = nil
		case <-ticker.C:
			logger.Debug("Worker still running.", "stage", *stage)
		}
	}

	if exitErr != nil {
		var xe *exec.ExitError
		if errors.As(exitErr, &xe) {
			werr := &ExitError{Status: xe.Error(), Stage: stage}
			logger.Error("Worker exited with failure.", "status", xe.Error())
			p.emit(Event{RunID: req.RunID, Stage: stage, Message: werr.Error(), IsError: true})
			return nil, werr
		}
		return nil, p.fail(req, stage, fmt.Errorf("failed to wait for worker: %w", exitErr))
	}

	finalDir := filepath.Join(outputFolder, finalDirName)
	latest, err := fsutil.LatestFile(finalDir)
	if err != nil {
		return nil, p.fail(req, stage, err)
	}
	if latest == "" {
		return nil, p.fail(req, stage, fmt.Errorf("%w under %s", ErrNoOutput, finalDir))
	}

	p.emit(Event{RunID: req.RunID, Stage: stageRef(4), Message: "Done"})
	logger.Info("🏁 Restoration run finished.", "output", latest)
	return &Result{OutputPath: latest}, nil
}
