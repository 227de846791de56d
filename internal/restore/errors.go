package restore

import (
	"errors"
	"fmt"
)

// Terminal run errors. None are retried internally; the caller decides
// whether to retry with a new RunID.
var (
	// ErrInputNotFound — the request's input path does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrScriptMissing — the pipeline entry script is absent from the
	// project root.
	ErrScriptMissing = errors.New("pipeline entry script not found")

	// ErrSpawn — the worker process could not be started.
	ErrSpawn = errors.New("failed to start worker")

	// ErrNoOutput — the worker exited cleanly but left no artifact in the
	// final output directory.
	ErrNoOutput = errors.New("no output image produced")
)

// ExitError reports a worker process that terminated with a non-zero or
// abnormal status.
type ExitError struct {
	// Status is the exit status text, e.g. "exit status 1".
	Status string
	// Stage is the last classified stage when the worker died, nil if the
	// run never reached the starting marker.
	Stage *int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("Python exited with status: %s", e.Status)
}
