package proc

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/vk/restobridge/internal/ctxlog"
)

// Spec fully describes one worker invocation. All fields except the
// conditional flags are required; argument construction is deterministic
// from the populated struct.
type Spec struct {
	// Python is the interpreter used to launch the worker.
	Python string
	// Script is the absolute path of the pipeline entry script.
	Script string
	// Dir is the working directory for the worker, normally the pipeline
	// project root.
	Dir string

	InputFolder  string
	OutputFolder string
	GPU          string
	WithScratch  bool
	HR           bool
}

// Args returns the argument vector passed to the interpreter. The -u flag
// and the PYTHONUNBUFFERED environment variable both force unbuffered
// output so progress lines arrive as they are printed instead of batched
// at process exit.
func (s Spec) Args() []string {
	args := []string{
		"-u",
		s.Script,
		"--input_folder", s.InputFolder,
		"--output_folder", s.OutputFolder,
		"--GPU", s.GPU,
	}
	if s.WithScratch {
		args = append(args, "--with_scratch")
	}
	if s.HR {
		args = append(args, "--HR")
	}
	return args
}

// Worker is a spawned restoration process with piped output streams. Both
// streams must be read to EOF before Wait is called; StreamLines takes care
// of that for the normal path.
type Worker struct {
	cmd    *exec.Cmd
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// Start spawns the worker described by spec with piped stdout and stderr.
// The process is intentionally not bound to ctx: once spawned it runs to
// completion or failure and cannot be aborted. ctx is used for logging only.
func Start(ctx context.Context, spec Spec) (*Worker, error) {
	logger := ctxlog.FromContext(ctx)

	cmd := exec.Command(spec.Python, spec.Args()...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to capture worker stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to capture worker stderr: %w", err)
	}

	logger.Debug("Spawning worker process.", "python", spec.Python, "args", cmd.Args, "dir", spec.Dir)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", spec.Python, err)
	}
	logger.Debug("Worker process started.", "pid", cmd.Process.Pid)

	return &Worker{cmd: cmd, Stdout: stdout, Stderr: stderr}, nil
}

// Wait blocks until the worker exits and returns the exit result. Callers
// must have drained both pipes first; Wait closes them.
func (w *Worker) Wait() error {
	return w.cmd.Wait()
}
