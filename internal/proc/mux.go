package proc

import (
	"bufio"
	"context"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vk/restobridge/internal/ctxlog"
)

// Line is one line of worker output tagged with its origin stream.
type Line struct {
	Text   string
	Stderr bool
}

// StreamLines concurrently drains stdout and stderr line by line into a
// single channel. Per-stream order is preserved; the two streams interleave
// by arrival time with no cross-stream ordering guarantee. The channel is
// closed once both streams reach EOF, which is the caller's signal that no
// line has been lost. The returned wait function reports the first read
// error, if any; such errors are best-effort diagnostics, never fatal.
func StreamLines(ctx context.Context, stdout, stderr io.Reader) (<-chan Line, func() error) {
	lines := make(chan Line, 64)

	g := new(errgroup.Group)
	g.Go(func() error { return readInto(stdout, false, lines) })
	g.Go(func() error { return readInto(stderr, true, lines) })

	go func() {
		if err := g.Wait(); err != nil {
			ctxlog.FromContext(ctx).Debug("Worker output read ended early.", "error", err)
		}
		close(lines)
	}()

	return lines, g.Wait
}

// readInto reads r to EOF, sending each line to out tagged with its origin.
// Lines have no length bound: the pipeline occasionally dumps long tensors
// on stderr, and every stream must be consumed to end-of-stream regardless
// or the worker blocks on a full pipe and never exits.
func readInto(r io.Reader, fromStderr bool, out chan<- Line) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		text, err := reader.ReadString('\n')
		if text != "" {
			out <- Line{Text: strings.TrimRight(text, "\r\n"), Stderr: fromStderr}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
