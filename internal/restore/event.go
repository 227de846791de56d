package restore

// Request describes one restoration run. It is immutable once the run
// starts; retries are the caller's business and require a fresh RunID.
type Request struct {
	// RunID uniquely identifies this invocation. Filled with a fresh UUID
	// when empty.
	RunID string
	// InputPath is an image file or a folder of images.
	InputPath string
	// OutputFolder overrides the default output location. Relative paths
	// are resolved against the pipeline project root; empty selects
	// <root>/output_gui.
	OutputFolder string
	// GPU is the pipeline's GPU selector, e.g. "-1" for CPU.
	GPU string
	// WithScratch enables scratch removal in the worker.
	WithScratch bool
	// HR enables the high-resolution variant.
	HR bool
	// Python is the interpreter used to launch the worker.
	Python string
}

// Result is produced once, on success only.
type Result struct {
	OutputPath string `json:"outputPath"`
}

// Event is one progress record for a run, emitted in arrival order. Stage
// is nil only before the run's own "Starting..." marker; stderr lines carry
// IsError without failing the run.
type Event struct {
	RunID   string `json:"runId"`
	Stage   *int   `json:"stage"`
	Message string `json:"message"`
	IsError bool   `json:"isError"`
}

// Sink receives progress events for the duration of a run. Implementations
// must be safe for concurrent use when runs share one sink; events of one
// run arrive from that run's goroutine in emission order.
type Sink func(Event)
