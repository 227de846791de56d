package restore

import "strings"

// stageMarkers are the literal substrings the worker prints when it enters
// a pipeline phase. Classification is a best-effort heuristic over free-form
// log output; it never fails, it only declines to classify.
var stageMarkers = [...]string{
	"Running Stage 1",
	"Running Stage 2",
	"Running Stage 3",
	"Running Stage 4",
}

// StageFromLine reports the pipeline stage (1-4) a raw output line
// announces. ok is false for ordinary log chatter.
func StageFromLine(line string) (stage int, ok bool) {
	for i, marker := range stageMarkers {
		if strings.Contains(line, marker) {
			return i + 1, true
		}
	}
	return 0, false
}
