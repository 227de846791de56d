// Package restore orchestrates one end-to-end run of the old-photo
// restoration pipeline: it stages the input, resets the per-stage output
// directories, spawns the Python worker, folds its output stream into
// classified progress events, and recovers the final artifact.
//
// Progress is delivered through an abstract Sink so the package never
// assumes a particular UI runtime; the bridge server and the one-shot CLI
// both plug their own sinks in.
package restore
