// Package proc spawns the external restoration worker and multiplexes its
// stdout and stderr streams into a single ordered line channel. It knows
// nothing about pipeline stages or progress events; it only owns the process
// and its pipes.
package proc
