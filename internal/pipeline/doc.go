// Package pipeline runs the feature collectors for one URL and merges
// their output.
//
// Every collector runs in its own goroutine under its own deadline. A
// collector that fails, times out or panics contributes its default
// features and a degraded Result; it never cancels its siblings and never
// fails the analysis. The merged vector is assembled in registration order
// once all collectors have returned, so the output does not depend on which
// goroutine finished first.
//
// BatchProcessor applies a per-URL function to many URLs with bounded
// concurrency and is used by the analyze command.
package pipeline
