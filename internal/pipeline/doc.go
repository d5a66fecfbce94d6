// Package pipeline orchestrates a batch: task discovery, output tree
// preparation, parallel processing through the scheduler, and the
// end-of-run summary.
//
// Files:
//   - discover.go: class folders and image files → []task.Task
//   - runner.go:   Run, the batch entry point
//   - stats.go:    RunStats aggregated from results
//   - analyze.go:  --analyze header report with IQR outlier flags
package pipeline
