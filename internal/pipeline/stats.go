package pipeline

import (
	"time"

	"github.com/backmassage/pixelbatch/internal/task"
)

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int
	Succeeded        int
	Failed           int
	MissingClasses   int
	TotalInputBytes  int64 // successful tasks only
	TotalOutputBytes int64
	Elapsed          time.Duration
}

// Add folds one result into the counters.
func (s *RunStats) Add(res task.Result) {
	s.Total++
	if !res.IsSuccess() {
		s.Failed++
		return
	}
	s.Succeeded++
	s.TotalInputBytes += res.InputSize
	s.TotalOutputBytes += res.OutputSize
}

// SizeDelta returns the aggregate byte difference between outputs and
// inputs of successful tasks. Positive means the outputs grew.
func (s *RunStats) SizeDelta() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}
