package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one task execution.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is produced exactly once per executed task.
type Result struct {
	TaskID     uuid.UUID
	Label      string // class/filename
	Status     Status
	OutputPath string // set on success
	Err        error  // set on error
	InputSize  int64
	OutputSize int64
	Elapsed    time.Duration
	FinishedAt time.Time
}

// Succeeded builds a success result for t written to outputPath.
func Succeeded(t Task, outputPath string) Result {
	return Result{
		TaskID:     t.ID,
		Label:      t.Label(),
		Status:     StatusSuccess,
		OutputPath: outputPath,
		FinishedAt: time.Now().UTC(),
	}
}

// Failed builds an error result for t.
func Failed(t Task, err error) Result {
	return Result{
		TaskID:     t.ID,
		Label:      t.Label(),
		Status:     StatusError,
		Err:        err,
		FinishedAt: time.Now().UTC(),
	}
}

// IsSuccess reports whether the task wrote its output.
func (r Result) IsSuccess() bool { return r.Status == StatusSuccess }

// Detail is the output path on success and the error text on failure.
func (r Result) Detail() string {
	if r.Status == StatusError {
		if r.Err == nil {
			return "unknown error"
		}
		return r.Err.Error()
	}
	return r.OutputPath
}

// String renders the single report line for r:
// "Success: class/file" or "Error class/file: detail".
func (r Result) String() string {
	if r.Status == StatusError {
		return fmt.Sprintf("Error %s: %s", r.Label, r.Detail())
	}
	return "Success: " + r.Label
}
