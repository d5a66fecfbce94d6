// Package task defines the unit of batch work and the value each execution
// produces.
package task

import (
	"path/filepath"

	"github.com/google/uuid"
)

// OutputPrefix is prepended to the source filename for every written image.
const OutputPrefix = "processed_"

// Task is one image to process. It is immutable after New; copy it freely.
type Task struct {
	ID         uuid.UUID
	SourcePath string
	ClassLabel string
	OutputRoot string
}

// New returns a task with a fresh ID.
func New(sourcePath, classLabel, outputRoot string) Task {
	return Task{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		ClassLabel: classLabel,
		OutputRoot: outputRoot,
	}
}

// Filename is the base name of the source image.
func (t Task) Filename() string { return filepath.Base(t.SourcePath) }

// Label is "class/filename", used in every report line.
func (t Task) Label() string { return t.ClassLabel + "/" + t.Filename() }

// OutputDir is OutputRoot/ClassLabel.
func (t Task) OutputDir() string { return filepath.Join(t.OutputRoot, t.ClassLabel) }

// OutputPath is OutputRoot/ClassLabel/processed_<filename>.
func (t Task) OutputPath() string {
	return filepath.Join(t.OutputDir(), OutputPrefix+t.Filename())
}
