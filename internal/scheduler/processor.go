package scheduler

import (
	"fmt"
	"os"
	"time"

	"github.com/backmassage/pixelbatch/internal/raster"
	"github.com/backmassage/pixelbatch/internal/task"
)

// Codec is the decode/encode collaborator.
type Codec interface {
	Decode(path string) (*raster.Matrix, error)
	Encode(m *raster.Matrix, path string) error
}

// Filter transforms a decoded image.
type Filter interface {
	Process(m *raster.Matrix) (*raster.Matrix, error)
}

// Processor is the Executor used for real batches: decode, filter, create the
// class directory, encode.
type Processor struct {
	codec  Codec
	filter Filter
}

// NewProcessor wires a codec and a filter into an Executor.
func NewProcessor(codec Codec, filter Filter) *Processor {
	return &Processor{codec: codec, filter: filter}
}

// Execute processes t. Every failure, including a panic inside the filter or
// codec, comes back as an error result.
func (p *Processor) Execute(t task.Task) (res task.Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = task.Failed(t, fmt.Errorf("panic: %v", rec))
		}
		res.Elapsed = time.Since(start)
	}()

	img, err := p.codec.Decode(t.SourcePath)
	if err != nil {
		return task.Failed(t, fmt.Errorf("decode: %w", err))
	}

	out, err := p.filter.Process(img)
	if err != nil {
		return task.Failed(t, fmt.Errorf("filter: %w", err))
	}

	if err := os.MkdirAll(t.OutputDir(), 0o755); err != nil {
		return task.Failed(t, fmt.Errorf("create output directory: %w", err))
	}

	dst := t.OutputPath()
	if err := p.codec.Encode(out, dst); err != nil {
		return task.Failed(t, fmt.Errorf("encode: %w", err))
	}

	res = task.Succeeded(t, dst)
	if fi, err := os.Stat(t.SourcePath); err == nil {
		res.InputSize = fi.Size()
	}
	if fi, err := os.Stat(dst); err == nil {
		res.OutputSize = fi.Size()
	}
	return res
}
