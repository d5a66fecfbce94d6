package filter

import (
	"fmt"
	"time"

	"github.com/backmassage/pixelbatch/internal/raster"
)

// DefaultBrightness is the factor the batch pipeline scales by in its last
// stage.
const DefaultBrightness = 1.5

// Stage names, in execution order.
const (
	StageGrayscale  = "grayscale"
	StageBlur       = "gaussian_blur"
	StageSobel      = "sobel"
	StageSharpen    = "sharpen"
	StageBrightness = "brightness"
)

// StageNames lists the stages in the order Process runs them.
var StageNames = []string{StageGrayscale, StageBlur, StageSobel, StageSharpen, StageBrightness}

// StageObserver is told how long each stage took. It is called from the
// goroutine running Process and must be safe for concurrent use when one
// Pipeline is shared across workers.
type StageObserver func(stage string, elapsed time.Duration)

// Pipeline runs the five stages in fixed order. The zero value is not useful;
// use NewPipeline.
type Pipeline struct {
	brightness float64
	observe    StageObserver
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver installs a per-stage timing callback.
func WithObserver(obs StageObserver) Option {
	return func(p *Pipeline) { p.observe = obs }
}

// NewPipeline returns a pipeline whose final stage scales by brightness.
func NewPipeline(brightness float64, opts ...Option) *Pipeline {
	p := &Pipeline{brightness: brightness}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Brightness returns the configured scale factor.
func (p *Pipeline) Brightness() float64 { return p.brightness }

// Process runs grayscale → blur → sobel → sharpen → brightness on a 3-channel
// matrix and returns the final clamped single-channel matrix. The input is
// not modified.
func (p *Pipeline) Process(img *raster.Matrix) (*raster.Matrix, error) {
	if img == nil {
		return nil, fmt.Errorf("process: nil matrix")
	}

	m, err := timed(p, StageGrayscale, func() (*raster.Matrix, error) { return Grayscale(img) })
	if err != nil {
		return nil, err
	}
	m, _ = timed(p, StageBlur, func() (*raster.Matrix, error) { return GaussianBlur(m), nil })
	m, err = timed(p, StageSobel, func() (*raster.Matrix, error) { return Sobel(m) })
	if err != nil {
		return nil, err
	}
	m, _ = timed(p, StageSharpen, func() (*raster.Matrix, error) { return Sharpen(m), nil })
	m, _ = timed(p, StageBrightness, func() (*raster.Matrix, error) { return AdjustBrightness(m, p.brightness), nil })
	return m, nil
}

func timed(p *Pipeline, stage string, fn func() (*raster.Matrix, error)) (*raster.Matrix, error) {
	if p.observe == nil {
		return fn()
	}
	start := time.Now()
	m, err := fn()
	p.observe(stage, time.Since(start))
	return m, err
}
