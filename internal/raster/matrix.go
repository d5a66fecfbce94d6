package raster

import (
	"errors"
	"fmt"
)

// ErrChannelCount is returned when a matrix does not have the number of
// channels an operation requires.
var ErrChannelCount = errors.New("unexpected channel count")

// Matrix is a height×width grid of samples with 1 (grayscale) or 3 (RGB)
// interleaved channels, stored row-major.
type Matrix struct {
	Height   int
	Width    int
	Channels int
	Pix      []float64
}

// New allocates a zeroed matrix. It panics on non-positive dimensions or a
// channel count other than 1 or 3.
func New(height, width, channels int) *Matrix {
	if height <= 0 || width <= 0 {
		panic(fmt.Sprintf("raster: invalid dimensions %dx%d", height, width))
	}
	if channels != 1 && channels != 3 {
		panic(fmt.Sprintf("raster: invalid channel count %d", channels))
	}
	return &Matrix{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float64, height*width*channels),
	}
}

// FromRows builds a single-channel matrix from row slices. All rows must have
// the same, non-zero length.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("raster: empty rows")
	}
	m := New(len(rows), len(rows[0]), 1)
	for y, row := range rows {
		if len(row) != m.Width {
			return nil, fmt.Errorf("raster: row %d has %d samples, want %d", y, len(row), m.Width)
		}
		copy(m.Pix[y*m.Width:], row)
	}
	return m, nil
}

// Filled returns a matrix with every sample set to v.
func Filled(height, width, channels int, v float64) *Matrix {
	m := New(height, width, channels)
	for i := range m.Pix {
		m.Pix[i] = v
	}
	return m
}

func (m *Matrix) offset(y, x, c int) int {
	return (y*m.Width+x)*m.Channels + c
}

// At returns the sample at row y, column x, channel c.
func (m *Matrix) At(y, x, c int) float64 {
	return m.Pix[m.offset(y, x, c)]
}

// Set stores v at row y, column x, channel c.
func (m *Matrix) Set(y, x, c int, v float64) {
	m.Pix[m.offset(y, x, c)] = v
}

// SameShape reports whether o has the same height, width and channel count.
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.Height == o.Height && m.Width == o.Width && m.Channels == o.Channels
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{Height: m.Height, Width: m.Width, Channels: m.Channels}
	c.Pix = make([]float64, len(m.Pix))
	copy(c.Pix, m.Pix)
	return c
}

// Clamp limits every sample to [lo, hi] in place and returns m.
func (m *Matrix) Clamp(lo, hi float64) *Matrix {
	for i, v := range m.Pix {
		switch {
		case v < lo:
			m.Pix[i] = lo
		case v > hi:
			m.Pix[i] = hi
		}
	}
	return m
}

// Scale multiplies every sample by f in place and returns m.
func (m *Matrix) Scale(f float64) *Matrix {
	for i := range m.Pix {
		m.Pix[i] *= f
	}
	return m
}

// RequireChannels returns ErrChannelCount (wrapped with the actual count) when
// m does not have exactly n channels.
func (m *Matrix) RequireChannels(n int) error {
	if m.Channels != n {
		return fmt.Errorf("%w: have %d, want %d", ErrChannelCount, m.Channels, n)
	}
	return nil
}
