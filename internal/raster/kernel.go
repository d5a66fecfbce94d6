package raster

import (
	"errors"
	"fmt"
)

// ErrKernelShape is returned for kernels that are not square with an odd side.
var ErrKernelShape = errors.New("kernel must be square with odd side length")

// Kernel is an immutable square matrix of weights. The zero value is not
// usable; build kernels with NewKernel or MustKernel.
type Kernel struct {
	size    int
	weights []float64
}

// NewKernel copies rows into a kernel, dividing every weight by divisor.
// Pass 1 for an unnormalized kernel.
func NewKernel(rows [][]float64, divisor float64) (Kernel, error) {
	n := len(rows)
	if n == 0 || n%2 == 0 {
		return Kernel{}, fmt.Errorf("%w: %d rows", ErrKernelShape, n)
	}
	if divisor == 0 {
		return Kernel{}, errors.New("kernel divisor must be non-zero")
	}
	w := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return Kernel{}, fmt.Errorf("%w: row %d has %d weights, want %d", ErrKernelShape, i, len(row), n)
		}
		for _, v := range row {
			w = append(w, v/divisor)
		}
	}
	return Kernel{size: n, weights: w}, nil
}

// MustKernel is NewKernel for package-level kernel literals.
func MustKernel(rows [][]float64, divisor float64) Kernel {
	k, err := NewKernel(rows, divisor)
	if err != nil {
		panic(err)
	}
	return k
}

// Size returns the side length.
func (k Kernel) Size() int { return k.size }

// Radius returns the number of samples on each side of the centre.
func (k Kernel) Radius() int { return k.size / 2 }

// At returns the weight at row i, column j.
func (k Kernel) At(i, j int) float64 { return k.weights[i*k.size+j] }

// Sum returns the total of all weights.
func (k Kernel) Sum() float64 {
	var s float64
	for _, v := range k.weights {
		s += v
	}
	return s
}
