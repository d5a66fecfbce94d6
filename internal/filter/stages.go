package filter

import (
	"fmt"
	"math"

	"github.com/backmassage/pixelbatch/internal/raster"
)

// Grayscale reduces a 3-channel matrix to one channel with
// Y = 0.299R + 0.587G + 0.114B. A 1-channel input is rejected.
func Grayscale(m *raster.Matrix) (*raster.Matrix, error) {
	if err := m.RequireChannels(3); err != nil {
		return nil, fmt.Errorf("grayscale: %w", err)
	}
	out := raster.New(m.Height, m.Width, 1)
	for i := range out.Pix {
		p := m.Pix[i*3 : i*3+3]
		out.Pix[i] = LumaR*p[0] + LumaG*p[1] + LumaB*p[2]
	}
	return out, nil
}

// GaussianBlur convolves m with the normalized 3×3 Gaussian kernel.
func GaussianBlur(m *raster.Matrix) *raster.Matrix {
	return raster.Convolve(m, GaussianKernel)
}

// Sobel returns the clamped gradient magnitude sqrt(gx²+gy²). A 3-channel
// input is converted to grayscale first.
func Sobel(m *raster.Matrix) (*raster.Matrix, error) {
	if m.Channels == 3 {
		g, err := Grayscale(m)
		if err != nil {
			return nil, err
		}
		m = g
	}
	if err := m.RequireChannels(1); err != nil {
		return nil, fmt.Errorf("sobel: %w", err)
	}

	out, err := magnitude(raster.Convolve(m, SobelXKernel), raster.Convolve(m, SobelYKernel))
	if err != nil {
		return nil, fmt.Errorf("sobel: %w", err)
	}
	return out.Clamp(MinSample, MaxSample), nil
}

// magnitude returns sqrt(gx²+gy²) per sample. Both gradients must share a
// shape.
func magnitude(gx, gy *raster.Matrix) (*raster.Matrix, error) {
	if !gx.SameShape(gy) {
		return nil, fmt.Errorf("gradient shapes differ: %dx%dx%d vs %dx%dx%d",
			gx.Height, gx.Width, gx.Channels, gy.Height, gy.Width, gy.Channels)
	}
	out := raster.New(gx.Height, gx.Width, gx.Channels)
	for i := range out.Pix {
		out.Pix[i] = math.Sqrt(gx.Pix[i]*gx.Pix[i] + gy.Pix[i]*gy.Pix[i])
	}
	return out, nil
}

// Sharpen convolves m with the 3×3 sharpen kernel. The result is not clamped.
func Sharpen(m *raster.Matrix) *raster.Matrix {
	return raster.Convolve(m, SharpenKernel)
}

// AdjustBrightness returns a copy of m scaled by factor and clamped to
// [0, 255].
func AdjustBrightness(m *raster.Matrix, factor float64) *raster.Matrix {
	return m.Clone().Scale(factor).Clamp(MinSample, MaxSample)
}
