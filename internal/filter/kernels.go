package filter

import "github.com/backmassage/pixelbatch/internal/raster"

// Kernels used by the pipeline stages.
var (
	GaussianKernel = raster.MustKernel([][]float64{
		{1, 2, 1},
		{2, 4, 2},
		{1, 2, 1},
	}, 16)

	SobelXKernel = raster.MustKernel([][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}, 1)

	SobelYKernel = raster.MustKernel([][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}, 1)

	SharpenKernel = raster.MustKernel([][]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}, 1)
)

// Luminance weights (ITU-R BT.601).
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// Sample range every stage that clamps uses.
const (
	MinSample = 0.0
	MaxSample = 255.0
)
