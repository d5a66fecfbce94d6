// Package filter implements the five-stage image pipeline: grayscale, Gaussian
// blur, Sobel edge magnitude, sharpen and brightness scaling.
//
// Stages run in that fixed order. Sharpening is applied to the Sobel edge map,
// not to the blurred image; that ordering is part of the expected output and
// must not be rearranged.
package filter
