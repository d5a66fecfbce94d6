// Package raster holds the numeric pixel grid used by every filter stage and
// the convolution engine that slides a square kernel across it.
//
// Samples are float64 for the whole lifetime of a matrix; nothing in this
// package rounds or clamps implicitly. Out-of-range neighbours are taken by
// reflect-101 mirroring (dcb|abcd|cba), so edge pixels keep their brightness.
package raster
