// Package codec converts between image files and raster matrices.
//
// Decoding always yields a 3-channel RGB matrix (alpha is dropped, palette and
// grayscale sources are expanded). Encoding clamps samples to [0, 255],
// truncates them to bytes and picks the file format from the destination
// extension: .jpg/.jpeg, .png, .bmp, .tif/.tiff. GIF and WebP sources can be
// read but not written.
package codec
