package codec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	// Registered for image.Decode.
	_ "image/gif"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/backmassage/pixelbatch/internal/raster"
)

// DefaultJPEGQuality matches the quality most imaging libraries use when none
// is given.
const DefaultJPEGQuality = 75

// ErrUnsupportedFormat is returned by Encode for destination extensions no
// encoder is registered for.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format identifies an output encoder.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

var extFormats = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatForPath returns the encoder for path's extension (case-insensitive).
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extFormats[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// EncodableExtensions lists the extensions Encode accepts.
func EncodableExtensions() []string {
	return []string{".bmp", ".jpeg", ".jpg", ".png", ".tif", ".tiff"}
}

// DecodableFormats lists the format names registered with image.Decode.
func DecodableFormats() []string {
	return []string{"bmp", "gif", "jpeg", "png", "tiff", "webp"}
}

// Codec reads and writes image files. The zero value encodes JPEG at
// DefaultJPEGQuality.
type Codec struct {
	JPEGQuality int
}

// New returns a Codec writing JPEG at the given quality (1-100). Out-of-range
// values fall back to DefaultJPEGQuality.
func New(jpegQuality int) *Codec {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Codec{JPEGQuality: jpegQuality}
}

// Decode reads the image at path into a 3-channel matrix.
func (c *Codec) Decode(path string) (*raster.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Encode writes m to path in the format implied by its extension.
func (c *Codec) Encode(m *raster.Matrix, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	img := ToImage(m)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.write(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (c *Codec) write(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatJPEG:
		q := c.JPEGQuality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// FromImage converts any image to a 3-channel matrix of non-premultiplied
// 8-bit values.
func FromImage(img image.Image) *raster.Matrix {
	b := img.Bounds()
	m := raster.New(b.Dy(), b.Dx(), 3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			m.Pix[i] = float64(c.R)
			m.Pix[i+1] = float64(c.G)
			m.Pix[i+2] = float64(c.B)
			i += 3
		}
	}
	return m
}

// ToImage converts m to a Gray (1 channel) or RGBA (3 channels) image.
// Samples are clamped to [0, 255] and truncated toward zero.
func ToImage(m *raster.Matrix) image.Image {
	r := image.Rect(0, 0, m.Width, m.Height)
	if m.Channels == 1 {
		g := image.NewGray(r)
		for i, v := range m.Pix {
			g.Pix[i] = ToByte(v)
		}
		return g
	}
	rgba := image.NewRGBA(r)
	for i := 0; i < m.Width*m.Height; i++ {
		rgba.Pix[i*4] = ToByte(m.Pix[i*3])
		rgba.Pix[i*4+1] = ToByte(m.Pix[i*3+1])
		rgba.Pix[i*4+2] = ToByte(m.Pix[i*3+2])
		rgba.Pix[i*4+3] = 0xff
	}
	return rgba
}

// ToByte clamps v to [0, 255] and truncates the fraction.
func ToByte(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
