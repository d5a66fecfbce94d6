package codec

import (
	"fmt"
	"image"
	"os"
)

// Header is what Probe learns from an image without decoding its pixels.
type Header struct {
	Format string
	Width  int
	Height int
	Size   int64
}

// Pixels returns Width*Height.
func (h Header) Pixels() int { return h.Width * h.Height }

// Probe reads only the header of the image at path.
func Probe(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Header{}, fmt.Errorf("probe: %w", err)
	}
	h := Header{Format: format, Width: cfg.Width, Height: cfg.Height}
	if fi, err := f.Stat(); err == nil {
		h.Size = fi.Size()
	}
	return h, nil
}
