// Package check provides system diagnostics (--check mode) and pre-run
// validation of the input tree (CheckInput).
package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/backmassage/pixelbatch/internal/codec"
	"github.com/backmassage/pixelbatch/internal/config"
	"github.com/backmassage/pixelbatch/internal/raster"
	"github.com/backmassage/pixelbatch/internal/term"
)

// Sentinel errors returned by CheckInput.
var (
	ErrInputNotFound = errors.New("input directory not found")
	ErrInputNotDir   = errors.New("input path is not a directory")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the --check flow: runtime and CPU info, registered codecs,
// a round-trip encode in each output format, and, when given, the input
// and output directories. Informational only; it never stops on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkRuntime(cfg, log)
	checkCodecs(cfg, log)
	checkEncoders(log)
	if cfg.InputDir != "" {
		if err := CheckInput(cfg); err != nil {
			log.Error("%v", err)
		} else {
			log.Success("Input directory: %s", cfg.InputDir)
		}
	}
	if cfg.OutputDir != "" {
		checkOutput(cfg.OutputDir, log)
	}
}

// checkRuntime logs the Go runtime, the worker count against the cores
// available, and whether colors are active.
func checkRuntime(cfg *config.Config, log Logger) {
	log.Info("Go runtime: %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	log.Info("Logical CPUs: %d (physical estimate: %d)", runtime.NumCPU(), config.PhysicalCores())
	if cfg.Workers > runtime.NumCPU() {
		log.Warn("Workers (%d) exceed logical CPUs (%d)", cfg.Workers, runtime.NumCPU())
	} else {
		log.Success("Workers: %d", cfg.Workers)
	}
	if term.Enabled() {
		log.Info("Colors: enabled (%s)", cfg.ColorMode)
	} else {
		log.Info("Colors: disabled (%s)", cfg.ColorMode)
	}
}

// checkCodecs lists registered decoders and verifies the configured
// extension can be written back out under the same name.
func checkCodecs(cfg *config.Config, log Logger) {
	log.Info("Decoders: %s", strings.Join(codec.DecodableFormats(), ", "))
	log.Info("Encoders: %s", strings.Join(codec.EncodableExtensions(), ", "))
	if _, err := codec.FormatForPath("x" + cfg.Extension); err != nil {
		log.Error("Extension %s cannot be encoded; every image would fail", cfg.Extension)
		return
	}
	log.Success("Extension %s is encodable", cfg.Extension)
}

// checkEncoders writes and re-reads a small gradient in every encodable
// format inside a scratch directory.
func checkEncoders(log Logger) {
	dir, err := os.MkdirTemp("", "pixelbatch-check-")
	if err != nil {
		log.Warn("Could not create scratch directory: %v", err)
		return
	}
	defer os.RemoveAll(dir)

	c := codec.New(codec.DefaultJPEGQuality)
	for _, ext := range codec.EncodableExtensions() {
		if err := roundTrip(c, filepath.Join(dir, "probe"+ext)); err != nil {
			log.Error("Encoder %s failed: %v", ext, err)
			continue
		}
		log.Debug(true, "Encoder %s works", ext)
	}
	log.Success("Encoders tested")
}

// roundTrip encodes a 16x16 grayscale gradient to path and decodes it back.
func roundTrip(c *codec.Codec, path string) error {
	m := raster.New(16, 16, 1)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			m.Set(y, x, 0, float64(16*y+x))
		}
	}
	if err := c.Encode(m, path); err != nil {
		return err
	}
	back, err := c.Decode(path)
	if err != nil {
		return err
	}
	if back.Height != 16 || back.Width != 16 {
		return fmt.Errorf("decoded %dx%d, want 16x16", back.Width, back.Height)
	}
	return nil
}

// checkOutput reports whether the output directory exists and warns that a
// run will replace its contents.
func checkOutput(dir string, log Logger) {
	fi, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("Output directory will be created: %s", dir)
	case err != nil:
		log.Error("Output directory: %v", err)
	case !fi.IsDir():
		log.Error("Output path is not a directory: %s", dir)
	default:
		log.Warn("Output directory exists and will be replaced: %s", dir)
	}
}

// CheckInput is the pre-run validation: the input root must exist and be a
// directory. Returns a wrapped sentinel error on failure.
func CheckInput(cfg *config.Config) error {
	fi, err := os.Stat(cfg.InputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, cfg.InputDir)
		}
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputNotDir, cfg.InputDir)
	}
	return nil
}
