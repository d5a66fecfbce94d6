// Package config holds runtime configuration: defaults, CLI flag parsing,
// environment/config-file overrides and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// --- Enum types for validated string fields ---

// Mode selects the batch execution strategy.
type Mode string

const (
	ModeMulti  Mode = "multi"  // Static chunked map over a fixed worker set (default).
	ModeFuture Mode = "future" // Submit every image and await each completion.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then overridden by [Load] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir  string
	OutputDir string

	// Execution.
	Mode    Mode
	Workers int // Default: 4. Any positive value is accepted.

	// Filters.
	Brightness float64 // Default: 1.5.

	// Discovery.
	Extension string   // Default: ".jpg". Matched case-sensitively as a filename suffix.
	Classes   []string // Empty: every subdirectory of InputDir is a class.

	// Output encoding.
	JPEGQuality int // Default: 75.

	// Display and logging.
	Verbose     bool
	ColorMode   ColorMode // Default: "auto".
	LogFile     string    // Optional log file path.
	MetricsFile string    // Optional Prometheus text-format dump written at exit.
	CheckOnly   bool      // Run --check diagnostics and exit.
	Analyze     bool      // Print image header stats and exit; writes nothing.

	// ConfigFile is the optional YAML/JSON/TOML file read by Load.
	ConfigFile string
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [Load] applies flag, environment and file overrides.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeMulti,
		Workers:     4,
		Brightness:  1.5,
		Extension:   ".jpg",
		JPEGQuality: 75,
		ColorMode:   ColorAuto,
	}
}

// PhysicalCores estimates physical cores as half the logical CPUs, never
// less than one. Shown by --check as a worker-count suggestion.
func PhysicalCores() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	return n
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly
// mode, it also requires the input directory, and the output directory
// unless only analyzing.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeMulti, ModeFuture:
		// valid
	default:
		return errors.New("invalid mode (use 'multi' or 'future')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if c.Brightness < 0 {
		return fmt.Errorf("brightness must not be negative (got %g)", c.Brightness)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be 1-100 (got %d)", c.JPEGQuality)
	}
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		return fmt.Errorf("invalid extension %q (use e.g. '.jpg')", c.Extension)
	}
	for _, class := range c.Classes {
		if class == "" || strings.ContainsAny(class, `/\`) || class == "." || class == ".." {
			return fmt.Errorf("invalid class name %q", class)
		}
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	if c.OutputDir == "" && !c.Analyze {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is neither the input
// directory nor inside it, nor a parent of it. The output tree is wiped at
// the start of every run, so any overlap would destroy source images. Both
// arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if within(outputAbs, inputAbs) {
		return errors.New("output directory must not be inside input directory")
	}
	if within(inputAbs, outputAbs) {
		return errors.New("output directory must not contain the input directory")
	}
	return nil
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
