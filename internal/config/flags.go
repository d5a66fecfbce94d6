package config

// This file registers CLI flags on a pflag.FlagSet (the one cobra owns).
// Flag values are not written into Config directly: Load reads them back
// through viper so that environment variables and a config file can fill in
// anything the user did not pass explicitly.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flag names. Each doubles as the viper key and, upper-cased with dashes
// turned into underscores, as the PIXELBATCH_* environment variable.
const (
	flagMode        = "mode"
	flagWorkers     = "workers"
	flagBrightness  = "brightness"
	flagExtension   = "ext"
	flagClasses     = "classes"
	flagJPEGQuality = "jpeg-quality"
	flagVerbose     = "verbose"
	flagColor       = "color"
	flagNoColor     = "no-color"
	flagLog         = "log"
	flagMetricsFile = "metrics-file"
	flagCheck       = "check"
	flagAnalyze     = "analyze"
	flagConfig      = "config"
)

// BindFlags registers every option on fs, using cfg's current values as
// defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	defineExecutionFlags(fs, cfg)
	defineDiscoveryFlags(fs, cfg)
	defineDisplayFlags(fs, cfg)
	defineUtilityFlags(fs, cfg)
}

// defineExecutionFlags registers -m/--mode, -w/--workers, -b/--brightness, --jpeg-quality.
func defineExecutionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP(flagMode, "m", string(cfg.Mode), "Execution mode: multi (chunked map) | future (submit and await each)")
	fs.IntP(flagWorkers, "w", cfg.Workers, fmt.Sprintf("Parallel workers (physical cores here: %d)", PhysicalCores()))
	fs.Float64P(flagBrightness, "b", cfg.Brightness, "Brightness factor applied in the last filter stage")
	fs.Int(flagJPEGQuality, cfg.JPEGQuality, "JPEG quality for .jpg/.jpeg outputs (1-100)")
}

// defineDiscoveryFlags registers -e/--ext and --classes.
func defineDiscoveryFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP(flagExtension, "e", cfg.Extension, "Image filename suffix to collect (case-sensitive)")
	fs.StringSlice(flagClasses, cfg.Classes, "Comma-separated class folders to process (default: all subfolders)")
}

// defineDisplayFlags registers -v/--verbose, --color, --no-color, -l/--log, --metrics-file.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolP(flagVerbose, "v", cfg.Verbose, "Verbose output")
	fs.String(flagColor, string(cfg.ColorMode), "Colored logs: auto | always | never")
	fs.Bool(flagNoColor, false, "Same as --color=never")
	fs.StringP(flagLog, "l", cfg.LogFile, "Append logs to file")
	fs.String(flagMetricsFile, cfg.MetricsFile, "Write Prometheus text-format metrics to this file at exit")
}

// defineUtilityFlags registers -c/--check, -a/--analyze, --config.
func defineUtilityFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolP(flagCheck, "c", cfg.CheckOnly, "Run system diagnostics and exit")
	fs.BoolP(flagAnalyze, "a", cfg.Analyze, "Report image dimensions and outliers without processing")
	fs.String(flagConfig, cfg.ConfigFile, "Read settings from a YAML, JSON or TOML file")
}

// parsePositionalArgs sets InputDir and OutputDir. --check takes none,
// --analyze needs only the input directory, a normal run needs both.
func parsePositionalArgs(args []string, cfg *Config) error {
	switch {
	case cfg.CheckOnly:
		if len(args) > 0 {
			cfg.InputDir = NormalizeDirArg(args[0])
		}
		if len(args) > 1 {
			cfg.OutputDir = NormalizeDirArg(args[1])
		}
		return nil
	case cfg.Analyze:
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("need input_dir")
		}
	default:
		if len(args) != 2 {
			return fmt.Errorf("need exactly input_dir and output_dir")
		}
	}
	cfg.InputDir = NormalizeDirArg(args[0])
	if len(args) > 1 {
		cfg.OutputDir = NormalizeDirArg(args[1])
	}
	return nil
}

// splitList flattens values that may themselves be comma-separated (as
// environment variables are) and drops empty entries.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
