// Command pixelbatch is the entrypoint for the batch image filter CLI.
// It resolves configuration from flags, environment and an optional config
// file, validates it, and then runs diagnostics (--check), the header report
// (--analyze) or the five-stage filter pipeline over every image.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/backmassage/pixelbatch/internal/check"
	"github.com/backmassage/pixelbatch/internal/config"
	"github.com/backmassage/pixelbatch/internal/display"
	"github.com/backmassage/pixelbatch/internal/logging"
	"github.com/backmassage/pixelbatch/internal/pipeline"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pixelbatch: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "pixelbatch [flags] <input_dir> <output_dir>",
		Short: "Apply grayscale, blur, Sobel, sharpen and brightness to every image in a class tree",
		Long: `pixelbatch reads <input_dir>/<class>/*.jpg, runs each image through a fixed
five-stage filter pipeline in parallel, and writes
<output_dir>/<class>/processed_<name>. The output directory is replaced on
every run.

Every flag can also be set through a PIXELBATCH_* environment variable
(e.g. PIXELBATCH_WORKERS=8) or a --config file.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Resolve flags > env > config file > defaults, then validate.
			if err := config.Load(&cfg, cmd.Flags(), args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(&cfg)
		},
	}
	config.BindFlags(cmd.Flags(), &cfg)
	return cmd
}

// run executes the selected mode. A returned error means the batch never
// started; per-image failures are only logged.
func run(cfg *config.Config) error {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(os.Stdout)

	// 2. System check: informational, always succeeds.
	if cfg.CheckOnly {
		check.RunCheck(cfg, log)
		return nil
	}

	// 3. Input must exist before anything else happens.
	if err := check.CheckInput(cfg); err != nil {
		return err
	}
	if cfg.Analyze {
		return pipeline.Analyze(cfg, log)
	}

	// 4. Output is wiped at start, so it must not overlap the input tree.
	inputAbs, err := resolvePath(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	outputAbs, err := resolvePath(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		return fmt.Errorf("%w; choose an output path outside %s", err, cfg.InputDir)
	}

	log.Info("=== pixelbatch v%s ===", version)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)

	// 5. Run the batch. Exit status does not depend on per-image outcomes.
	_, err = pipeline.Run(cfg, log)
	return err
}

// resolvePath returns the absolute, symlink-resolved form of path. A
// missing tail (an output directory not yet created) is resolved against
// its nearest existing ancestor.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var tail []string
	dir := abs
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		dir = parent
	}
}
