package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/backmassage/pixelbatch/internal/check"
	"github.com/backmassage/pixelbatch/internal/codec"
	"github.com/backmassage/pixelbatch/internal/config"
	"github.com/backmassage/pixelbatch/internal/display"
	"github.com/backmassage/pixelbatch/internal/filter"
	"github.com/backmassage/pixelbatch/internal/logging"
	"github.com/backmassage/pixelbatch/internal/metrics"
	"github.com/backmassage/pixelbatch/internal/report"
	"github.com/backmassage/pixelbatch/internal/scheduler"
	"github.com/backmassage/pixelbatch/internal/task"
)

// reportBufferPerWorker sizes the reporter channel so workers rarely block
// on a slow console.
const reportBufferPerWorker = 4

// Run is the top-level batch entry point. It validates the input root,
// discovers tasks, recreates the output root empty, processes every task
// and logs one line per task plus a final summary.
//
// The returned error is non-nil only for failures that happen before any
// worker starts. Per-image failures are counted in RunStats.
func Run(cfg *config.Config, log *logging.Logger) (RunStats, error) {
	var stats RunStats

	if err := check.CheckInput(cfg); err != nil {
		return stats, err
	}

	tasks, missing, err := Discover(cfg)
	if err != nil {
		return stats, fmt.Errorf("discover: %w", err)
	}
	for _, class := range missing {
		log.Warn("Folder not found: %s", class)
	}
	stats.MissingClasses = len(missing)

	if err := prepareOutput(cfg.OutputDir); err != nil {
		return stats, err
	}

	log.Info("Found %d images.", len(tasks))
	if len(tasks) == 0 {
		log.Warn("No files ending in %s under %s", cfg.Extension, cfg.InputDir)
	}

	rec, err := newRecorder(cfg)
	if err != nil {
		return stats, err
	}
	rec.SetWorkers(cfg.Workers)

	sched, rep, err := newScheduler(cfg, log, rec)
	if err != nil {
		return stats, err
	}

	logBatchHeader(cfg, log, sched)
	start := time.Now()
	results := sched.Run(tasks)
	rep.Close()
	stats.Elapsed = time.Since(start)

	for _, res := range results {
		stats.Add(res)
	}
	logSummary(cfg, log, &stats)

	if cfg.MetricsFile != "" {
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			log.Warn("Could not write metrics to %s: %v", cfg.MetricsFile, err)
		} else {
			log.Debug(cfg.Verbose, "Metrics written to %s", cfg.MetricsFile)
		}
	}
	return stats, nil
}

// prepareOutput removes dir and everything under it, then recreates it
// empty.
func prepareOutput(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// newRecorder returns a metrics recorder when a metrics file was requested,
// nil otherwise. A nil recorder records nothing.
func newRecorder(cfg *config.Config) (*metrics.Recorder, error) {
	if cfg.MetricsFile == "" {
		return nil, nil
	}
	return metrics.New()
}

// newScheduler wires codec, filter pipeline, reporter and strategy for cfg.
// The caller must Close the returned reporter after Run.
func newScheduler(cfg *config.Config, log *logging.Logger, rec *metrics.Recorder) (*scheduler.Scheduler, *report.Reporter, error) {
	pipe := filter.NewPipeline(cfg.Brightness, filter.WithObserver(rec.ObserveStage))
	proc := scheduler.NewProcessor(codec.New(cfg.JPEGQuality), pipe)

	sink := report.Tee(
		report.LogSink(log),
		report.SinkFunc(rec.ObserveResult),
		report.SinkFunc(func(res task.Result) {
			log.Debug(cfg.Verbose, "%s took %s", res.Label, res.Elapsed.Round(time.Millisecond))
		}),
	)
	rep := report.New(sink, cfg.Workers*reportBufferPerWorker)

	sched, err := scheduler.New(cfg.Workers, proc,
		scheduler.WithReporter(rep),
		scheduler.WithStrategy(strategyFor(cfg.Mode)),
	)
	if err != nil {
		rep.Close()
		return nil, nil, err
	}
	return sched, rep, nil
}

// strategyFor maps the user-facing mode onto a scheduler strategy.
func strategyFor(mode config.Mode) scheduler.Strategy {
	if mode == config.ModeFuture {
		return scheduler.StrategyEach
	}
	return scheduler.StrategyChunked
}

func logBatchHeader(cfg *config.Config, log *logging.Logger, sched *scheduler.Scheduler) {
	log.Info("Mode: %s (%s), workers: %d", cfg.Mode, sched.Strategy(), sched.Workers())
	log.Debug(cfg.Verbose, "Input: %s", cfg.InputDir)
	log.Debug(cfg.Verbose, "Output: %s", cfg.OutputDir)
	log.Debug(cfg.Verbose, "Brightness: %g, JPEG quality: %d", cfg.Brightness, cfg.JPEGQuality)
	if cfg.ConfigFile != "" {
		log.Debug(cfg.Verbose, "Config file: %s", cfg.ConfigFile)
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Total Time: %s", display.FormatSeconds(stats.Elapsed))
	log.Info("Processed %d images: %d succeeded, %d failed", stats.Total, stats.Succeeded, stats.Failed)
	if stats.MissingClasses > 0 {
		log.Warn("%d class folder(s) not found", stats.MissingClasses)
	}
	if stats.Succeeded > 0 {
		log.Info("Input: %s, output: %s (%s)",
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes),
			display.FormatBytesWithSign(stats.SizeDelta()))
	}
	if stats.Failed > 0 {
		log.Warn("%d image(s) failed; see errors above", stats.Failed)
	} else if stats.Total > 0 {
		log.Success("All images processed into %s", cfg.OutputDir)
	}
}
