package pipeline

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/backmassage/pixelbatch/internal/check"
	"github.com/backmassage/pixelbatch/internal/codec"
	"github.com/backmassage/pixelbatch/internal/config"
	"github.com/backmassage/pixelbatch/internal/display"
	"github.com/backmassage/pixelbatch/internal/logging"
	"github.com/backmassage/pixelbatch/internal/term"
)

// imageRow holds the probed per-image data for the analysis table.
type imageRow struct {
	Label  string
	Format string
	Width  int
	Height int
	Size   int64
}

func (r imageRow) pixels() int { return r.Width * r.Height }

// Analyze discovers tasks exactly as Run would, reads only each image's
// header, and prints a dimension/size table with statistical outlier
// highlighting. Nothing is written to the output tree.
func Analyze(cfg *config.Config, log *logging.Logger) error {
	return analyze(cfg, log, os.Stdout)
}

func analyze(cfg *config.Config, log *logging.Logger, w io.Writer) error {
	if err := check.CheckInput(cfg); err != nil {
		return err
	}
	tasks, missing, err := Discover(cfg)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	for _, class := range missing {
		log.Warn("Folder not found: %s", class)
	}
	if len(tasks) == 0 {
		log.Warn("No files ending in %s under %s", cfg.Extension, cfg.InputDir)
		return nil
	}

	total := len(tasks)
	log.Info("Analyzing %d images in %s …", total, cfg.InputDir)

	isTTY := w == os.Stdout && term.IsTerminal(os.Stdout)
	var rows []imageRow
	var skipped int
	var pixelVals, sizeVals []float64

	for i, t := range tasks {
		printProgress(w, isTTY, i+1, total, skipped, t.Label())

		h, err := codec.Probe(t.SourcePath)
		if err != nil {
			skipped++
			if isTTY {
				clearProgress(w)
			}
			log.Warn("Skip (unreadable header): %s", t.Label())
			continue
		}

		row := imageRow{Label: t.Label(), Format: h.Format, Width: h.Width, Height: h.Height, Size: h.Size}
		rows = append(rows, row)
		pixelVals = append(pixelVals, float64(row.pixels()))
		sizeVals = append(sizeVals, float64(row.Size))
	}

	if isTTY {
		clearProgress(w)
	}

	if len(rows) == 0 {
		log.Warn("No images could be probed")
		return nil
	}

	pStats := computeStats(pixelVals)
	sStats := computeStats(sizeVals)

	printAnalysisTable(w, rows, pStats, sStats)
	printAnalysisSummary(log, rows, pStats, sStats)
	return nil
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printAnalysisTable(w io.Writer, rows []imageRow, pStats, sStats iqrBounds) {
	nameW := len("Image")
	fmtW := len("Format")
	dimW := len("Dimensions")
	sizeW := len("Size")

	for _, r := range rows {
		nameW = max(nameW, len(r.Label))
		fmtW = max(fmtW, len(r.Format))
		dimW = max(dimW, len(dimensions(r)))
		sizeW = max(sizeW, len(display.FormatBytes(r.Size)))
	}
	nameW = min(nameW, 50)

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s",
		nameW, "Image",
		fmtW, "Format",
		dimW, "Dimensions",
		sizeW, "Size",
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))

	for _, r := range rows {
		name := r.Label
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}

		pClass := pStats.classify(float64(r.pixels()))
		sClass := sStats.classify(float64(r.Size))

		// Pad the plain text first, then color it, so escape bytes never
		// count toward column width.
		fmt.Fprintf(w, "  %-*s  %-*s  %s  %s  %s\n",
			nameW, name,
			fmtW, r.Format,
			colorPad(dimensions(r), dimW, pClass),
			colorPad(display.FormatBytes(r.Size), sizeW, sClass),
			formatFlag(worstFlag(pClass, sClass)),
		)
	}
	fmt.Fprintln(w)
}

func printAnalysisSummary(log *logging.Logger, rows []imageRow, pStats, sStats iqrBounds) {
	var outliers, extremes int
	for _, r := range rows {
		switch worstFlag(pStats.classify(float64(r.pixels())), sStats.classify(float64(r.Size))) {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}

	log.Info("Analyzed %d images", len(rows))
	if pStats.valid {
		log.Info("  Pixel count IQR: %.0f – %.0f (outlier < %.0f or > %.0f)",
			pStats.q1, pStats.q3, pStats.outlierLo, pStats.outlierHi)
	}
	if sStats.valid {
		log.Info("  File size IQR: %s – %s",
			display.FormatBytes(int64(sStats.q1)), display.FormatBytes(int64(sStats.q3)))
	}
	if outliers > 0 {
		log.Outlier("  %d outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func dimensions(r imageRow) string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func worstFlag(classes ...string) string {
	worst := ""
	for _, c := range classes {
		if c == "extreme" {
			return "extreme"
		}
		if c == "outlier" {
			worst = "outlier"
		}
	}
	return worst
}

func classColor(class string) *color.Color {
	switch class {
	case "extreme":
		return term.Red
	case "outlier":
		return term.Orange
	}
	return nil
}

func formatFlag(flag string) string {
	switch flag {
	case "extreme":
		return term.Paint(term.Red, "[!]")
	case "outlier":
		return term.Paint(term.Orange, "[*]")
	}
	return ""
}

// colorPad pads a plain string to width, then colors it by class.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	if c := classColor(class); c != nil {
		return term.Paint(c, padded)
	}
	return padded
}

// printProgress shows a live probe counter. On a TTY it writes an
// inline \r-overwritten line; otherwise it is a no-op.
func printProgress(w io.Writer, isTTY bool, current, total, skipped int, name string) {
	if !isTTY {
		return
	}
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, current*100/total)
	if skipped > 0 {
		status += fmt.Sprintf("(%d skipped) ", skipped)
	}
	if len(name) > 40 {
		name = name[:39] + "…"
	}
	status += name
	if len(status) < 80 {
		status += strings.Repeat(" ", 80-len(status))
	}
	fmt.Fprintf(w, "\r%s", status)
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress(w io.Writer) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
