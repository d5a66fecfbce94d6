package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pixelbatch/internal/check"
	"github.com/backmassage/pixelbatch/internal/config"
	"github.com/backmassage/pixelbatch/internal/logging"
)

// --- helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("not an image"), 0o644))
}

// writeJPEG writes a w×h image with a diagonal gradient.
func writeJPEG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*3) % 256)
			img.Set(x, y, color.RGBA{R: v, G: 255 - v, B: v / 2, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	root := t.TempDir()
	cfg.InputDir = filepath.Join(root, "in")
	cfg.OutputDir = filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	return &cfg
}

func testLogger(t *testing.T, cfg *config.Config) (*logging.Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	log, err := logging.NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	var out, errOut bytes.Buffer
	log.SetOutput(&out, &errOut)
	return log, &out, &errOut
}

func listOutputs(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

// --- Discover tests ---

func TestDiscover_AllClassesSorted(t *testing.T) {
	cfg := testConfig(t)
	touch(t, filepath.Join(cfg.InputDir, "pizza"), "b.jpg")
	touch(t, filepath.Join(cfg.InputDir, "pizza"), "a.jpg")
	touch(t, filepath.Join(cfg.InputDir, "donuts"), "z.jpg")
	touch(t, cfg.InputDir, "stray.jpg") // not inside a class folder

	tasks, missing, err := Discover(cfg)
	require.NoError(t, err)
	assert.Empty(t, missing)

	var labels []string
	for _, tk := range tasks {
		labels = append(labels, tk.Label())
		assert.Equal(t, cfg.OutputDir, tk.OutputRoot)
	}
	assert.Equal(t, []string{"donuts/z.jpg", "pizza/a.jpg", "pizza/b.jpg"}, labels)
}

func TestDiscover_ExtensionIsCaseSensitiveSuffix(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(cfg.InputDir, "sushi")
	touch(t, dir, "one.jpg")
	touch(t, dir, "two.JPG")
	touch(t, dir, "three.jpeg")
	touch(t, dir, "four.png")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.jpg"), 0o755))

	tasks, _, err := Discover(cfg)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "sushi/one.jpg", tasks[0].Label())
}

func TestDiscover_ExplicitClasses(t *testing.T) {
	cfg := testConfig(t)
	touch(t, filepath.Join(cfg.InputDir, "donuts"), "a.jpg")
	touch(t, filepath.Join(cfg.InputDir, "pizza"), "b.jpg")
	touch(t, cfg.InputDir, "tacos") // a file, not a folder
	cfg.Classes = []string{"pizza", "ramen", "tacos"}

	tasks, missing, err := Discover(cfg)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "pizza/b.jpg", tasks[0].Label())
	assert.Equal(t, []string{"ramen", "tacos"}, missing)
}

func TestDiscover_MissingInputRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputDir = filepath.Join(cfg.InputDir, "nope")
	_, _, err := Discover(cfg)
	assert.Error(t, err)
}

// --- Run tests ---

func TestRun_ProcessesEveryImage(t *testing.T) {
	for _, mode := range []config.Mode{config.ModeMulti, config.ModeFuture} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Mode = mode
			cfg.Workers = 3
			for i, class := range []string{"donuts", "edamame"} {
				for j := 0; j < 3+i; j++ {
					writeJPEG(t, filepath.Join(cfg.InputDir, class), string(rune('a'+j))+".jpg", 24, 16)
				}
			}
			touch(t, filepath.Join(cfg.InputDir, "edamame"), "broken.jpg")

			// Stale content from an earlier run must disappear.
			touch(t, filepath.Join(cfg.OutputDir, "old"), "stale.jpg")

			log, out, errOut := testLogger(t, cfg)
			stats, err := Run(cfg, log)
			require.NoError(t, err)

			assert.Equal(t, 8, stats.Total)
			assert.Equal(t, 7, stats.Succeeded)
			assert.Equal(t, 1, stats.Failed)
			assert.Positive(t, stats.TotalOutputBytes)

			outputs := listOutputs(t, cfg.OutputDir)
			assert.Len(t, outputs, 7)
			assert.Contains(t, outputs, "donuts/processed_a.jpg")
			assert.Contains(t, outputs, "edamame/processed_d.jpg")
			assert.NotContains(t, outputs, "old/stale.jpg")

			stdout := out.String()
			assert.Contains(t, stdout, "Found 8 images.")
			assert.Contains(t, stdout, "Total Time: ")
			assert.Equal(t, 7, strings.Count(stdout, "[SUCCESS] Success: "))
			// Task lines share one stream in emission order.
			assert.Contains(t, stdout, "[WARN] Error edamame/broken.jpg: decode: ")
			assert.Empty(t, errOut.String())
		})
	}
}

func TestRun_EmptyInput(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.InputDir, "empty_class"), 0o755))

	log, out, _ := testLogger(t, cfg)
	stats, err := Run(cfg, log)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, listOutputs(t, cfg.OutputDir))
	assert.DirExists(t, cfg.OutputDir)
	assert.Contains(t, out.String(), "Found 0 images.")
	assert.Contains(t, out.String(), "[WARN] No files ending in .jpg")
	assert.Contains(t, out.String(), "Total Time: ")
}

func TestRun_MissingInputRootFailsBeforeTouchingOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputDir = filepath.Join(cfg.InputDir, "missing")
	touch(t, cfg.OutputDir, "keep.jpg")

	log, _, _ := testLogger(t, cfg)
	_, err := Run(cfg, log)
	assert.ErrorIs(t, err, check.ErrInputNotFound)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "keep.jpg"))
}

func TestRun_MissingClassWarns(t *testing.T) {
	cfg := testConfig(t)
	writeJPEG(t, filepath.Join(cfg.InputDir, "pizza"), "a.jpg", 8, 8)
	cfg.Classes = []string{"pizza", "ramen"}

	log, out, _ := testLogger(t, cfg)
	stats, err := Run(cfg, log)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.MissingClasses)
	assert.Contains(t, out.String(), "[WARN] Folder not found: ramen")
}

func TestRun_WritesMetricsFile(t *testing.T) {
	cfg := testConfig(t)
	writeJPEG(t, filepath.Join(cfg.InputDir, "pizza"), "a.jpg", 8, 8)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "pixelbatch.prom")

	log, _, _ := testLogger(t, cfg)
	_, err := Run(cfg, log)
	require.NoError(t, err)

	b, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, `pixelbatch_tasks_total{status="success"} 1`)
	assert.Contains(t, text, `pixelbatch_stage_duration_seconds_count{stage="sobel"} 1`)
	assert.Contains(t, text, "pixelbatch_workers 4")
}

// --- Analyze tests ---

func TestAnalyze_TableAndOutliers(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(cfg.InputDir, "donuts")
	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg"} {
		writeJPEG(t, dir, name, 30+i, 30+i)
	}
	writeJPEG(t, dir, "huge.jpg", 400, 300)
	touch(t, dir, "junk.jpg")

	log, out, _ := testLogger(t, cfg)
	var table bytes.Buffer
	require.NoError(t, analyze(cfg, log, &table))

	assert.Contains(t, table.String(), "donuts/huge.jpg")
	assert.Contains(t, table.String(), "400x300")
	assert.Contains(t, table.String(), "[!]")
	assert.NotContains(t, table.String(), "junk.jpg")
	assert.Contains(t, out.String(), "Skip (unreadable header): donuts/junk.jpg")
	assert.Contains(t, out.String(), "Analyzed 7 images")
	assert.NoDirExists(t, cfg.OutputDir, "analyze writes nothing")
}

func TestComputeStats(t *testing.T) {
	assert.False(t, computeStats([]float64{1, 2, 3}).valid, "too few samples")
	assert.False(t, computeStats([]float64{5, 5, 5, 5}).valid, "zero IQR")

	b := computeStats([]float64{10, 11, 12, 13, 14})
	require.True(t, b.valid)
	assert.Equal(t, 11.0, b.q1)
	assert.Equal(t, 13.0, b.q3)
	assert.Equal(t, "", b.classify(12))
	assert.Equal(t, "outlier", b.classify(17))
	assert.Equal(t, "extreme", b.classify(20))
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, percentile(sorted, 0))
	assert.Equal(t, 4.0, percentile(sorted, 100))
	assert.Equal(t, 2.5, percentile(sorted, 50))
	assert.Equal(t, 0.0, percentile(nil, 50))
}

func TestStrategyFor(t *testing.T) {
	assert.EqualValues(t, "chunked", strategyFor(config.ModeMulti))
	assert.EqualValues(t, "each", strategyFor(config.ModeFuture))
}
