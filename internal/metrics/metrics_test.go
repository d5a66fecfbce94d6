package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pixelbatch/internal/task"
)

func TestRecorder_CountsByStatus(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	tk := task.New("in/c/a.jpg", "c", "out")
	ok := task.Succeeded(tk, tk.OutputPath())
	ok.OutputSize = 1024
	ok.Elapsed = 20 * time.Millisecond
	r.ObserveResult(ok)
	r.ObserveResult(ok)
	r.ObserveResult(task.Failed(tk, errors.New("bad")))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.tasks.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tasks.WithLabelValues("error")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(r.outputBytes))
}

func TestRecorder_WriteFile(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	r.SetWorkers(4)
	r.ObserveStage("sobel", 3*time.Millisecond)

	path := filepath.Join(t.TempDir(), "batch.prom")
	require.NoError(t, r.WriteFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.True(t, strings.Contains(text, "pixelbatch_workers 4"), text)
	assert.True(t, strings.Contains(text, `pixelbatch_stage_duration_seconds_count{stage="sobel"} 1`), text)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.SetWorkers(3)
	r.ObserveStage("blur", time.Second)
	r.ObserveResult(task.Failed(task.New("a", "b", "c"), nil))
	assert.Nil(t, r.Registry())
	assert.Error(t, r.WriteFile(filepath.Join(t.TempDir(), "x.prom")))
}
