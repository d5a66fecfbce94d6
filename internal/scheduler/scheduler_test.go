package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pixelbatch/internal/task"
)

func makeTasks(n int) []task.Task {
	tasks := make([]task.Task, n)
	for i := range tasks {
		tasks[i] = task.New(fmt.Sprintf("in/c%d/img%03d.jpg", i%3, i), fmt.Sprintf("c%d", i%3), "out")
	}
	return tasks
}

type recordingReporter struct {
	mu   sync.Mutex
	seen []task.Result
}

func (r *recordingReporter) Report(res task.Result) {
	r.mu.Lock()
	r.seen = append(r.seen, res)
	r.mu.Unlock()
}

func TestChunkSize(t *testing.T) {
	tests := []struct {
		n, workers, want int
	}{
		{0, 4, 1},
		{10, 4, 1},
		{16, 1, 4},
		{100, 4, 6},
		{1000, 4, 62},
		{1000, 0, 250},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d,w=%d", tt.n, tt.workers), func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkSize(tt.n, tt.workers))
		})
	}
}

func TestPartition_PreservesEveryTaskInOrder(t *testing.T) {
	tasks := makeTasks(37)
	for _, size := range []int{0, 1, 2, 5, 36, 37, 100} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			chunks := Partition(tasks, size)
			var flat []task.Task
			for i, c := range chunks {
				require.NotEmpty(t, c)
				if size > 0 && i < len(chunks)-1 {
					assert.Len(t, c, size)
				}
				flat = append(flat, c...)
			}
			assert.Equal(t, tasks, flat)
		})
	}
	assert.Empty(t, Partition(nil, 3))
}

func TestNew_Validation(t *testing.T) {
	noop := ExecutorFunc(func(t task.Task) task.Result { return task.Succeeded(t, "") })

	_, err := New(0, noop)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	_, err = New(-3, noop)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	_, err = New(2, nil)
	assert.Error(t, err)

	s, err := New(3, noop)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Workers())
	assert.Equal(t, StrategyChunked, s.Strategy())
}

func TestRun_EveryTaskExactlyOnce(t *testing.T) {
	for _, strategy := range []Strategy{StrategyChunked, StrategyEach} {
		for _, workers := range []int{1, 2, 3, 8, 64} {
			for _, n := range []int{0, 1, 7, 50, 203} {
				name := fmt.Sprintf("%s/w=%d/n=%d", strategy, workers, n)
				t.Run(name, func(t *testing.T) {
					tasks := makeTasks(n)
					var mu sync.Mutex
					counts := make(map[string]int)
					exec := ExecutorFunc(func(tk task.Task) task.Result {
						mu.Lock()
						counts[tk.ID.String()]++
						mu.Unlock()
						return task.Succeeded(tk, tk.OutputPath())
					})
					rep := &recordingReporter{}
					s, err := New(workers, exec, WithStrategy(strategy), WithReporter(rep))
					require.NoError(t, err)

					results := s.Run(tasks)

					require.Len(t, results, n)
					assert.Len(t, rep.seen, n)
					assert.Len(t, counts, n)
					for i, tk := range tasks {
						assert.Equal(t, 1, counts[tk.ID.String()])
						assert.Equal(t, tk.ID, results[i].TaskID, "results must line up with tasks")
					}
				})
			}
		}
	}
}

func TestRun_ConcurrencyBoundedByWorkers(t *testing.T) {
	for _, strategy := range []Strategy{StrategyChunked, StrategyEach} {
		t.Run(string(strategy), func(t *testing.T) {
			const workers = 3
			var running, peak int32
			exec := ExecutorFunc(func(tk task.Task) task.Result {
				cur := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return task.Succeeded(tk, "")
			})
			s, err := New(workers, exec, WithStrategy(strategy))
			require.NoError(t, err)
			s.Run(makeTasks(60))
			assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(workers))
			assert.Positive(t, atomic.LoadInt32(&peak))
		})
	}
}

func TestRun_FailuresDoNotStopSiblings(t *testing.T) {
	for _, strategy := range []Strategy{StrategyChunked, StrategyEach} {
		t.Run(string(strategy), func(t *testing.T) {
			tasks := makeTasks(40)
			var executed int32
			exec := ExecutorFunc(func(tk task.Task) task.Result {
				atomic.AddInt32(&executed, 1)
				if strings.HasSuffix(tk.Filename(), "0.jpg") {
					return task.Failed(tk, errors.New("corrupt"))
				}
				return task.Succeeded(tk, tk.OutputPath())
			})
			s, err := New(4, exec, WithStrategy(strategy))
			require.NoError(t, err)

			results := s.Run(tasks)

			assert.Equal(t, int32(40), atomic.LoadInt32(&executed))
			var failed int
			for _, r := range results {
				if !r.IsSuccess() {
					failed++
					assert.Contains(t, r.String(), "corrupt")
				}
			}
			assert.Equal(t, 4, failed)
		})
	}
}

func TestRunChunked_StaticRoundRobin(t *testing.T) {
	// 2 workers, 16 tasks: chunk size 2, 8 chunks. Worker 0 gets chunks
	// 0,2,4,6 and must see them in that order.
	tasks := makeTasks(16)
	index := make(map[string]int, len(tasks))
	for i, tk := range tasks {
		index[tk.ID.String()] = i
	}

	var mu sync.Mutex
	var order []int
	block := make(chan struct{})
	exec := ExecutorFunc(func(tk task.Task) task.Result {
		i := index[tk.ID.String()]
		if (i/2)%2 == 1 {
			<-block // worker 1 waits until worker 0 is done
		} else {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}
		return task.Succeeded(tk, "")
	})

	s, err := New(2, exec)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Run(tasks)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 8
	}, 2*time.Second, time.Millisecond)
	close(block)
	<-done

	assert.Equal(t, []int{0, 1, 4, 5, 8, 9, 12, 13}, order)
}
