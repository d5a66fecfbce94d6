package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/pixelbatch/internal/task"
)

// ErrInvalidWorkers is returned by New for a worker count below 1.
var ErrInvalidWorkers = errors.New("worker count must be positive")

// Strategy selects how tasks are handed to workers.
type Strategy string

const (
	StrategyChunked Strategy = "chunked"
	StrategyEach    Strategy = "each"
)

// Executor runs one task to completion and describes the outcome. It must
// not panic across the call boundary for ordinary failures and must be safe
// for concurrent use.
type Executor interface {
	Execute(t task.Task) task.Result
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(task.Task) task.Result

// Execute calls f(t).
func (f ExecutorFunc) Execute(t task.Task) task.Result { return f(t) }

// Reporter receives each result as soon as its task finishes. Report is
// called concurrently from workers.
type Reporter interface {
	Report(r task.Result)
}

// Scheduler distributes tasks across a bounded set of goroutines.
type Scheduler struct {
	workers  int
	exec     Executor
	reporter Reporter
	strategy Strategy
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithReporter forwards every result to r as it completes.
func WithReporter(r Reporter) Option {
	return func(s *Scheduler) { s.reporter = r }
}

// WithStrategy picks the dispatch strategy (default StrategyChunked).
func WithStrategy(st Strategy) Option {
	return func(s *Scheduler) { s.strategy = st }
}

// New returns a scheduler running exec on up to workers goroutines.
func New(workers int, exec Executor, opts ...Option) (*Scheduler, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	if exec == nil {
		return nil, errors.New("nil executor")
	}
	s := &Scheduler{workers: workers, exec: exec, strategy: StrategyChunked}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Workers returns the configured worker count.
func (s *Scheduler) Workers() int { return s.workers }

// Strategy returns the dispatch strategy.
func (s *Scheduler) Strategy() Strategy { return s.strategy }

// Run executes every task exactly once and blocks until all have finished.
// results[i] belongs to tasks[i] regardless of completion order.
func (s *Scheduler) Run(tasks []task.Task) []task.Result {
	results := make([]task.Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	switch s.strategy {
	case StrategyEach:
		s.runEach(tasks, results)
	default:
		s.runChunked(tasks, results)
	}
	return results
}

// runChunked deals chunk c to worker c mod workers before any work starts.
func (s *Scheduler) runChunked(tasks []task.Task, results []task.Result) {
	size := ChunkSize(len(tasks), s.workers)
	chunks := Partition(tasks, size)

	active := s.workers
	if active > len(chunks) {
		active = len(chunks)
	}

	var wg sync.WaitGroup
	for w := 0; w < active; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for c := w; c < len(chunks); c += s.workers {
				base := c * size
				for j, t := range chunks[c] {
					s.runOne(base+j, t, results)
				}
			}
		}(w)
	}
	wg.Wait()
}

// runEach submits tasks one by one to a pool of at most workers goroutines.
func (s *Scheduler) runEach(tasks []task.Task, results []task.Result) {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			s.runOne(i, t, results)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) runOne(i int, t task.Task, results []task.Result) {
	res := s.exec.Execute(t)
	results[i] = res
	if s.reporter != nil {
		s.reporter.Report(res)
	}
}
