// Package report serializes per-task result lines coming from many workers.
//
// Workers hand results to a Reporter over a channel; a single goroutine owns
// the sink and writes one complete line per result, so lines never tear.
package report

import (
	"sync"

	"github.com/backmassage/pixelbatch/internal/task"
)

// Sink receives results one at a time from the reporter goroutine. It is
// never called concurrently.
type Sink interface {
	Emit(r task.Result)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(task.Result)

// Emit calls f(r).
func (f SinkFunc) Emit(r task.Result) { f(r) }

// Reporter fans results from any number of goroutines into one Sink.
type Reporter struct {
	ch        chan task.Result
	done      chan struct{}
	closeOnce sync.Once
}

// New starts the consumer goroutine. buffer is the channel capacity; 0 makes
// Report block until the sink has taken the result.
func New(sink Sink, buffer int) *Reporter {
	if buffer < 0 {
		buffer = 0
	}
	r := &Reporter{
		ch:   make(chan task.Result, buffer),
		done: make(chan struct{}),
	}
	go r.drain(sink)
	return r
}

func (r *Reporter) drain(sink Sink) {
	defer close(r.done)
	for res := range r.ch {
		sink.Emit(res)
	}
}

// Report queues res for the sink. Safe for concurrent use; must not be called
// after Close.
func (r *Reporter) Report(res task.Result) {
	r.ch <- res
}

// Close stops accepting results and waits until every queued result has been
// emitted. Calling Close more than once is harmless.
func (r *Reporter) Close() {
	r.closeOnce.Do(func() { close(r.ch) })
	<-r.done
}

// Logger is the subset of logging.Logger the log sink needs.
type Logger interface {
	Success(string, ...interface{})
	Warn(string, ...interface{})
}

// LogSink renders successes at SUCCESS level and failures at WARN level, so
// every task line shares the logger's stdout stream. ERROR stays reserved
// for failures that abort the run.
func LogSink(log Logger) Sink {
	return SinkFunc(func(res task.Result) {
		if res.IsSuccess() {
			log.Success("%s", res.String())
			return
		}
		log.Warn("%s", res.String())
	})
}

// Tee emits each result to every sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(res task.Result) {
		for _, s := range sinks {
			s.Emit(res)
		}
	})
}
