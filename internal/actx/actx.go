// Package actx provides the analysis context threaded through the
// evaluator and batch driver: structured logging, the bitvector intern
// cache, and running statistics.
//
// Grounded on the teacher's pkg/search/worker.go, which bundles a logger,
// shared counters, and tuning knobs into the WorkerPool struct passed to
// every goroutine; here the same bundle is threaded through pure
// evaluation calls instead of goroutines, and the logging backend is
// github.com/rs/zerolog in place of the teacher's log.Printf calls, since
// zerolog is the structured-logging library the wider example pack
// standardizes on for services with any meaningful log volume.
package actx

import (
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/jakstab-go/rtlabstract/internal/bitnum"
)

// Stats accumulates counters observed during analysis: how often the
// evaluator had to degrade a result to TOP for lack of a precise case, and
// how many expressions were evaluated overall. Exposed via atomics so
// concurrent batch workers (internal/batch) can update it without a
// separate lock.
type Stats struct {
	ExpressionsEvaluated atomic.Int64
	TopDegradations      atomic.Int64
}

// Context bundles the ambient services available to the evaluator: a
// logger, the bitvector intern cache, and statistics. A zero Context is
// not usable; construct one with New.
type Context struct {
	Logger zerolog.Logger
	Cache  *bitnum.Cache
	Stats  *Stats
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithLevel sets the minimum logged level.
func WithLevel(level zerolog.Level) Option {
	return func(c *Context) { c.Logger = c.Logger.Level(level) }
}

// New constructs a Context logging to w in zerolog's console-writer-free
// JSON form (the teacher's own CLI favors plain structured lines over a
// pretty-printer, so this does too; a human-friendly console writer can be
// layered on top by the caller via zerolog.ConsoleWriter if wanted).
func New(w io.Writer, opts ...Option) *Context {
	c := &Context{
		Logger: zerolog.New(w).With().Timestamp().Logger(),
		Cache:  bitnum.NewCache(),
		Stats:  &Stats{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DegradeToTop logs a single debug line recording that op lost precision
// to TOP for the given reason (spec §7: "Unsupported degrades to ⊤ with
// one zerolog debug line"), and increments the degradation counter.
func (c *Context) DegradeToTop(op, reason string) {
	c.Stats.TopDegradations.Add(1)
	c.Logger.Debug().Str("op", op).Str("reason", reason).Msg("degraded to top")
}

// RecordEvaluation increments the evaluated-expression counter.
func (c *Context) RecordEvaluation() {
	c.Stats.ExpressionsEvaluated.Add(1)
}
