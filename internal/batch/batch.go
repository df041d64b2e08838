// Package batch runs many RTL expression evaluations concurrently,
// returning one Result per input Task in input order.
//
// Grounded on the teacher's pkg/search/worker.go: a WorkerPool that drains a
// closed channel of tasks across a fixed goroutine pool, reports progress on
// a ticker, and tallies atomic counters. Here each "task" is a pure
// evaluator call (internal/eval.Eval) against a chosen domain.Factory
// instead of a candidate-sequence search. Unlike the teacher's result.Table
// (a mutex-guarded slice appended to in whatever order workers finish),
// results here land in a pre-sized slice indexed by the task's position, so
// no lock is needed around the result set itself — only the shared
// completed-count needs to be atomic, since output order is fixed by
// cardinality known up front rather than by append order.
package batch

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jakstab-go/rtlabstract/internal/actx"
	"github.com/jakstab-go/rtlabstract/internal/domain"
	"github.com/jakstab-go/rtlabstract/internal/eval"
	"github.com/jakstab-go/rtlabstract/internal/rtl"
	"github.com/jakstab-go/rtlabstract/internal/valuation"
)

// Task is one expression to evaluate against a named domain factory.
type Task struct {
	Label      string
	Expr       *rtl.Expr
	DomainName string
	Factory    domain.Factory
	Valuation  *valuation.State
}

// Result is one Task's evaluation outcome.
type Result struct {
	Label       string `json:"label"`
	Expression  string `json:"expression"`
	Width       uint8  `json:"width"`
	Domain      string `json:"domain"`
	Value       string `json:"result"`
	DegradedTop bool   `json:"degraded_top"`
}

// Pool evaluates a batch of Tasks across a fixed-size goroutine pool.
type Pool struct {
	NumWorkers int

	completed atomic.Int64
}

// NewPool creates a pool with the given worker count; 0 means runtime.NumCPU.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{NumWorkers: numWorkers}
}

// Run evaluates every task, logging/recording statistics via ctx, and
// reporting progress every progressEvery tick (0 disables the reporter). It
// blocks until every task completes and returns results in the same order
// as tasks.
func (p *Pool) Run(ctx *actx.Context, tasks []Task, progressEvery time.Duration) []Result {
	results := make([]Result, len(tasks))
	total := int64(len(tasks))

	type indexed struct {
		i int
		t Task
	}
	ch := make(chan indexed, len(tasks))
	for i, t := range tasks {
		ch <- indexed{i, t}
	}
	close(ch)

	done := make(chan struct{})
	start := time.Now()
	if progressEvery > 0 {
		go p.reportProgress(ctx, total, start, progressEvery, done)
	}

	var wg sync.WaitGroup
	for i := 0; i < p.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range ch {
				results[it.i] = p.evaluate(ctx, it.t)
				p.completed.Add(1)
			}
		}()
	}
	wg.Wait()
	close(done)
	return results
}

func (p *Pool) reportProgress(ctx *actx.Context, total int64, start time.Time, every time.Duration, done chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			comp := p.completed.Load()
			elapsed := time.Since(start)
			ctx.Logger.Info().
				Int64("completed", comp).
				Int64("total", total).
				Dur("elapsed", elapsed.Round(time.Second)).
				Msg("batch progress")
		}
	}
}

func (p *Pool) evaluate(ctx *actx.Context, task Task) Result {
	before := ctx.Stats.TopDegradations.Load()
	value := eval.Eval(ctx, task.Factory, task.Valuation, task.Expr)
	return Result{
		Label:       task.Label,
		Expression:  task.Expr.String(),
		Width:       task.Expr.Width,
		Domain:      task.DomainName,
		Value:       value.String(),
		DegradedTop: ctx.Stats.TopDegradations.Load() > before,
	}
}

// Completed returns the number of tasks completed so far.
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}
