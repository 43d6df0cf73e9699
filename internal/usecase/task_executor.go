package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	applogger "StockPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// TaskObserver is called once per settled task, from the single fan-in goroutine.
type TaskObserver func(id models.AnalyzerID, outcome models.Outcome)

// ExecutorOption configures TaskExecutor.
type ExecutorOption func(*TaskExecutor)

// WithTaskTimeout bounds every task. Zero disables the bound.
func WithTaskTimeout(d time.Duration) ExecutorOption {
	return func(e *TaskExecutor) {
		if d > 0 {
			e.taskTimeout = d
		}
	}
}

// WithExecutorMetrics sets the metrics port.
func WithExecutorMetrics(m domrepo.Metrics) ExecutorOption {
	return func(e *TaskExecutor) {
		if m != nil {
			e.metrics = m
		}
	}
}

// TaskExecutor dispatches every invocation of a run concurrently and joins only
// when all of them have settled. One task failing never affects its siblings.
type TaskExecutor struct {
	l           *applogger.Logger
	metrics     domrepo.Metrics
	taskTimeout time.Duration
}

func NewTaskExecutor(l *applogger.Logger, opts ...ExecutorOption) *TaskExecutor {
	if l == nil {
		l = applogger.Nop()
	}
	e := &TaskExecutor{l: l, metrics: noopMetrics{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type settled struct {
	id      models.AnalyzerID
	outcome models.Outcome
}

// Run executes all invocations against subject and returns the filled store.
func (e *TaskExecutor) Run(ctx context.Context, subject models.Subject, invocations []domsvc.Invocation) (*models.ResultStore, error) {
	return e.RunObserved(ctx, subject, invocations, nil)
}

// RunObserved is Run with a per-task settle callback.
func (e *TaskExecutor) RunObserved(ctx context.Context, subject models.Subject, invocations []domsvc.Invocation, observe TaskObserver) (*models.ResultStore, error) {
	subject, err := models.NewSubject(subject.Symbol, subject.CompanyName)
	if err != nil {
		return nil, err
	}
	tasks := dedupeInvocations(invocations)

	// buffered to len(tasks) so no task ever blocks on the fan-in loop
	results := make(chan settled, len(tasks))
	var g errgroup.Group
	for _, inv := range tasks {
		g.Go(func() error {
			start := time.Now()
			o := e.runOne(ctx, subject, inv)
			results <- settled{id: inv.ID, outcome: o.WithDuration(time.Since(start))}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	entries := make(map[models.AnalyzerID]models.Outcome, len(tasks))
	for r := range results {
		entries[r.id] = r.outcome
		e.record(subject, r)
		if observe != nil {
			observe(r.id, r.outcome)
		}
	}
	return models.NewResultStore(entries), nil
}

func (e *TaskExecutor) runOne(ctx context.Context, subject models.Subject, inv domsvc.Invocation) models.Outcome {
	if inv.Analyzer == nil {
		return models.Failure("analyzer not implemented")
	}
	tctx, cancel := ctx, context.CancelFunc(func() {})
	if e.taskTimeout > 0 {
		tctx, cancel = context.WithTimeout(ctx, e.taskTimeout)
	}
	defer cancel()

	done := make(chan models.Outcome, 1)
	go func() { done <- invokeSafely(tctx, subject, inv.Analyzer) }()

	select {
	case o := <-done:
		return o
	case <-tctx.Done():
		if ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return models.Failure(fmt.Sprintf("timed out after %s", e.taskTimeout))
		}
		return models.Failure(fmt.Sprintf("canceled: %v", ctx.Err()))
	}
}

// invokeSafely converts errors and panics into Failure outcomes.
func invokeSafely(ctx context.Context, subject models.Subject, a domsvc.Analyzer) (out models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = models.Failure(fmt.Sprintf("panic: %v", r))
		}
	}()
	payload, err := a.Analyze(ctx, subject)
	if err != nil {
		return models.Failure(err.Error())
	}
	return models.Success(payload)
}

func (e *TaskExecutor) record(subject models.Subject, r settled) {
	e.metrics.RecordTask(string(r.id), r.outcome.IsSuccess(), r.outcome.Duration.Seconds())
	if r.outcome.IsSuccess() {
		e.l.Debug("analysis task settled",
			applogger.String("symbol", subject.Symbol),
			applogger.String("analyzer", string(r.id)),
			applogger.Duration("duration_ms", r.outcome.Duration),
		)
		return
	}
	e.l.Warn("analysis task failed",
		applogger.String("symbol", subject.Symbol),
		applogger.String("analyzer", string(r.id)),
		applogger.String("reason", r.outcome.Message),
		applogger.Duration("duration_ms", r.outcome.Duration),
	)
}

// dedupeInvocations keeps one invocation per id; a later registration replaces an
// earlier one in place.
func dedupeInvocations(invocations []domsvc.Invocation) []domsvc.Invocation {
	pos := make(map[models.AnalyzerID]int, len(invocations))
	out := make([]domsvc.Invocation, 0, len(invocations))
	for _, inv := range invocations {
		if i, ok := pos[inv.ID]; ok {
			out[i] = inv
			continue
		}
		pos[inv.ID] = len(out)
		out = append(out, inv)
	}
	return out
}

type noopMetrics struct{}

func (noopMetrics) RecordTask(string, bool, float64) {}
func (noopMetrics) RecordRun(string, float64)        {}
func (noopMetrics) RecordError(string)               {}
