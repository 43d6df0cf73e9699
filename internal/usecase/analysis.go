package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	applogger "StockPulse/pkg/logger"

	"github.com/google/uuid"
)

// InvocationSource supplies the analyzer list for a run.
type InvocationSource interface {
	Invocations() []domsvc.Invocation
}

// AnalyzeParams is the raw input of one run.
type AnalyzeParams struct {
	Symbol      string
	CompanyName string
}

// AnalysisUseCase runs the whole pipeline: execute, aggregate, format, publish.
type AnalysisUseCase struct {
	source    InvocationSource
	executor  *TaskExecutor
	agg       *SignalAggregator
	formatter *ReportFormatter
	publisher domrepo.ReportPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

// NewAnalysisUseCase wires the pipeline. publisher and metrics may be nil.
func NewAnalysisUseCase(source InvocationSource, executor *TaskExecutor, agg *SignalAggregator, formatter *ReportFormatter, publisher domrepo.ReportPublisher, metrics domrepo.Metrics, l *applogger.Logger) *AnalysisUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AnalysisUseCase{
		source:    source,
		executor:  executor,
		agg:       agg,
		formatter: formatter,
		publisher: publisher,
		metrics:   metrics,
		l:         l,
	}
}

// Run returns a report even when every analyzer fails. The only error is an
// invalid subject, wrapping models.ErrInvalidSubject.
func (uc *AnalysisUseCase) Run(ctx context.Context, p AnalyzeParams) (*models.Report, error) {
	return uc.Stream(ctx, p, nil)
}

// Stream is Run with observe called as each analyzer settles.
func (uc *AnalysisUseCase) Stream(ctx context.Context, p AnalyzeParams, observe TaskObserver) (*models.Report, error) {
	subject, err := models.NewSubject(p.Symbol, p.CompanyName)
	if err != nil {
		uc.metrics.RecordError("invalid_subject")
		return nil, err
	}

	start := time.Now()
	store, err := uc.executor.RunObserved(ctx, subject, uc.source.Invocations(), observe)
	if err != nil {
		uc.metrics.RecordError("dispatch")
		return nil, fmt.Errorf("dispatch %s: %w", subject.Symbol, err)
	}

	c := uc.agg.Aggregate(store)
	report := uc.formatter.Format(subject, c, store)
	report.RunID = uuid.NewString()

	elapsed := time.Since(start)
	uc.metrics.RecordRun(string(report.Signal), elapsed.Seconds())
	ok, failed := report.Health()
	uc.l.Info("analysis completed",
		applogger.String("run_id", report.RunID),
		applogger.String("symbol", subject.Symbol),
		applogger.String("signal", string(report.Signal)),
		applogger.Float64("confidence", report.Confidence),
		applogger.Int("succeeded", ok),
		applogger.Int("failed", failed),
		applogger.Duration("elapsed", elapsed),
	)

	if uc.publisher != nil {
		if err := uc.publisher.PublishReport(ctx, report); err != nil {
			uc.metrics.RecordError("publish")
			uc.l.Error("failed to publish report",
				applogger.String("run_id", report.RunID),
				applogger.String("symbol", subject.Symbol),
				applogger.Error(err),
			)
		}
	}
	return report, nil
}
