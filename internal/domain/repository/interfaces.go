package repository

import (
	"context"

	"StockPulse/internal/domain/models"
)

// ReportPublisher emits finished reports to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r *models.Report) error
	Close() error
}

// Metrics records engine-level observations.
type Metrics interface {
	RecordTask(analyzer string, success bool, seconds float64)
	RecordRun(signal string, seconds float64)
	RecordError(kind string)
}
