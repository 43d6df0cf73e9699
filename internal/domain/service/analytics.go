package service

import (
	"context"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/document"
)

// Analyzer computes one facet of analysis for a subject. Failures are reported through
// the returned error; the payload has no fixed schema.
type Analyzer interface {
	Analyze(ctx context.Context, subject models.Subject) (document.Value, error)
}

// AnalyzerFunc adapts a plain function to Analyzer.
type AnalyzerFunc func(ctx context.Context, subject models.Subject) (document.Value, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, subject models.Subject) (document.Value, error) {
	return f(ctx, subject)
}

// Invocation is one registered unit of work for a run.
type Invocation struct {
	ID       models.AnalyzerID
	Analyzer Analyzer
}

// RegimeDetector detects market regimes based on returns time series.
type RegimeDetector interface {
	Detect(ctx context.Context, symbol string, returns []float64) (models.Regime, error)
}

// VolatilityForecaster forecasts volatility for a given horizon using features.
type VolatilityForecaster interface {
	Forecast(ctx context.Context, symbol string, features map[string]float64, horizon string) (models.VolatilityForecast, error)
}

// AnomalyDetector detects anomalies using returns and volatility series.
type AnomalyDetector interface {
	Detect(ctx context.Context, symbol string, returns []float64, volSeries []float64) ([]models.MarketAnomaly, error)
}

// EdgeScorer predicts edge/probability using features for a horizon.
type EdgeScorer interface {
	Predict(ctx context.Context, symbol string, features map[string]float64, horizon string) (models.EdgeScore, error)
}

// QuoteProvider returns the latest quote for a symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
}
