// Package analyzers holds the built-in analyzer set run for every subject.
package analyzers

import (
	"errors"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
)

const (
	Quote              models.AnalyzerID = "quote"
	PriceHistory       models.AnalyzerID = "priceHistory"
	TechnicalAnalysis  models.AnalyzerID = "technicalAnalysis"
	MomentumAnalysis   models.AnalyzerID = "momentumAnalysis"
	RiskAssessment     models.AnalyzerID = "riskAssessment"
	VolumeProfile      models.AnalyzerID = "volumeProfile"
	MarketRegime       models.AnalyzerID = "marketRegime"
	VolatilityForecast models.AnalyzerID = "volatilityForecast"
	AnomalyScan        models.AnalyzerID = "anomalyScan"
	EdgeScore          models.AnalyzerID = "edgeScore"
)

var (
	errQuotesNotConfigured    = errors.New("quote provider not configured")
	errStoreNotConfigured     = errors.New("feature store not configured")
	errAnalyticsNotConfigured = errors.New("analytics service not configured")
)

// Deps are the backing services. Any of them may be nil; analyzers that need a
// missing one fail at run time instead of disappearing from the report.
type Deps struct {
	Quotes  domsvc.QuoteProvider
	Store   domrepo.FeatureStore
	Regime  domsvc.RegimeDetector
	Vol     domsvc.VolatilityForecaster
	Anomaly domsvc.AnomalyDetector
	Edge    domsvc.EdgeScorer
}

// Options tune candle loading and remote horizons.
type Options struct {
	Window    int
	Timeframe domrepo.Timeframe
	Horizon   string
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = 250
	}
	if !domrepo.IsValidTimeframe(o.Timeframe) {
		o.Timeframe = domrepo.DefaultTimeframe()
	}
	if o.Horizon == "" {
		o.Horizon = "1d"
	}
	return o
}

// Registry is the static analyzer list.
type Registry struct {
	deps        Deps
	opts        Options
	invocations []domsvc.Invocation
}

func NewRegistry(deps Deps, opts Options) *Registry {
	r := &Registry{deps: deps, opts: opts.withDefaults()}
	r.invocations = []domsvc.Invocation{
		{ID: Quote, Analyzer: domsvc.AnalyzerFunc(r.quote)},
		{ID: PriceHistory, Analyzer: domsvc.AnalyzerFunc(r.priceHistory)},
		{ID: TechnicalAnalysis, Analyzer: domsvc.AnalyzerFunc(r.technical)},
		{ID: MomentumAnalysis, Analyzer: domsvc.AnalyzerFunc(r.momentum)},
		{ID: RiskAssessment, Analyzer: domsvc.AnalyzerFunc(r.risk)},
		{ID: VolumeProfile, Analyzer: domsvc.AnalyzerFunc(r.volumeProfile)},
		{ID: MarketRegime, Analyzer: domsvc.AnalyzerFunc(r.regime)},
		{ID: VolatilityForecast, Analyzer: domsvc.AnalyzerFunc(r.volatility)},
		{ID: AnomalyScan, Analyzer: domsvc.AnalyzerFunc(r.anomalies)},
		{ID: EdgeScore, Analyzer: domsvc.AnalyzerFunc(r.edge)},
	}
	return r
}

// Invocations returns a fresh copy of the list for one run.
func (r *Registry) Invocations() []domsvc.Invocation {
	out := make([]domsvc.Invocation, len(r.invocations))
	copy(out, r.invocations)
	return out
}
