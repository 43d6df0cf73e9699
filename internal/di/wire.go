//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"StockPulse/internal/services/analyzers"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvideClickHouseClient,
)

var analysisSet = wire.NewSet(
	ProvideFeatureStore,
	ProvideQuoteProvider,
	ProvideRegimeDetector,
	ProvideVolatilityForecaster,
	ProvideAnomalyDetector,
	ProvideEdgeScorer,
	ProvideRegistry,
	wire.Bind(new(usecase.InvocationSource), new(*analyzers.Registry)),
	ProvideTaskExecutor,
	ProvideSignalAggregator,
	ProvideReportFormatter,
	ProvideReportPublisher,
	ProvideAnalysisUseCase,
)

// InitializeApp wires the long-running service.
func InitializeApp(ctx context.Context, cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		analysisSet,
		ProvideKafkaConsumer,
		ProvideCounterStore,
		ProvideAnalysisHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAnalysis wires only the analysis pipeline, for one-shot runs.
func InitializeAnalysis(ctx context.Context, cfg *config.Config) (*usecase.AnalysisUseCase, func(), error) {
	wire.Build(infraSet, analysisSet)
	return nil, nil, nil
}
