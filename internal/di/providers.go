package di

import (
	"context"
	"fmt"
	"os"
	"sort"

	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/finnhub"
	svcmetrics "StockPulse/internal/service/metrics"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/services/analytics"
	"StockPulse/internal/services/analyzers"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"

	"github.com/labstack/echo/v4"
)

// ProvideKafkaProducer creates the shared producer. It returns nil when kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the process logger. When collection is on and kafka is
// available, aggregated warn and error logs go to the log topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	l = l.With(applogger.String("env", cfg.Environment))
	if !cfg.Logging.Collect || producer == nil {
		return l, func() {}, nil
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   cfg.Logging.CollectInterval,
		CountThreshold: cfg.Logging.CollectThreshold,
		Topic:          cfg.Kafka.LogTopic,
		Publisher:      internalrepo.NewKafkaLogPublisher(producer),
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "log collector publish: %v\n", err)
		},
	})
	return l, l.RemoveCollector, nil
}

// ProvideMetrics returns the prometheus recorder, or nil when metrics are off.
func ProvideMetrics(cfg *config.Config) domrepo.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	svcmetrics.Register()
	return metrics.New()
}

// ProvideClickHouseClient connects and prepares the candle schema. It returns nil
// when clickhouse is disabled.
func ProvideClickHouseClient(ctx context.Context, cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, internalrepo.FeatureStoreSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideFeatureStore returns a nil interface when there is no clickhouse client,
// so candle analyzers report "feature store not configured".
func ProvideFeatureStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.FeatureStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHFeatureStore(ch, cfg.ClickHouse.Database, l)
}

func ProvideQuoteProvider(cfg *config.Config) domsvc.QuoteProvider {
	if cfg.Finnhub.APIKey == "" {
		return nil
	}
	return finnhub.New(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, cfg.Finnhub.Timeout)
}

func ProvideRegimeDetector(cfg *config.Config) domsvc.RegimeDetector {
	if cfg.Analytics.PythonServiceURL == "" {
		return nil
	}
	return analytics.NewHTTPRegimeDetector(cfg)
}

func ProvideVolatilityForecaster(cfg *config.Config) domsvc.VolatilityForecaster {
	if cfg.Analytics.PythonServiceURL == "" {
		return nil
	}
	return analytics.NewHTTPVolatilityForecaster(cfg)
}

func ProvideAnomalyDetector(cfg *config.Config) domsvc.AnomalyDetector {
	if cfg.Analytics.PythonServiceURL == "" {
		return nil
	}
	return analytics.NewHTTPAnomalyDetector(cfg)
}

func ProvideEdgeScorer(cfg *config.Config) domsvc.EdgeScorer {
	if cfg.Analytics.PythonServiceURL == "" {
		return nil
	}
	return analytics.NewHTTPEdgeScorer(cfg)
}

// ProvideRegistry builds the static analyzer list.
func ProvideRegistry(
	cfg *config.Config,
	quotes domsvc.QuoteProvider,
	store domrepo.FeatureStore,
	regime domsvc.RegimeDetector,
	vol domsvc.VolatilityForecaster,
	anomaly domsvc.AnomalyDetector,
	edge domsvc.EdgeScorer,
) *analyzers.Registry {
	return analyzers.NewRegistry(analyzers.Deps{
		Quotes:  quotes,
		Store:   store,
		Regime:  regime,
		Vol:     vol,
		Anomaly: anomaly,
		Edge:    edge,
	}, analyzers.Options{
		Window:    cfg.Analysis.CandleWindow,
		Timeframe: domrepo.NormalizeTimeframe(cfg.Analysis.Timeframe),
		Horizon:   cfg.Analytics.Horizon,
	})
}

func ProvideTaskExecutor(cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) *usecase.TaskExecutor {
	opts := []usecase.ExecutorOption{usecase.WithTaskTimeout(cfg.Analysis.TaskTimeout)}
	if m != nil {
		opts = append(opts, usecase.WithExecutorMetrics(m))
	}
	return usecase.NewTaskExecutor(l, opts...)
}

func ProvideSignalAggregator(cfg *config.Config) *usecase.SignalAggregator {
	return usecase.NewSignalAggregator(usecase.WithConfidenceFloor(cfg.Analysis.ConfidenceFloor))
}

// ProvideReportFormatter orders the configured horizons by distance.
func ProvideReportFormatter(cfg *config.Config) *usecase.ReportFormatter {
	p := cfg.Analysis.Projection
	projector := usecase.NewRandomWalkProjector(usecase.ProjectionPolicy{
		SpreadPerMonth:          p.SpreadPerMonth,
		MaxSpread:               p.MaxSpread,
		AnnualDrift:             p.AnnualDrift,
		StartConfidence:         p.StartConfidence,
		ConfidenceDecayPerMonth: p.ConfidenceDecayPerMonth,
		MinConfidence:           p.MinConfidence,
	}, nil)
	return usecase.NewReportFormatter(projector, horizonsFromConfig(cfg.Analysis.Horizons))
}

func horizonsFromConfig(m map[string]int) []usecase.Horizon {
	out := make([]usecase.Horizon, 0, len(m))
	for label, days := range m {
		out = append(out, usecase.Horizon{Label: label, Days: days})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days < out[j].Days
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// ProvideReportPublisher returns nil without a producer. The producer cleanup owns
// the connection, so the publisher is never closed separately.
func ProvideReportPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.ReportPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.ReportTopic)
}

func ProvideAnalysisUseCase(
	source usecase.InvocationSource,
	executor *usecase.TaskExecutor,
	agg *usecase.SignalAggregator,
	formatter *usecase.ReportFormatter,
	publisher domrepo.ReportPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(source, executor, agg, formatter, publisher, m, l)
}

// ProvideKafkaConsumer subscribes the request handler to the request topic. It
// returns nil when kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, uc *usecase.AnalysisUseCase, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.TracingHook(l))
	consumer.RegisterHandler(usecase.NewAnalysisRequestHandler(cfg.Kafka.RequestTopic, uc, l))
	return consumer, nil
}

// ProvideCounterStore backs the rate limiter with redis when enabled, otherwise
// with an in-process map.
func ProvideCounterStore(ctx context.Context, cfg *config.Config) (cache.Counter, func(), error) {
	if !cfg.Redis.Enabled {
		mc := cache.NewMemoryCache()
		return mc, func() { _ = mc.Close() }, nil
	}
	rc, err := cache.NewRedisCache(ctx,
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdle),
		cache.WithRedisPrefix("stockpulse:"+cfg.Environment),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideAnalysisHandler mounts the rate limiter on the analysis routes when
// enabled.
func ProvideAnalysisHandler(cfg *config.Config, uc *usecase.AnalysisUseCase, store cache.Counter, l *applogger.Logger) *api.AnalysisEchoHandler {
	var mw []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		lim := ratelimit.New(store, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		mw = append(mw, ratelimit.Middleware(lim, l))
	}
	return api.NewAnalysisEchoHandler(l, uc, mw...)
}

// ProvideHTTPServer adds a readiness check for every remote store in use.
func ProvideHTTPServer(cfg *config.Config, h *api.AnalysisEchoHandler, ch *pkgch.Client, store cache.Counter, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	}
	if ch != nil {
		opts = append(opts, xhttp.WithReadiness("clickhouse", ch.Health))
	}
	if rc, ok := store.(*cache.RedisCache); ok {
		opts = append(opts, xhttp.WithReadiness("redis", rc.Ping))
	}
	return xhttp.NewServer([]xhttp.Handler{h}, opts...)
}

func ProvideApp(cfg *config.Config, srv *xhttp.Server, consumer *pkgkafka.Consumer, l *applogger.Logger) *server.App {
	return server.New(srv, consumer, l, cfg.Server.ShutdownTimeout)
}
