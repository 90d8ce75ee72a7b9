package di

import (
	"context"
	"fmt"

	"NatalChart/internal/domain/repository"
	"NatalChart/internal/handler/api"
	internalrepo "NatalChart/internal/repository"
	svcmetrics "NatalChart/internal/service/metrics"
	"NatalChart/internal/service/ratelimit"
	"NatalChart/internal/services/astro"
	"NatalChart/internal/usecase"
	"NatalChart/pkg/cache"
	"NatalChart/pkg/config"
	xhttp "NatalChart/pkg/http"
	"NatalChart/pkg/http/middleware"
	pkgkafka "NatalChart/pkg/kafka"
	applogger "NatalChart/pkg/logger"
	"NatalChart/pkg/metrics"
	"NatalChart/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCalculator builds the chart engine. The periodic model falls back
// to the reference amplitude when none is configured.
func ProvideCalculator(cfg *config.Config) *astro.Calculator {
	amplitude := cfg.Chart.Perturbation
	switch {
	case cfg.Chart.Model == "mean-motion":
		amplitude = 0
	case amplitude == 0:
		amplitude = astro.DefaultPerturbation
	}
	model := astro.NewPeriodicModel(
		astro.WithPerturbation(amplitude),
		astro.WithPerturbationRate(cfg.Chart.PerturbationRate),
	)
	return astro.NewCalculator(
		astro.WithModel(model),
		astro.WithAspects(astro.DefaultAspectDetector()),
		astro.WithRetrogradeStep(cfg.Chart.RetrogradeStep),
	)
}

// ProvideChartCache creates the memory cache, layered over Redis when
// enabled. Returns nil when caching is off.
func ProvideChartCache(cfg *config.Config) (repository.ChartCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	mem := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
	)
	if !cfg.Cache.Redis.Enabled {
		return internalrepo.NewChartCache(mem, cfg.Cache.TTL), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		_ = mem.Close()
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return internalrepo.NewChartCache(cache.NewLayeredCache(mem, rc), cfg.Cache.TTL), nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is off.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideChartPublisher creates Kafka publisher repository.
func ProvideChartPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ChartPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideChartService creates the chart use case.
func ProvideChartService(
	calc *astro.Calculator,
	metrics repository.Metrics,
	chartCache repository.ChartCache,
	pub repository.ChartPublisher,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ChartService {
	return usecase.NewChartService(calc, metrics,
		usecase.WithCache(chartCache),
		usecase.WithPublisher(pub),
		usecase.WithBatch(cfg.Chart.BatchLimit, cfg.Chart.BatchWorkers),
		usecase.WithLogger(l),
	)
}

// ProvideRateLimiter creates the per-client limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
}

func ProvideChartHandler(l *applogger.Logger, svc *usecase.ChartService, limiter *ratelimit.Limiter) *api.ChartEchoHandler {
	var allower middleware.Allower
	if limiter != nil {
		allower = limiter
	}
	return api.NewChartEchoHandler(l, svc, allower)
}

func ProvideSkyHandler(l *applogger.Logger, svc *usecase.ChartService, cfg *config.Config) *api.SkyStreamHandler {
	return api.NewSkyStreamHandler(l, svc, cfg.Stream.MinInterval, cfg.Stream.MaxInterval, cfg.Server.AllowOrigins)
}

// ProvideHTTPServer builds the Echo server with every handler registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, charts *api.ChartEchoHandler, sky *api.SkyStreamHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer([]xhttp.Handler{charts, sky},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaChartRequestsHandler handles the chart request topic.
func ProvideKafkaChartRequestsHandler(cfg *config.Config, svc *usecase.ChartService, metrics repository.Metrics) *usecase.KafkaChartRequestsHandler {
	return usecase.NewKafkaChartRequestsHandler(cfg.Kafka.RequestTopic, svc, metrics)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaChartRequestsHandler,
	pub repository.ChartPublisher,
	chartCache repository.ChartCache,
	limiter *ratelimit.Limiter,
) *server.App {
	opts := []server.Option{
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithCloser("chart publisher", pub),
	}
	if chartCache != nil {
		opts = append(opts, server.WithCloser("chart cache", chartCache))
	}
	if limiter != nil {
		opts = append(opts, server.WithBackground("ratelimit sweeper", limiter.Run))
	}
	if consumer != nil {
		consumer.SetHook(pkgkafka.HookFuncs{
			Err: func(_ context.Context, km kafka.Message, err error) {
				l.Warn("chart request failed",
					applogger.String("topic", km.Topic),
					applogger.Int("partition", km.Partition),
					applogger.Int64("offset", km.Offset),
					applogger.Error(err),
				)
			},
		})
		opts = append(opts, server.WithConsumer(consumer, kh))
	}
	return server.New(l, srv, opts...)
}
