package di

import (
	"context"
	"fmt"
	"time"

	"ArenaPull/internal/domain/repository"
	internalrepo "ArenaPull/internal/repository"
	"ArenaPull/internal/service/arena"
	icache "ArenaPull/internal/service/cache"
	"ArenaPull/internal/service/provider"
	"ArenaPull/internal/service/ratelimit"
	"ArenaPull/internal/usecase"
	pkgcache "ArenaPull/pkg/cache"
	pkgch "ArenaPull/pkg/clickhouse"
	"ArenaPull/pkg/config"
	pkgkafka "ArenaPull/pkg/kafka"
	applogger "ArenaPull/pkg/logger"
	"ArenaPull/pkg/metrics"
	"ArenaPull/pkg/queue"
	"ArenaPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideArenaClient creates the arena API client.
func ProvideArenaClient(cfg *config.Config) repository.ChallengeAPI {
	return arena.New(cfg.Arena.BaseURL, cfg.Arena.APIKey, cfg.Arena.RequestTimeout)
}

// ProvideForecasters creates one prediction provider client per configured model.
func ProvideForecasters(cfg *config.Config) []repository.Forecaster {
	out := make([]repository.Forecaster, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		out = append(out, provider.New(m.Name, m.ModelName, m.URL, cfg.Forecaster.RequestTimeout))
	}
	return out
}

// ProvideLimiter creates the per-provider token bucket limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvidePool creates the prediction worker pool.
func ProvidePool(cfg *config.Config, lgr *applogger.Logger) *queue.Pool {
	return queue.NewPool(lgr,
		queue.WithWorkers(cfg.Forecaster.Workers),
		queue.WithQueueSize(cfg.Forecaster.Workers*4),
	)
}

// ProvideRegistry creates the processed-pair registry.
func ProvideRegistry() *usecase.ProcessedRegistry {
	return usecase.NewProcessedRegistry()
}

// ProvideRequester creates the forecast requester use case.
func ProvideRequester(
	lgr *applogger.Logger,
	pool *queue.Pool,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.ForecastRequester {
	return usecase.NewForecastRequester(
		lgr,
		pool,
		limiter,
		m,
		cfg.Forecaster.MaxRPS,
		cfg.Forecaster.RequestTimeout,
		cfg.Forecaster.QuantileLevels,
	)
}

// ProvideFormatter creates the forecast formatter use case.
func ProvideFormatter(lgr *applogger.Logger) *usecase.ForecastFormatter {
	return usecase.NewForecastFormatter(lgr)
}

// ProvideJournal creates the upload journal sink selected by journal.type.
func ProvideJournal(cfg *config.Config, lgr *applogger.Logger) (repository.Journal, error) {
	switch cfg.Journal.Type {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaJournal(producer, cfg.Kafka.Topic), nil

	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		table := cfg.ClickHouse.Database + ".forecast_uploads"
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, []string{
			"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
                challenge_id Int64,
                challenge_name String,
                model_name String,
                outcome String,
                steps Int32,
                frequency String,
                horizon String,
                uploaded_at DateTime,
                series String,
                failed_series String,
                error String
            ) ENGINE=MergeTree ORDER BY (uploaded_at, challenge_id, model_name)`,
		}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}

		journal := internalrepo.NewClickHouseJournal(client, table)
		journal.SetLogger(lgr)
		return journal, nil

	default:
		return internalrepo.NewNoopJournal(), nil
	}
}

// ProvideContextCache creates the optional per-cycle context-data cache.
// Returns nil when disabled; the poller fetches fresh each time.
func ProvideContextCache(cfg *config.Config, lgr *applogger.Logger) (repository.ContextCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	memory := pkgcache.NewMemoryCache()
	if !cfg.Cache.Redis.Enabled {
		return icache.NewContextCache(lgr, memory, cfg.Cache.ContextTTL), nil
	}

	redis, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := pkgcache.NewLayeredCache(redis)
	return icache.NewContextCache(lgr, layered, cfg.Cache.ContextTTL), nil
}

// ProvidePoller creates the challenge poller use case.
func ProvidePoller(
	lgr *applogger.Logger,
	api repository.ChallengeAPI,
	forecasters []repository.Forecaster,
	registry *usecase.ProcessedRegistry,
	requester *usecase.ForecastRequester,
	formatter *usecase.ForecastFormatter,
	journal repository.Journal,
	cache repository.ContextCache,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.ChallengePoller {
	return usecase.NewChallengePoller(
		lgr, api, forecasters, registry, requester, formatter, journal, cache, m,
		cfg.Arena.PollInterval,
	)
}

// ProvideRegistrar creates the model registrar use case.
func ProvideRegistrar(
	lgr *applogger.Logger,
	api repository.ChallengeAPI,
	forecasters []repository.Forecaster,
	cfg *config.Config,
) *usecase.ModelRegistrar {
	return usecase.NewModelRegistrar(lgr, api, forecasters, cfg.Models)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	poller *usecase.ChallengePoller,
	registrar *usecase.ModelRegistrar,
	journal repository.Journal,
	pool *queue.Pool,
) *server.App {
	return server.New(cfg, lgr, poller, registrar, journal, pool)
}
