package di

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	drepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/handler/api"
	mid "FinBoard/internal/middleware"
	internalrepo "FinBoard/internal/repository"
	svccache "FinBoard/internal/service/cache"
	"FinBoard/internal/service/markethours"
	"FinBoard/internal/service/movers"
	"FinBoard/internal/service/quotes"
	"FinBoard/internal/service/ratelimit"
	"FinBoard/internal/service/stream"
	"FinBoard/internal/usecase"
	pkgcache "FinBoard/pkg/cache"
	pkgch "FinBoard/pkg/clickhouse"
	"FinBoard/internal/config"
	xhttp "FinBoard/pkg/http"
	pkgkafka "FinBoard/pkg/kafka"
	applogger "FinBoard/pkg/logger"
	"FinBoard/pkg/metrics"
	"FinBoard/pkg/server"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideQuoteSource creates the upstream quote API client.
func ProvideQuoteSource(cfg *config.Config, m drepo.Metrics, log *applogger.Logger) drepo.QuoteSource {
	return quotes.NewClient(&cfg.Quotes, ratelimit.New(), m, log)
}

// ProvideQuoteCache creates the per-run quote cache over the quote source.
func ProvideQuoteCache(src drepo.QuoteSource, m drepo.Metrics) *svccache.QuoteCache {
	return svccache.NewQuoteCache(src, m)
}

// ProvideMoverSource creates the mover table scraper.
func ProvideMoverSource(cfg *config.Config, log *applogger.Logger) drepo.MoverSource {
	return movers.NewClient(&cfg.Movers, log)
}

// ProvideMoversCache creates the TTL cache over the scraper. Fetches are
// throttled to one per second so the four categories never burst.
func ProvideMoversCache(src drepo.MoverSource, cfg *config.Config, m drepo.Metrics, log *applogger.Logger) *svccache.MoversCache {
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	return svccache.NewMoversCache(src, limiter, cfg.MoversTTL, m, log)
}

// ProvideOverview creates the market overview aggregator.
func ProvideOverview(qc *svccache.QuoteCache, mc *svccache.MoversCache, log *applogger.Logger) *usecase.Overview {
	return usecase.NewOverview(qc, mc, log)
}

// ProvideReportBuilder creates the report builder use case.
func ProvideReportBuilder(
	qc *svccache.QuoteCache,
	src drepo.QuoteSource,
	overview *usecase.Overview,
	cfg *config.Config,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.ReportBuilder {
	return usecase.NewReportBuilder(qc, src, overview, cfg.Portfolio.Assets, cfg.Watchlist, cfg.Report.TopN, m, log)
}

// ProvideCacheService builds the report persistence cache: layered over
// Redis when enabled, plain in-memory otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideReportStore persists the latest report in the cache layer.
func ProvideReportStore(c pkgcache.Service) drepo.ReportStore {
	return internalrepo.NewReportStore(c, 0)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideReportHistory creates the ClickHouse history writer, or nil when
// ClickHouse is disabled.
func ProvideReportHistory(client *pkgch.Client, cfg *config.Config) (drepo.ReportHistory, error) {
	if client == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := internalrepo.NewClickHouseHistory(ctx, client, cfg.ClickHouse.Database)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriterTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideReportPublisher creates the report event publisher, or nil when
// Kafka is disabled.
func ProvideReportPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ReportTopic)
}

// ProvideMarketHours creates the trading session clock.
func ProvideMarketHours(cfg *config.Config) (drepo.MarketHours, error) {
	clock, err := markethours.New(&cfg.MarketHours)
	if err != nil {
		return nil, err
	}
	return clock, nil
}

// ProvideCoordinator creates the regeneration coordinator. The cache layer
// doubles as the cross-process regeneration lock.
func ProvideCoordinator(
	builder *usecase.ReportBuilder,
	store drepo.ReportStore,
	history drepo.ReportHistory,
	publisher drepo.Publisher,
	hours drepo.MarketHours,
	cacheSvc pkgcache.Service,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.Coordinator {
	return usecase.NewCoordinator(builder, store, history, publisher, hours, cacheSvc, cfg.Report.RefreshInterval, log)
}

// ProvidePriceCollector wires the live price feed into the quote cache, or
// returns nil when no stream API key is configured.
func ProvidePriceCollector(
	cfg *config.Config,
	qc *svccache.QuoteCache,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.PriceCollector {
	if cfg.Stream.APIKey == "" {
		return nil
	}
	symbols := make([]string, 0, len(cfg.Watchlist))
	for _, w := range cfg.Watchlist {
		symbols = append(symbols, w.Symbol)
	}
	feed := stream.NewClient(&cfg.Stream, symbols, log)
	sink := internalrepo.NewQuoteCacheSink(qc, m)
	pipe := mid.NewPricePipeline(sink, m)
	return usecase.NewPriceCollector(feed, pipe, m)
}

// ProvideKafkaConsumer creates the refresh-request consumer, or nil when
// Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, coord *usecase.Coordinator, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(internalrepo.NewRefreshHandler(cfg.Kafka.RefreshTopic, coord, log))
	return consumer, nil
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	log *applogger.Logger,
	coord *usecase.Coordinator,
	history drepo.ReportHistory,
	collector *usecase.PriceCollector,
) xhttp.Handler {
	var feed api.StreamStatus
	if collector != nil {
		feed = collector
	}
	return api.NewReportEchoHandler(log, coord, history, feed)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	coord *usecase.Coordinator,
	collector *usecase.PriceCollector,
	consumer *pkgkafka.Consumer,
	handler xhttp.Handler,
	producer *pkgkafka.Producer,
	history drepo.ReportHistory,
	publisher drepo.Publisher,
) *server.App {
	app := server.New(cfg, log, coord, collector, consumer, handler)

	if producer != nil {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   time.Minute,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      producerPublisher{producer},
		})
	}
	if history != nil {
		app.AddCloser(history)
	}
	if publisher != nil {
		app.AddCloser(publisher)
	}
	return app
}

// producerPublisher adapts the Kafka producer to the log collector.
type producerPublisher struct {
	p *pkgkafka.Producer
}

func (pp producerPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return pp.p.Publish(ctx, topic, nil, payload)
}
