package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FinBoard/internal/usecase"
	"FinBoard/internal/config"
	xhttp "FinBoard/pkg/http"
	pkgkafka "FinBoard/pkg/kafka"
	applogger "FinBoard/pkg/logger"
)

// Closer is anything the app must close on shutdown.
type Closer interface {
	Close() error
}

// App encapsulates the application lifecycle: HTTP server, regeneration
// scheduler, price collector and the refresh-request consumer.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	coord     *usecase.Coordinator
	collector *usecase.PriceCollector
	consumer  *pkgkafka.Consumer
	handler   xhttp.Handler
	closers   []Closer

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. collector and
// consumer are optional.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	coord *usecase.Coordinator,
	collector *usecase.PriceCollector,
	consumer *pkgkafka.Consumer,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		coord:     coord,
		collector: collector,
		consumer:  consumer,
		handler:   handler,
	}
}

// AddCloser registers a resource to close on shutdown, in reverse order.
func (a *App) AddCloser(c Closer) {
	a.closers = append(a.closers, c)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if len(a.cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORS(a.cfg.Server.CORSOrigins))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	// Scheduler drives periodic regeneration; staleness and market hours
	// are checked inside the coordinator.
	go a.coord.Run(ctx, a.cfg.Report.SchedulerTick)

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Warn("price collector start failed, continuing without live prices", applogger.Error(err))
		} else {
			a.log.Info("price collector started")
		}
	}

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.RefreshTopic))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("price collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
