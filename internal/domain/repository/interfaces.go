package repository

import (
	"context"
	"errors"
	"time"

	"FinBoard/internal/domain/models"
)

// ErrNoReport is returned by ReportStore.Load when nothing has been persisted.
var ErrNoReport = errors.New("no report persisted")

// ErrSymbolNotFound is returned by QuoteSource when the upstream does not
// know the symbol (as opposed to a transport failure).
var ErrSymbolNotFound = errors.New("symbol not found")

// QuoteSource fetches per-symbol snapshot info and price history.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	// History returns ordered closing prices for the given range/interval
	// (e.g. "1mo"/"1d"). Never returns an empty series without an error.
	History(ctx context.Context, symbol, rng, interval string) ([]models.PricePoint, error)
}

// MoverSource fetches one raw scraped market-summary table.
type MoverSource interface {
	Table(ctx context.Context, category models.MoverCategory) ([]models.MoverRow, error)
}

// ReportStore persists the latest generated report (most recent wins).
type ReportStore interface {
	Save(ctx context.Context, r *models.Report) error
	Load(ctx context.Context) (*models.Report, error)
}

// ReportHistory appends report snapshots for later analysis. Best-effort;
// failures must not fail the build.
type ReportHistory interface {
	Append(ctx context.Context, r *models.Report) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits an event for each successfully generated report.
type Publisher interface {
	PublishReport(ctx context.Context, r *models.Report) error
	Close() error
}

// MarketHours decides whether automatic regeneration is allowed at t.
type MarketHours interface {
	IsOpen(t time.Time) bool
}

// PriceStream is a live feed of last-price updates used to keep the quote
// cache warm between regenerations.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordReport(period string, seconds float64)
	RecordError(kind string)
	RecordCache(name string, hit bool)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
