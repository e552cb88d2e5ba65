package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
	"FinBoard/pkg/logger"
)

type stubMetrics struct{}

func (stubMetrics) RecordReport(string, float64)    {}
func (stubMetrics) RecordError(string)              {}
func (stubMetrics) RecordCache(string, bool)        {}
func (stubMetrics) RecordLastPrice(string, float64) {}
func (stubMetrics) RecordLatency(string, float64)   {}

type fakeQuoteSource struct {
	calls   map[string]int
	history []models.PricePoint
	histErr error
}

func (f *fakeQuoteSource) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[symbol]++
	return &models.Quote{Symbol: symbol, CurrentPrice: models.Float(100)}, nil
}

func (f *fakeQuoteSource) History(_ context.Context, _, _, _ string) ([]models.PricePoint, error) {
	return f.history, f.histErr
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestQuoteCacheMemoizes(t *testing.T) {
	src := &fakeQuoteSource{}
	c := NewQuoteCache(src, stubMetrics{})

	for i := 0; i < 3; i++ {
		q, err := c.Quote(context.Background(), "aapl")
		if err != nil {
			t.Fatalf("Quote: %v", err)
		}
		if q.Symbol != "AAPL" {
			t.Fatalf("expected upper-cased symbol, got %q", q.Symbol)
		}
	}
	if src.calls["AAPL"] != 1 {
		t.Fatalf("expected 1 source call, got %d", src.calls["AAPL"])
	}
}

func TestQuoteCacheSetLastPrice(t *testing.T) {
	src := &fakeQuoteSource{}
	c := NewQuoteCache(src, stubMetrics{})

	if _, err := c.Quote(context.Background(), "MSFT"); err != nil {
		t.Fatalf("Quote: %v", err)
	}
	c.SetLastPrice("msft", 123.45)

	q, err := c.Quote(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.CurrentPrice == nil || *q.CurrentPrice != 123.45 {
		t.Fatalf("expected updated price 123.45, got %v", q.CurrentPrice)
	}
	if src.calls["MSFT"] != 1 {
		t.Fatalf("SetLastPrice must not evict the entry, got %d calls", src.calls["MSFT"])
	}

	// Unknown symbols are ignored.
	c.SetLastPrice("TSLA", 1)
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached quote, got %d", c.Len())
	}
}

func TestQuoteCacheWeeklyPerformance(t *testing.T) {
	base := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	var points []models.PricePoint
	for i := 0; i < 10; i++ {
		points = append(points, models.PricePoint{Time: base.AddDate(0, 0, i), Close: float64(100 + i)})
	}
	src := &fakeQuoteSource{history: points}
	c := NewQuoteCache(src, stubMetrics{})

	closes, ok := c.WeeklyPerformance(context.Background(), "nvda")
	if !ok {
		t.Fatal("expected weekly performance")
	}
	if len(closes) != weeklySessions {
		t.Fatalf("expected %d closes, got %d", weeklySessions, len(closes))
	}
	if closes[0] != 103 || closes[len(closes)-1] != 109 {
		t.Fatalf("expected trailing closes 103..109, got %v", closes)
	}
}

func TestQuoteCacheWeeklyPerformanceTooShort(t *testing.T) {
	src := &fakeQuoteSource{history: []models.PricePoint{{Close: 1}}}
	c := NewQuoteCache(src, stubMetrics{})

	if _, ok := c.WeeklyPerformance(context.Background(), "AAPL"); ok {
		t.Fatal("expected absent weekly performance for single session")
	}
}

type fakeMoverSource struct {
	rows  []models.MoverRow
	err   error
	calls int
}

func (f *fakeMoverSource) Table(_ context.Context, _ models.MoverCategory) ([]models.MoverRow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestMoversCacheTTL(t *testing.T) {
	src := &fakeMoverSource{rows: []models.MoverRow{{Symbol: "AAPL"}}}
	c := NewMoversCache(src, nil, 15*time.Minute, stubMetrics{}, testLogger(t))

	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, ok := c.Table(context.Background(), models.CategoryGainers); !ok {
		t.Fatal("expected table on first fetch")
	}
	now = now.Add(14 * time.Minute)
	if _, ok := c.Table(context.Background(), models.CategoryGainers); !ok {
		t.Fatal("expected cached table")
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 fetch within TTL, got %d", src.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Table(context.Background(), models.CategoryGainers); !ok {
		t.Fatal("expected refreshed table")
	}
	if src.calls != 2 {
		t.Fatalf("expected refresh after TTL, got %d fetches", src.calls)
	}
}

func TestMoversCacheKeepsStaleOnFailure(t *testing.T) {
	src := &fakeMoverSource{rows: []models.MoverRow{{Symbol: "AAPL"}}}
	c := NewMoversCache(src, nil, 15*time.Minute, stubMetrics{}, testLogger(t))

	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	table, ok := c.Table(context.Background(), models.CategoryLosers)
	if !ok || table.Stale {
		t.Fatalf("expected fresh table, got ok=%v stale=%v", ok, table != nil && table.Stale)
	}

	src.err = errors.New("upstream down")
	now = now.Add(20 * time.Minute)

	table, ok = c.Table(context.Background(), models.CategoryLosers)
	if !ok {
		t.Fatal("expected stale table to be served")
	}
	if !table.Stale {
		t.Fatal("expected table flagged stale")
	}
	if len(table.Rows) != 1 || table.Rows[0].Symbol != "AAPL" {
		t.Fatalf("expected previous rows preserved, got %+v", table.Rows)
	}
}

func TestMoversCacheFirstFetchFailure(t *testing.T) {
	src := &fakeMoverSource{err: errors.New("upstream down")}
	c := NewMoversCache(src, nil, 15*time.Minute, stubMetrics{}, testLogger(t))

	if _, ok := c.Table(context.Background(), models.CategoryActive); ok {
		t.Fatal("expected miss when no table has ever been fetched")
	}
}
