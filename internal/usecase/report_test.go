package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
)

type fakeHistory struct {
	series map[string][]models.PricePoint
}

func (f *fakeHistory) History(_ context.Context, symbol, _, _ string) ([]models.PricePoint, error) {
	return f.series[symbol], nil
}

func priceQuote(symbol string, price, change float64) *models.Quote {
	return &models.Quote{
		Symbol:        symbol,
		Name:          symbol + " Inc",
		CurrentPrice:  models.Float(price),
		ChangePercent: models.Float(change),
	}
}

func newTestBuilder(t *testing.T, quotes *fakeQuotes, history *fakeHistory, assets []models.Asset) *ReportBuilder {
	t.Helper()
	overview := NewOverview(quotes, &fakeMovers{}, testLog(t))
	return NewReportBuilder(quotes, history, overview, assets, nil, 10, stubMetrics{}, testLog(t))
}

type stubMetrics struct{}

func (stubMetrics) RecordReport(string, float64)    {}
func (stubMetrics) RecordError(string)              {}
func (stubMetrics) RecordCache(string, bool)        {}
func (stubMetrics) RecordLastPrice(string, float64) {}
func (stubMetrics) RecordLatency(string, float64)   {}

func TestBuildValuation(t *testing.T) {
	quotes := &fakeQuotes{quotes: map[string]*models.Quote{
		"AAPL": priceQuote("AAPL", 200, 2),
		"TSLA": priceQuote("TSLA", 100, -1),
	}}
	assets := []models.Asset{
		{Symbol: "AAPL", Units: 10}, // 2000
		{Symbol: "TSLA", Units: 5},  // 500
	}
	b := newTestBuilder(t, quotes, &fakeHistory{}, assets)

	report, err := b.Build(context.Background(), "6mo")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if report.Summary.TotalValue != 2500 {
		t.Fatalf("total value = %v, want 2500", report.Summary.TotalValue)
	}
	if len(report.Assets) != 2 {
		t.Fatalf("positions = %d, want 2", len(report.Assets))
	}
	if got := report.Assets[0].AllocationPercent; math.Abs(got-80) > 1e-9 {
		t.Fatalf("AAPL allocation = %v, want 80", got)
	}
	if len(report.Gainers) != 1 || report.Gainers[0].Symbol != "AAPL" {
		t.Fatalf("gainers = %+v, want AAPL", report.Gainers)
	}
	if len(report.Losers) != 1 || report.Losers[0].Symbol != "TSLA" {
		t.Fatalf("losers = %+v, want TSLA", report.Losers)
	}
}

// A symbol without quotes degrades to a skipped position, not a failed build.
func TestBuildSkipsUnpriceable(t *testing.T) {
	quotes := &fakeQuotes{quotes: map[string]*models.Quote{
		"AAPL": priceQuote("AAPL", 200, 2),
	}}
	assets := []models.Asset{{Symbol: "AAPL", Units: 1}, {Symbol: "GONE", Units: 1}}
	b := newTestBuilder(t, quotes, &fakeHistory{}, assets)

	report, err := b.Build(context.Background(), "6mo")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(report.Assets) != 1 || report.Assets[0].Symbol != "AAPL" {
		t.Fatalf("positions = %+v, want only AAPL", report.Assets)
	}
}

func TestBuildFailsWhenNothingPriceable(t *testing.T) {
	b := newTestBuilder(t, &fakeQuotes{}, &fakeHistory{}, []models.Asset{{Symbol: "GONE", Units: 1}})
	if _, err := b.Build(context.Background(), "6mo"); err == nil {
		t.Fatal("expected error when no position could be valued")
	}
}

func TestPerformanceSeriesAlignsByDate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
	history := &fakeHistory{series: map[string][]models.PricePoint{
		"AAPL": {{Time: day(1), Close: 10}, {Time: day(2), Close: 11}},
		"TSLA": {{Time: day(2), Close: 5}, {Time: day(3), Close: 6}},
	}}
	quotes := &fakeQuotes{quotes: map[string]*models.Quote{
		"AAPL": priceQuote("AAPL", 11, 0),
		"TSLA": priceQuote("TSLA", 6, 0),
	}}
	assets := []models.Asset{{Symbol: "AAPL", Units: 2}, {Symbol: "TSLA", Units: 1}}
	b := newTestBuilder(t, quotes, history, assets)

	report, err := b.Build(context.Background(), "6mo")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []models.PricePoint{
		{Time: day(1), Close: 20},
		{Time: day(2), Close: 27},
		{Time: day(3), Close: 6},
	}
	if len(report.Performance) != len(want) {
		t.Fatalf("series length = %d, want %d", len(report.Performance), len(want))
	}
	for i, p := range report.Performance {
		if !p.Time.Equal(want[i].Time) || p.Close != want[i].Close {
			t.Fatalf("series[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestDeriveMetrics(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
	series := []models.PricePoint{
		{Time: day(1), Close: 100},
		{Time: day(2), Close: 110},
		{Time: day(3), Close: 99},
	}

	m := deriveMetrics(series)
	if math.Abs(m.TotalReturnPercent-(-1)) > 1e-9 {
		t.Fatalf("total return = %v, want -1", m.TotalReturnPercent)
	}
	if m.VolatilityPercent <= 0 {
		t.Fatalf("volatility = %v, want > 0", m.VolatilityPercent)
	}
	// Path peaked at 1.10 after day 2, then dropped to 0.99: drawdown -10%.
	if math.Abs(m.MaxDrawdownPercent-(-10)) > 1e-9 {
		t.Fatalf("max drawdown = %v, want -10", m.MaxDrawdownPercent)
	}
}

func TestDeriveMetricsShortSeries(t *testing.T) {
	if m := deriveMetrics([]models.PricePoint{{Close: 100}}); m != (models.PerformanceMetrics{}) {
		t.Fatalf("expected zero metrics for short series, got %+v", m)
	}
}
