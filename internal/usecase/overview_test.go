package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"FinBoard/internal/domain/models"
	"FinBoard/pkg/logger"
)

type fakeQuotes struct {
	quotes map[string]*models.Quote
	weekly map[string][]float64
}

func (f *fakeQuotes) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, errors.New("quote unavailable")
}

func (f *fakeQuotes) WeeklyPerformance(_ context.Context, symbol string) ([]float64, bool) {
	w, ok := f.weekly[symbol]
	return w, ok
}

type fakeMovers struct {
	tables map[models.MoverCategory]*models.MoverTable
}

func (f *fakeMovers) Table(_ context.Context, category models.MoverCategory) (*models.MoverTable, bool) {
	t, ok := f.tables[category]
	return t, ok
}

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func quote(symbol string, change float64) *models.Quote {
	return &models.Quote{
		Symbol:        symbol,
		Name:          symbol + " Inc",
		CurrentPrice:  models.Float(100),
		ChangePercent: models.Float(change),
		Volume:        models.Float(1000),
	}
}

// Watchlist-only aggregation: all mover fetches failed.
func TestBuildOverviewWatchlistOnly(t *testing.T) {
	quotes := &fakeQuotes{quotes: map[string]*models.Quote{
		"AAPL": quote("AAPL", 2),
		"TSLA": quote("TSLA", -1),
	}}
	o := NewOverview(quotes, &fakeMovers{}, testLog(t))

	watchlist := []models.WatchlistItem{{Symbol: "AAPL"}, {Symbol: "TSLA"}}
	result := o.BuildOverview(context.Background(), watchlist, 10)

	if len(result.Gainers) != 1 || result.Gainers[0].Symbol != "AAPL" {
		t.Fatalf("gainers = %v, want [AAPL]", symbols(result.Gainers))
	}
	if len(result.Losers) != 1 || result.Losers[0].Symbol != "TSLA" {
		t.Fatalf("losers = %v, want [TSLA]", symbols(result.Losers))
	}
	if len(result.MostActive) != 0 {
		t.Fatalf("most_active = %v, want empty", symbols(result.MostActive))
	}
	// Watchlist backfill puts both symbols into the combined list.
	if !contains(result.All, "AAPL") || !contains(result.All, "TSLA") {
		t.Fatalf("all = %v, want AAPL and TSLA", symbols(result.All))
	}
	// most_viewed falls back to watchlist order when no table was scraped.
	if len(result.MostViewed) != 2 || result.MostViewed[0].Symbol != "AAPL" {
		t.Fatalf("most_viewed = %v, want watchlist order", symbols(result.MostViewed))
	}
}

// Caps: four disjoint 5-row tables with top_n=2 keep every sub-list at 2 and
// the combined list at 4.
func TestBuildOverviewCaps(t *testing.T) {
	tables := make(map[models.MoverCategory]*models.MoverTable)
	n := 0
	for _, cat := range models.MoverCategories {
		var rows []models.MoverRow
		for i := 0; i < 5; i++ {
			n++
			rows = append(rows, models.MoverRow{
				Symbol: fmt.Sprintf("SYM%02d", n),
				Price:  "10.0",
				Volume: fmt.Sprintf("%dK", n),
			})
		}
		tables[cat] = &models.MoverTable{Category: cat, Rows: rows}
	}
	o := NewOverview(&fakeQuotes{}, &fakeMovers{tables: tables}, testLog(t))

	result := o.BuildOverview(context.Background(), nil, 2)

	if len(result.All) > 4 {
		t.Fatalf("all has %d entries, cap is 4", len(result.All))
	}
	for name, list := range map[string][]models.MarketEntry{
		"gainers":     result.Gainers,
		"losers":      result.Losers,
		"most_active": result.MostActive,
		"most_viewed": result.MostViewed,
	} {
		if len(list) > 2 {
			t.Fatalf("%s has %d entries, cap is 2", name, len(list))
		}
	}
}

// No sub-list may contain the same symbol twice, even when every table
// reports it.
func TestBuildOverviewDedup(t *testing.T) {
	row := models.MoverRow{Symbol: "NVDA", Price: "100", ChangePercent: "+5.0%", Volume: "2M"}
	tables := make(map[models.MoverCategory]*models.MoverTable)
	for _, cat := range models.MoverCategories {
		tables[cat] = &models.MoverTable{Category: cat, Rows: []models.MoverRow{row, row}}
	}
	quotes := &fakeQuotes{quotes: map[string]*models.Quote{"NVDA": quote("NVDA", 5)}}
	o := NewOverview(quotes, &fakeMovers{tables: tables}, testLog(t))

	result := o.BuildOverview(context.Background(), []models.WatchlistItem{{Symbol: "NVDA"}}, 10)

	for name, list := range map[string][]models.MarketEntry{
		"all":         result.All,
		"gainers":     result.Gainers,
		"losers":      result.Losers,
		"most_viewed": result.MostViewed,
		"most_active": result.MostActive,
	} {
		seen := make(map[string]bool)
		for _, e := range list {
			if seen[e.Symbol] {
				t.Fatalf("%s contains %s twice", name, e.Symbol)
			}
			seen[e.Symbol] = true
		}
	}
}

// Merge precedence: incoming non-nil fields win, nil never overwrites.
func TestMergePrecedence(t *testing.T) {
	existing := models.MarketEntry{Symbol: "X", Volume: models.Float(5)}
	incoming := models.MarketEntry{Symbol: "X", CurrentPrice: models.Float(10)}

	merged := existing.Merge(incoming)
	if merged.CurrentPrice == nil || *merged.CurrentPrice != 10 {
		t.Fatalf("price = %v, want 10", merged.CurrentPrice)
	}
	if merged.Volume == nil || *merged.Volume != 5 {
		t.Fatalf("volume = %v, want 5", merged.Volume)
	}
}

// Ranking: gainers descending, losers ascending, active by volume descending
// with missing volume sorting as zero.
func TestBuildOverviewRanking(t *testing.T) {
	tables := map[models.MoverCategory]*models.MoverTable{
		models.CategoryGainers: {Rows: []models.MoverRow{
			{Symbol: "G1", ChangePercent: "+1.0%"},
			{Symbol: "G2", ChangePercent: "+9.0%"},
		}},
		models.CategoryLosers: {Rows: []models.MoverRow{
			{Symbol: "L1", ChangePercent: "-1.0%"},
			{Symbol: "L2", ChangePercent: "-9.0%"},
		}},
		models.CategoryActive: {Rows: []models.MoverRow{
			{Symbol: "A1", Volume: "1M"},
			{Symbol: "A2"},
			{Symbol: "A3", Volume: "3M"},
		}},
	}
	o := NewOverview(&fakeQuotes{}, &fakeMovers{tables: tables}, testLog(t))

	result := o.BuildOverview(context.Background(), nil, 10)

	if got := symbols(result.Gainers); got[0] != "G2" {
		t.Fatalf("gainers = %v, want G2 first", got)
	}
	if got := symbols(result.Losers); got[0] != "L2" {
		t.Fatalf("losers = %v, want L2 first", got)
	}
	if got := symbols(result.MostActive); got[0] != "A3" || got[2] != "A2" {
		t.Fatalf("most_active = %v, want [A3 A1 A2]", got)
	}
}

// Watchlist entries carry a logo: the quote source's URL when it set one,
// otherwise one derived from the configured website.
func TestBuildOverviewLogos(t *testing.T) {
	withLogo := quote("AAPL", 2)
	withLogo.LogoURL = "https://logo.clearbit.com/apple.com"
	quotes := &fakeQuotes{quotes: map[string]*models.Quote{
		"AAPL": withLogo,
		"ACME": quote("ACME", 1),
	}}
	o := NewOverview(quotes, &fakeMovers{}, testLog(t))

	watchlist := []models.WatchlistItem{
		{Symbol: "AAPL"},
		{Symbol: "ACME", Website: "https://www.acme.example"},
	}
	result := o.BuildOverview(context.Background(), watchlist, 10)

	logoBySymbol := map[string]string{}
	for _, e := range result.All {
		logoBySymbol[e.Symbol] = e.LogoURL
	}
	if logoBySymbol["AAPL"] != "https://logo.clearbit.com/apple.com" {
		t.Fatalf("AAPL logo = %q, want quote source value", logoBySymbol["AAPL"])
	}
	if logoBySymbol["ACME"] != "https://logo.clearbit.com/acme.example" {
		t.Fatalf("ACME logo = %q, want website-derived value", logoBySymbol["ACME"])
	}
}

// An empty watchlist plus all-failed fetches is a valid empty overview.
func TestBuildOverviewEmpty(t *testing.T) {
	o := NewOverview(&fakeQuotes{}, &fakeMovers{}, testLog(t))
	result := o.BuildOverview(context.Background(), nil, 10)

	if len(result.All)+len(result.Gainers)+len(result.Losers)+
		len(result.MostViewed)+len(result.MostActive) != 0 {
		t.Fatalf("expected empty overview, got %+v", result)
	}
}

func symbols(list []models.MarketEntry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Symbol
	}
	return out
}

func contains(list []models.MarketEntry, symbol string) bool {
	for _, e := range list {
		if e.Symbol == symbol {
			return true
		}
	}
	return false
}
