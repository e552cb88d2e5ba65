package models

import "time"

// MoverCategory identifies one of the scraped market-summary tables.
type MoverCategory string

const (
	CategoryGainers MoverCategory = "gainers"
	CategoryLosers  MoverCategory = "losers"
	CategoryActive  MoverCategory = "active"
	CategoryViewed  MoverCategory = "viewed"
)

// MoverCategories lists all scraped tables in aggregation priority order.
var MoverCategories = []MoverCategory{CategoryGainers, CategoryLosers, CategoryActive, CategoryViewed}

// Quote is a point-in-time snapshot for one symbol as returned by the quote
// source. Numeric fields are nil when the source did not report them.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	CurrentPrice  *float64 `json:"current_price"`
	ChangePercent *float64 `json:"change_percent"`
	MarketCap     *float64 `json:"market_cap"`
	Volume        *float64 `json:"volume"`
	Exchange      string   `json:"exchange"`
	LogoURL       string   `json:"logo_url,omitempty"`
	Currency      string   `json:"currency,omitempty"`
}

// MoverRow is one raw scraped record prior to normalization. Numeric fields
// arrive as mixed strings/numbers ("1.23B", "--", 42.5) and must go through
// the numeric normalizer before use.
type MoverRow struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Price         any    `json:"price"`
	ChangePercent any    `json:"change_percent"`
	Volume        any    `json:"volume"`
	AvgVolume     any    `json:"avg_volume"`
	MarketCap     any    `json:"market_cap"`
}

// MoverTable holds the rows of one scraped category. Replaced wholesale on
// refetch; Stale marks a table kept past its TTL after a failed refetch.
type MoverTable struct {
	Category  MoverCategory `json:"category"`
	Rows      []MoverRow    `json:"rows"`
	FetchedAt time.Time     `json:"fetched_at"`
	Stale     bool          `json:"stale"`
}

// WatchlistItem is a configured market symbol to track. Website, when set,
// is the company's official site and seeds the logo fallback.
type WatchlistItem struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Name     string `json:"name" yaml:"name"`
	Exchange string `json:"exchange" yaml:"exchange"`
	Website  string `json:"website,omitempty" yaml:"website"`
}

// MarketEntry is a merged market-overview row keyed by symbol.
type MarketEntry struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Exchange          string    `json:"exchange"`
	CurrentPrice      *float64  `json:"current_price"`
	ChangePercent     *float64  `json:"change_percent"`
	MarketCap         *float64  `json:"market_cap"`
	Volume            *float64  `json:"volume"`
	LogoURL           string    `json:"logo_url,omitempty"`
	WeeklyPerformance []float64 `json:"weekly_performance,omitempty"`
	Source            string    `json:"source,omitempty"`
}

// Merge combines e with an incoming entry for the same symbol. Incoming
// non-nil/non-empty fields win; nil never overwrites a present value.
func (e MarketEntry) Merge(in MarketEntry) MarketEntry {
	out := e
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.Exchange != "" {
		out.Exchange = in.Exchange
	}
	if in.CurrentPrice != nil {
		out.CurrentPrice = in.CurrentPrice
	}
	if in.ChangePercent != nil {
		out.ChangePercent = in.ChangePercent
	}
	if in.MarketCap != nil {
		out.MarketCap = in.MarketCap
	}
	if in.Volume != nil {
		out.Volume = in.Volume
	}
	if in.LogoURL != "" {
		out.LogoURL = in.LogoURL
	}
	if len(in.WeeklyPerformance) > 0 {
		out.WeeklyPerformance = in.WeeklyPerformance
	}
	if in.Source != "" {
		out.Source = in.Source
	}
	return out
}

// MarketOverview is the aggregated market artifact: five ranked, capped,
// symbol-deduplicated lists.
type MarketOverview struct {
	All        []MarketEntry `json:"all"`
	Gainers    []MarketEntry `json:"gainers"`
	Losers     []MarketEntry `json:"losers"`
	MostViewed []MarketEntry `json:"most_viewed"`
	MostActive []MarketEntry `json:"most_active"`
}

// PricePoint is one closing price in an ordered history series.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceUpdate is a streamed last-price tick for a symbol.
type PriceUpdate struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp int64 // unix seconds
}

// Float returns a pointer to v. Convenience for optional numeric fields.
func Float(v float64) *float64 { return &v }
