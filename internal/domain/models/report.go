package models

import "time"

// Asset is a configured portfolio holding.
type Asset struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Units  float64 `json:"units" yaml:"units"`
	Name   string  `json:"name" yaml:"name"`
}

// Position is a valued portfolio holding inside a generated report.
type Position struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Units             float64   `json:"units"`
	CurrentPrice      float64   `json:"current_price"`
	PositionValue     float64   `json:"position_value"`
	ChangePercent     float64   `json:"change_percent"`
	ChangeAbsolute    float64   `json:"change_absolute"`
	AllocationPercent float64   `json:"allocation_percent"`
	MarketCap         *float64  `json:"market_cap"`
	Volume            *float64  `json:"volume"`
	LogoURL           string    `json:"logo_url,omitempty"`
	WeeklyPerformance []float64 `json:"weekly_performance,omitempty"`
}

// Summary holds the top-line portfolio valuation.
type Summary struct {
	TotalValue          float64   `json:"total_value"`
	TotalChangePercent  float64   `json:"total_change_percent"`
	TotalChangeAbsolute float64   `json:"total_change_absolute"`
	Timestamp           time.Time `json:"timestamp"`
}

// PerformanceMetrics are derived from the period's portfolio value series.
type PerformanceMetrics struct {
	TotalReturnPercent float64 `json:"total_return_percent"`
	VolatilityPercent  float64 `json:"volatility_percent"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`
}

// Report is the persisted dashboard snapshot.
type Report struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	Period         string             `json:"period"`
	Summary        Summary            `json:"summary"`
	Metrics        PerformanceMetrics `json:"metrics"`
	Assets         []Position         `json:"assets"`
	Gainers        []Position         `json:"gainers"`
	Losers         []Position         `json:"losers"`
	Performance    []PricePoint       `json:"performance,omitempty"`
	MarketOverview MarketOverview     `json:"market_overview"`
}

// GenerationState tracks the coordinator's last successful build. There is
// exactly one instance per process.
type GenerationState struct {
	LastSuccess *time.Time `json:"last_generation"`
	LastPeriod  string     `json:"period"`
	InProgress  bool       `json:"in_progress"`
}
