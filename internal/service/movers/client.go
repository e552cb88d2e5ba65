package movers

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"FinBoard/internal/domain/models"
	pkghttp "FinBoard/pkg/http"
	"FinBoard/pkg/logger"
)

// Config holds the screener endpoint and per-category screen identifiers.
type Config struct {
	BaseURL    string `yaml:"base_url" default:"https://query1.finance.yahoo.com/v1/finance/screener/predefined/saved"`
	UserAgent  string `yaml:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"`
	TimeoutSec int    `yaml:"timeout_sec" default:"15"`
	Count      int    `yaml:"count" default:"25"`

	// Screen identifiers per category. Leave a category empty to disable it;
	// the overview falls back gracefully when a table is missing.
	GainersScreen string `yaml:"gainers_screen" default:"day_gainers"`
	LosersScreen  string `yaml:"losers_screen" default:"day_losers"`
	ActiveScreen  string `yaml:"active_screen" default:"most_actives"`
	ViewedScreen  string `yaml:"viewed_screen" default:"most_watched"`
}

func (c *Config) screenFor(category models.MoverCategory) string {
	switch category {
	case models.CategoryGainers:
		return c.GainersScreen
	case models.CategoryLosers:
		return c.LosersScreen
	case models.CategoryActive:
		return c.ActiveScreen
	case models.CategoryViewed:
		return c.ViewedScreen
	}
	return ""
}

// Client fetches the predefined screener tables behind a circuit breaker so
// a flapping upstream fails fast instead of stalling every refresh.
// Implements repository.MoverSource.
type Client struct {
	cfg     *Config
	http    *pkghttp.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

func NewClient(cfg *Config, log *logger.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "movers",
		MaxRequests: 1,
		Interval:    2 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return &Client{
		cfg:     cfg,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(time.Duration(cfg.TimeoutSec) * time.Second)),
		breaker: breaker,
		log:     log,
	}
}

type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []map[string]any `json:"quotes"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

// Table fetches the raw rows for one mover category.
func (c *Client) Table(ctx context.Context, category models.MoverCategory) ([]models.MoverRow, error) {
	screen := c.cfg.screenFor(category)
	if screen == "" {
		return nil, fmt.Errorf("no screen configured for category %q", category)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, screen)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch movers %s: %w", category, err)
	}
	return out.([]models.MoverRow), nil
}

func (c *Client) fetch(ctx context.Context, screen string) ([]models.MoverRow, error) {
	var payload screenerResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     c.cfg.BaseURL,
		Headers: map[string]string{"User-Agent": c.cfg.UserAgent},
		QueryParams: map[string][]string{
			"scrIds": {screen},
			"count":  {fmt.Sprintf("%d", c.cfg.Count)},
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if e := payload.Finance.Error; e != nil {
		return nil, fmt.Errorf("screener error: %s (%s)", e.Description, e.Code)
	}
	if len(payload.Finance.Result) == 0 {
		return nil, fmt.Errorf("screener %q returned no result", screen)
	}

	quotes := payload.Finance.Result[0].Quotes
	rows := make([]models.MoverRow, 0, len(quotes))
	for _, q := range quotes {
		symbol, _ := q["symbol"].(string)
		if symbol == "" {
			continue
		}
		name, _ := q["shortName"].(string)
		if name == "" {
			name, _ = q["longName"].(string)
		}
		rows = append(rows, models.MoverRow{
			Symbol:        symbol,
			Name:          name,
			Price:         displayValue(q["regularMarketPrice"]),
			ChangePercent: displayValue(q["regularMarketChangePercent"]),
			Volume:        displayValue(q["regularMarketVolume"]),
			AvgVolume:     displayValue(q["averageDailyVolume3Month"]),
			MarketCap:     displayValue(q["marketCap"]),
		})
	}
	return rows, nil
}

// displayValue unwraps the screener's {raw, fmt} objects, preferring the
// formatted string ("1.2B", "+0.75%") so all rows flow through the numeric
// normalizer the same way plain scraped text does.
func displayValue(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if f, ok := obj["fmt"].(string); ok && f != "" {
		return f
	}
	return obj["raw"]
}
