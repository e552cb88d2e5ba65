package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/service/logos"
	"FinBoard/internal/service/ratelimit"
	pkghttp "FinBoard/pkg/http"
	"FinBoard/pkg/logger"
)

// Config holds the quote provider endpoints and pacing.
type Config struct {
	QuoteURL     string  `yaml:"quote_url" default:"https://query1.finance.yahoo.com/v7/finance/quote"`
	ChartURL     string  `yaml:"chart_url" default:"https://query1.finance.yahoo.com/v8/finance/chart"`
	UserAgent    string  `yaml:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"`
	TimeoutSec   int     `yaml:"timeout_sec" default:"15"`
	RatePerSec   float64 `yaml:"rate_per_sec" default:"4"`
	RateCapacity float64 `yaml:"rate_capacity" default:"8"`
}

// Client fetches quotes and price histories from the upstream quote API.
// Implements repository.QuoteSource.
type Client struct {
	cfg     *Config
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewClient(cfg *Config, limiter *ratelimit.Limiter, metrics drepo.Metrics, log *logger.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(time.Duration(cfg.TimeoutSec) * time.Second)),
		limiter: limiter,
		metrics: metrics,
		log:     log,
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			ShortName                  string   `json:"shortName"`
			LongName                   string   `json:"longName"`
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
			RegularMarketVolume        *float64 `json:"regularMarketVolume"`
			MarketCap                  *float64 `json:"marketCap"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote fetches the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx, "quotes", c.cfg.RateCapacity, c.cfg.RatePerSec); err != nil {
		return nil, err
	}

	start := time.Now()
	var payload quoteResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.cfg.QuoteURL,
		Headers:     map[string]string{"User-Agent": c.cfg.UserAgent},
		QueryParams: map[string][]string{"symbols": {strings.ToUpper(symbol)}},
	}, &payload)
	c.metrics.RecordLatency("quote_fetch", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordError("quote_fetch")
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}

	if e := payload.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("quote api error for %s: %s (%s)", symbol, e.Description, e.Code)
	}
	if len(payload.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", drepo.ErrSymbolNotFound, symbol)
	}

	r := payload.QuoteResponse.Result[0]
	name := r.LongName
	if name == "" {
		name = r.ShortName
	}
	sym := strings.ToUpper(r.Symbol)
	return &models.Quote{
		Symbol:        sym,
		Name:          name,
		CurrentPrice:  r.RegularMarketPrice,
		ChangePercent: r.RegularMarketChangePercent,
		Volume:        r.RegularMarketVolume,
		MarketCap:     r.MarketCap,
		LogoURL:       logos.Resolve(sym, ""),
	}, nil
}

// History fetches closing prices for symbol over rng at the given interval.
// Sessions with no close recorded are skipped.
func (c *Client) History(ctx context.Context, symbol, rng, interval string) ([]models.PricePoint, error) {
	if err := c.limiter.Wait(ctx, "quotes", c.cfg.RateCapacity, c.cfg.RatePerSec); err != nil {
		return nil, err
	}

	start := time.Now()
	var payload chartResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     fmt.Sprintf("%s/%s", c.cfg.ChartURL, strings.ToUpper(symbol)),
		Headers: map[string]string{"User-Agent": c.cfg.UserAgent},
		QueryParams: map[string][]string{
			"range":    {rng},
			"interval": {interval},
		},
	}, &payload)
	c.metrics.RecordLatency("history_fetch", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordError("history_fetch")
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}

	if e := payload.Chart.Error; e != nil {
		return nil, fmt.Errorf("chart api error for %s: %s (%s)", symbol, e.Description, e.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", drepo.ErrSymbolNotFound, symbol)
	}

	r := payload.Chart.Result[0]
	var closes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	points := make([]models.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, models.PricePoint{
			Time:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("empty price history for %s (range %s)", symbol, rng)
	}
	return points, nil
}
