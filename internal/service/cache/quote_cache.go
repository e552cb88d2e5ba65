package cache

import (
	"context"
	"strings"
	"sync"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
)

const weeklySessions = 7

// QuoteCache memoizes per-symbol quotes and weekly price histories for the
// process lifetime. Keys are upper-cased symbols; entries never expire.
// Concurrent callers racing on an uncached symbol may both fetch; the last
// full write wins, which is harmless duplicate work.
type QuoteCache struct {
	src     drepo.QuoteSource
	metrics drepo.Metrics

	mu     sync.RWMutex
	quotes map[string]*models.Quote
	weekly map[string][]float64
}

// NewQuoteCache creates a process-lifetime quote memoizer.
func NewQuoteCache(src drepo.QuoteSource, metrics drepo.Metrics) *QuoteCache {
	return &QuoteCache{
		src:     src,
		metrics: metrics,
		quotes:  make(map[string]*models.Quote),
		weekly:  make(map[string][]float64),
	}
}

// Quote returns the cached quote for symbol, fetching it on first access.
func (c *QuoteCache) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	key := strings.ToUpper(symbol)

	c.mu.RLock()
	q, ok := c.quotes[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.RecordCache("quote", true)
		return q, nil
	}
	c.metrics.RecordCache("quote", false)

	q, err := c.src.Quote(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.quotes[key] = q
	c.mu.Unlock()
	return q, nil
}

// WeeklyPerformance returns the trailing closing prices used for sparklines,
// or absent when the source has fewer than two sessions for the symbol.
func (c *QuoteCache) WeeklyPerformance(ctx context.Context, symbol string) ([]float64, bool) {
	key := strings.ToUpper(symbol)

	c.mu.RLock()
	w, ok := c.weekly[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.RecordCache("weekly", true)
		return w, true
	}
	c.metrics.RecordCache("weekly", false)

	points, err := c.src.History(ctx, key, "1mo", "1d")
	if err != nil || len(points) < 2 {
		return nil, false
	}
	if len(points) > weeklySessions {
		points = points[len(points)-weeklySessions:]
	}
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}

	c.mu.Lock()
	c.weekly[key] = closes
	c.mu.Unlock()
	return closes, true
}

// SetLastPrice overwrites the cached current price for symbol. Used by the
// streaming feed; a miss is ignored (the next Quote call fetches fresh).
func (c *QuoteCache) SetLastPrice(symbol string, price float64) {
	key := strings.ToUpper(symbol)

	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quotes[key]
	if !ok {
		return
	}
	cp := *q
	cp.CurrentPrice = models.Float(price)
	c.quotes[key] = &cp
}

// Len reports how many quotes are cached. Used by health reporting.
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}
