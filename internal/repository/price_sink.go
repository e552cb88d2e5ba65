package repository

import (
	"context"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	svccache "FinBoard/internal/service/cache"
)

// QuoteCacheSink applies streamed price updates to the quote cache so the
// next report build sees fresh last prices. Implements middleware.Sink.
type QuoteCacheSink struct {
	quotes  *svccache.QuoteCache
	metrics drepo.Metrics
}

func NewQuoteCacheSink(quotes *svccache.QuoteCache, metrics drepo.Metrics) *QuoteCacheSink {
	return &QuoteCacheSink{quotes: quotes, metrics: metrics}
}

func (s *QuoteCacheSink) Apply(ctx context.Context, u *models.PriceUpdate) error {
	s.quotes.SetLastPrice(u.Symbol, u.Price)
	s.metrics.RecordLastPrice(u.Symbol, u.Price)
	return nil
}
