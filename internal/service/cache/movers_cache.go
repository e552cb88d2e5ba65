package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	"FinBoard/pkg/logger"
)

// DefaultMoversTTL is how long a fetched mover table stays fresh.
const DefaultMoversTTL = 15 * time.Minute

// MoversCache caches the scraped mover tables with a fixed TTL. Expired
// entries are refreshed on access; when a refresh fails the previous table is
// kept and served flagged stale rather than dropped, so the overview degrades
// instead of losing whole sections. Live fetches are paced through a shared
// rate limiter to stay polite toward the upstream site.
type MoversCache struct {
	src     drepo.MoverSource
	limiter *rate.Limiter
	ttl     time.Duration
	metrics drepo.Metrics
	log     *logger.Logger
	now     func() time.Time

	mu     sync.Mutex
	tables map[models.MoverCategory]*models.MoverTable
}

// NewMoversCache creates a mover-table cache. limiter paces upstream fetches
// and may be nil to disable pacing; ttl <= 0 falls back to DefaultMoversTTL.
func NewMoversCache(src drepo.MoverSource, limiter *rate.Limiter, ttl time.Duration, metrics drepo.Metrics, log *logger.Logger) *MoversCache {
	if ttl <= 0 {
		ttl = DefaultMoversTTL
	}
	return &MoversCache{
		src:     src,
		limiter: limiter,
		ttl:     ttl,
		metrics: metrics,
		log:     log,
		now:     time.Now,
		tables:  make(map[models.MoverCategory]*models.MoverTable),
	}
}

// Table returns the cached table for category, refreshing it when older than
// the TTL. Returns (nil, false) only when no fetch has ever succeeded.
func (c *MoversCache) Table(ctx context.Context, category models.MoverCategory) (*models.MoverTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.tables[category]
	if ok && c.now().Sub(prev.FetchedAt) < c.ttl {
		c.metrics.RecordCache("movers", true)
		return prev, true
	}
	c.metrics.RecordCache("movers", false)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.keepStale(category, prev, ok, err)
		}
	}

	rows, err := c.src.Table(ctx, category)
	if err != nil {
		return c.keepStale(category, prev, ok, err)
	}

	table := &models.MoverTable{
		Category:  category,
		Rows:      rows,
		FetchedAt: c.now(),
	}
	c.tables[category] = table
	return table, true
}

// keepStale serves the previous table flagged stale, or reports a miss when
// the category has never been fetched successfully.
func (c *MoversCache) keepStale(category models.MoverCategory, prev *models.MoverTable, ok bool, err error) (*models.MoverTable, bool) {
	c.metrics.RecordError("movers_fetch")
	if !ok {
		c.log.Warn("mover table unavailable",
			logger.String("category", string(category)),
			logger.Error(err))
		return nil, false
	}
	c.log.Warn("mover refresh failed, serving stale table",
		logger.String("category", string(category)),
		logger.String("fetched_at", prev.FetchedAt.Format(time.RFC3339)),
		logger.Error(err))
	stale := *prev
	stale.Stale = true
	c.tables[category] = &stale
	return &stale, true
}
