package usecase

import (
	"context"
	"sort"
	"strings"

	"FinBoard/internal/domain/models"
	"FinBoard/internal/service/logos"
	"FinBoard/internal/service/numeric"
	"FinBoard/pkg/logger"
)

// QuoteProvider is the cache-backed quote lookup the aggregator enriches with.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	WeeklyPerformance(ctx context.Context, symbol string) ([]float64, bool)
}

// MoverProvider serves the scraped mover tables, possibly stale or absent.
type MoverProvider interface {
	Table(ctx context.Context, category models.MoverCategory) (*models.MoverTable, bool)
}

// Overview merges watchlist quotes and the four mover tables into the five
// ranked, deduplicated market lists. Every source is best-effort: a failed
// quote or a missing table degrades its slice of the result, never the whole
// overview.
type Overview struct {
	quotes QuoteProvider
	movers MoverProvider
	log    *logger.Logger
}

func NewOverview(quotes QuoteProvider, movers MoverProvider, log *logger.Logger) *Overview {
	return &Overview{quotes: quotes, movers: movers, log: log}
}

// bucket is an insertion-ordered symbol map. Upserting an existing symbol
// merges fields in place without moving the entry.
type bucket struct {
	order   []string
	entries map[string]models.MarketEntry
}

func newBucket() *bucket {
	return &bucket{entries: make(map[string]models.MarketEntry)}
}

func (b *bucket) upsert(e models.MarketEntry) {
	key := strings.ToUpper(e.Symbol)
	if key == "" {
		return
	}
	e.Symbol = key
	if existing, ok := b.entries[key]; ok {
		b.entries[key] = existing.Merge(e)
		return
	}
	b.order = append(b.order, key)
	b.entries[key] = e
}

func (b *bucket) has(symbol string) bool {
	_, ok := b.entries[strings.ToUpper(symbol)]
	return ok
}

func (b *bucket) list() []models.MarketEntry {
	out := make([]models.MarketEntry, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.entries[key])
	}
	return out
}

func (b *bucket) len() int { return len(b.order) }

// BuildOverview aggregates the watchlist and mover tables into the market
// overview. An empty watchlist and all-failed mover fetches yield a result
// with every list empty; that is a valid outcome, not an error.
func (o *Overview) BuildOverview(ctx context.Context, watchlist []models.WatchlistItem, topN int) *models.MarketOverview {
	if topN <= 0 {
		topN = 10
	}

	watch := newBucket()
	gainers := newBucket()
	losers := newBucket()
	active := newBucket()
	viewed := newBucket()

	// Watchlist quotes. Pacing between upstream calls is handled inside the
	// quote source's limiter.
	for _, item := range watchlist {
		entry, ok := o.watchlistEntry(ctx, item)
		if !ok {
			continue
		}
		watch.upsert(entry)
		if entry.ChangePercent != nil {
			switch {
			case *entry.ChangePercent > 0:
				gainers.upsert(entry)
			case *entry.ChangePercent < 0:
				losers.upsert(entry)
			}
		}
	}

	// Mover tables in priority order. Each category also feeds the combined
	// viewed bucket so most_viewed can rank across everything by volume.
	for _, category := range models.MoverCategories {
		table, ok := o.movers.Table(ctx, category)
		if !ok {
			o.log.Debug("mover table absent", logger.String("category", string(category)))
			continue
		}
		rows := table.Rows
		if len(rows) > topN {
			rows = rows[:topN]
		}
		for _, row := range rows {
			entry := o.moverEntry(ctx, row, category)
			switch category {
			case models.CategoryGainers:
				gainers.upsert(entry)
			case models.CategoryLosers:
				losers.upsert(entry)
			case models.CategoryActive:
				active.upsert(entry)
			}
			viewed.upsert(entry)
		}
	}

	gainersList := gainers.list()
	sort.SliceStable(gainersList, func(i, j int) bool {
		return changeOrZero(gainersList[i]) > changeOrZero(gainersList[j])
	})
	losersList := losers.list()
	sort.SliceStable(losersList, func(i, j int) bool {
		return changeOrZero(losersList[i]) < changeOrZero(losersList[j])
	})
	activeList := active.list()
	sort.SliceStable(activeList, func(i, j int) bool {
		return volumeOrZero(activeList[i]) > volumeOrZero(activeList[j])
	})
	viewedList := viewed.list()
	sort.SliceStable(viewedList, func(i, j int) bool {
		return volumeOrZero(viewedList[i]) > volumeOrZero(viewedList[j])
	})

	// Combined list: buckets in priority order, first occurrence keeps its
	// position, then watchlist backfill up to the cap.
	all := newBucket()
	for _, list := range [][]models.MarketEntry{gainersList, losersList, activeList, viewedList} {
		for _, e := range list {
			all.upsert(e)
		}
	}
	for _, key := range watch.order {
		if all.len() >= 2*topN {
			break
		}
		if !all.has(key) {
			all.upsert(watch.entries[key])
		}
	}

	mostViewed := viewedList
	if len(mostViewed) == 0 {
		mostViewed = watch.list()
	}

	return &models.MarketOverview{
		All:        truncate(all.list(), 2*topN),
		Gainers:    truncate(gainersList, topN),
		Losers:     truncate(losersList, topN),
		MostViewed: truncate(mostViewed, topN),
		MostActive: truncate(activeList, topN),
	}
}

// watchlistEntry fetches the quote for one configured symbol. A failed fetch
// drops the symbol from this overview rather than failing the build.
func (o *Overview) watchlistEntry(ctx context.Context, item models.WatchlistItem) (models.MarketEntry, bool) {
	q, err := o.quotes.Quote(ctx, item.Symbol)
	if err != nil {
		o.log.Warn("watchlist quote unavailable",
			logger.String("symbol", item.Symbol),
			logger.Error(err))
		return models.MarketEntry{}, false
	}
	entry := models.MarketEntry{
		Symbol:        strings.ToUpper(item.Symbol),
		Name:          q.Name,
		Exchange:      item.Exchange,
		CurrentPrice:  q.CurrentPrice,
		ChangePercent: q.ChangePercent,
		MarketCap:     q.MarketCap,
		Volume:        q.Volume,
		LogoURL:       q.LogoURL,
		Source:        "watchlist",
	}
	if entry.Name == "" {
		entry.Name = item.Name
	}
	if q.Exchange != "" {
		entry.Exchange = q.Exchange
	}
	if entry.LogoURL == "" {
		entry.LogoURL = logos.Resolve(item.Symbol, item.Website)
	}
	if weekly, ok := o.quotes.WeeklyPerformance(ctx, item.Symbol); ok {
		entry.WeeklyPerformance = weekly
	}
	return entry, true
}

// moverEntry normalizes one scraped row and enriches it with a cache-backed
// quote lookup. Quote fields fill the gaps the scrape left; scraped values
// win where both are present.
func (o *Overview) moverEntry(ctx context.Context, row models.MoverRow, category models.MoverCategory) models.MarketEntry {
	entry := models.MarketEntry{
		Symbol: strings.ToUpper(row.Symbol),
		Name:   row.Name,
		Source: string(category),
	}
	if v, ok := numeric.Parse(row.Price); ok {
		entry.CurrentPrice = models.Float(v)
	}
	if v, ok := numeric.ParsePercent(row.ChangePercent); ok {
		entry.ChangePercent = models.Float(v)
	}
	if v, ok := numeric.Parse(row.Volume); ok {
		entry.Volume = models.Float(v)
	}
	if v, ok := numeric.Parse(row.MarketCap); ok {
		entry.MarketCap = models.Float(v)
	}

	q, err := o.quotes.Quote(ctx, row.Symbol)
	if err != nil {
		return entry
	}
	base := models.MarketEntry{
		Symbol:        entry.Symbol,
		Name:          q.Name,
		Exchange:      q.Exchange,
		CurrentPrice:  q.CurrentPrice,
		ChangePercent: q.ChangePercent,
		MarketCap:     q.MarketCap,
		Volume:        q.Volume,
		LogoURL:       q.LogoURL,
	}
	merged := base.Merge(entry)
	if weekly, ok := o.quotes.WeeklyPerformance(ctx, row.Symbol); ok {
		merged.WeeklyPerformance = weekly
	}
	return merged
}

func changeOrZero(e models.MarketEntry) float64 {
	if e.ChangePercent == nil {
		return 0
	}
	return *e.ChangePercent
}

func volumeOrZero(e models.MarketEntry) float64 {
	if e.Volume == nil {
		return 0
	}
	return *e.Volume
}

func truncate(list []models.MarketEntry, n int) []models.MarketEntry {
	if len(list) > n {
		return list[:n]
	}
	return list
}
