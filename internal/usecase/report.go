package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	"FinBoard/pkg/logger"
	"FinBoard/pkg/util"
)

const tradingDaysPerYear = 252

// HistoryProvider fetches the closing-price series used for portfolio
// performance.
type HistoryProvider interface {
	History(ctx context.Context, symbol, rng, interval string) ([]models.PricePoint, error)
}

// ReportBuilder assembles the full dashboard snapshot: portfolio valuation,
// period performance with derived metrics, and the market overview.
type ReportBuilder struct {
	quotes    QuoteProvider
	history   HistoryProvider
	overview  *Overview
	assets    []models.Asset
	watchlist []models.WatchlistItem
	topN      int
	metrics   drepo.Metrics
	log       *logger.Logger
	now       func() time.Time
}

func NewReportBuilder(
	quotes QuoteProvider,
	history HistoryProvider,
	overview *Overview,
	assets []models.Asset,
	watchlist []models.WatchlistItem,
	topN int,
	metrics drepo.Metrics,
	log *logger.Logger,
) *ReportBuilder {
	return &ReportBuilder{
		quotes:    quotes,
		history:   history,
		overview:  overview,
		assets:    assets,
		watchlist: watchlist,
		topN:      topN,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Build generates a complete report for period. Individual symbol failures
// degrade their slice of the report; Build fails only when not a single
// portfolio position could be valued and the portfolio is non-empty.
func (b *ReportBuilder) Build(ctx context.Context, period string) (*models.Report, error) {
	start := b.now()

	positions, summary, err := b.valuePortfolio(ctx)
	if err != nil {
		return nil, err
	}

	performance := b.performanceSeries(ctx, period)
	gainers, losers := splitByChange(positions)

	report := &models.Report{
		GeneratedAt:    b.now().UTC(),
		Period:         period,
		Summary:        summary,
		Metrics:        deriveMetrics(performance),
		Assets:         positions,
		Gainers:        gainers,
		Losers:         losers,
		Performance:    performance,
		MarketOverview: *b.overview.BuildOverview(ctx, b.watchlist, b.topN),
	}

	b.metrics.RecordReport(period, time.Since(start).Seconds())
	b.log.Info("report built",
		logger.String("period", period),
		logger.Int("positions", len(positions)),
		logger.Duration("elapsed", time.Since(start)))
	return report, nil
}

// valuePortfolio prices every configured holding and computes the top-line
// summary. Symbols whose quote is unavailable are skipped.
func (b *ReportBuilder) valuePortfolio(ctx context.Context) ([]models.Position, models.Summary, error) {
	var (
		positions           []models.Position
		totalValue          float64
		totalChangeAbsolute float64
	)

	for _, asset := range b.assets {
		q, err := b.quotes.Quote(ctx, asset.Symbol)
		if err != nil || q.CurrentPrice == nil {
			b.log.Warn("skipping unpriceable position",
				logger.String("symbol", asset.Symbol),
				logger.Error(err))
			continue
		}

		change := 0.0
		if q.ChangePercent != nil {
			change = *q.ChangePercent
		}
		value := *q.CurrentPrice * asset.Units
		changeAbs := value * (change / 100)

		totalValue += value
		totalChangeAbsolute += changeAbs

		name := q.Name
		if name == "" {
			name = asset.Name
		}
		pos := models.Position{
			Symbol:         q.Symbol,
			Name:           name,
			Units:          asset.Units,
			CurrentPrice:   *q.CurrentPrice,
			PositionValue:  value,
			ChangePercent:  change,
			ChangeAbsolute: changeAbs,
			MarketCap:      q.MarketCap,
			Volume:         q.Volume,
			LogoURL:        q.LogoURL,
		}
		if weekly, ok := b.quotes.WeeklyPerformance(ctx, asset.Symbol); ok {
			pos.WeeklyPerformance = weekly
		}
		positions = append(positions, pos)
	}

	if len(positions) == 0 && len(b.assets) > 0 {
		return nil, models.Summary{}, fmt.Errorf("no portfolio position could be valued")
	}

	// Allocation percentages over the valued total.
	for i := range positions {
		if totalValue > 0 {
			positions[i].AllocationPercent = positions[i].PositionValue / totalValue * 100
		}
	}

	totalChangePercent := 0.0
	if base := totalValue - totalChangeAbsolute; base != 0 {
		totalChangePercent = totalChangeAbsolute / base * 100
	}

	return positions, models.Summary{
		TotalValue:          totalValue,
		TotalChangePercent:  totalChangePercent,
		TotalChangeAbsolute: totalChangeAbsolute,
		Timestamp:           b.now().UTC(),
	}, nil
}

// performanceSeries sums each holding's close series scaled by units, aligned
// by session date. Symbols with no history degrade to zero contribution.
func (b *ReportBuilder) performanceSeries(ctx context.Context, period string) []models.PricePoint {
	byDate := make(map[time.Time]float64)

	for _, asset := range b.assets {
		points, err := b.history.History(ctx, asset.Symbol, period, "1d")
		if err != nil || len(points) == 0 {
			b.log.Warn("no history for position",
				logger.String("symbol", asset.Symbol),
				logger.Error(err))
			continue
		}
		for _, p := range points {
			day := util.StartOfDay(p.Time)
			byDate[day] += p.Close * asset.Units
		}
	}

	if len(byDate) == 0 {
		return nil
	}

	series := make([]models.PricePoint, 0, len(byDate))
	for day, value := range byDate {
		series = append(series, models.PricePoint{Time: day, Close: value})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series
}

// splitByChange returns the positive movers descending and the negative
// movers with the worst first. Flat positions appear in neither.
func splitByChange(positions []models.Position) (gainers, losers []models.Position) {
	sorted := make([]models.Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangePercent > sorted[j].ChangePercent
	})
	for _, p := range sorted {
		switch {
		case p.ChangePercent > 0:
			gainers = append(gainers, p)
		case p.ChangePercent < 0:
			losers = append(losers, p)
		}
	}
	// losers: worst first
	for i, j := 0, len(losers)-1; i < j; i, j = i+1, j-1 {
		losers[i], losers[j] = losers[j], losers[i]
	}
	return gainers, losers
}

// deriveMetrics computes the period metrics from the portfolio value series:
// total return, annualized volatility and Sharpe ratio, and max drawdown.
func deriveMetrics(series []models.PricePoint) models.PerformanceMetrics {
	if len(series) < 2 {
		return models.PerformanceMetrics{}
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Close
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	if len(returns) == 0 {
		return models.PerformanceMetrics{}
	}

	var m models.PerformanceMetrics
	if values[0] > 0 {
		m.TotalReturnPercent = (values[len(values)-1] - values[0]) / values[0] * 100
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	std := math.Sqrt(variance / float64(len(returns)))

	m.VolatilityPercent = std * math.Sqrt(tradingDaysPerYear) * 100
	if std > 0 {
		m.SharpeRatio = mean / std * math.Sqrt(tradingDaysPerYear)
	}

	// Max drawdown over the cumulative return path.
	cumulative := 1.0
	peak := 1.0
	maxDrawdown := 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		if dd := (cumulative - peak) / peak; dd < maxDrawdown {
			maxDrawdown = dd
		}
	}
	m.MaxDrawdownPercent = maxDrawdown * 100

	return m
}
