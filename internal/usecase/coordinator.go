package usecase

import (
	"context"
	"sync"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	"FinBoard/pkg/logger"
)

// DefaultRefreshInterval is how long a generated report stays fresh.
const DefaultRefreshInterval = 15 * time.Minute

// Generator builds a complete report for a period.
type Generator interface {
	Build(ctx context.Context, period string) (*models.Report, error)
}

// BuildLock guards regeneration across processes. The cache layer satisfies
// it, so the guard is distributed when the cache is Redis-backed.
type BuildLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// regenLockKey is the cross-process regeneration lock slot.
const regenLockKey = "report:regen-lock"

// Coordinator serializes report regeneration: at most one build runs at a
// time, staleness decides whether a build is warranted, and market-hours
// gating pauses unforced regeneration outside the trading session. Callers
// that arrive while a build is in flight get the last persisted report
// instead of blocking.
type Coordinator struct {
	builder   Generator
	store     drepo.ReportStore
	history   drepo.ReportHistory
	publisher drepo.Publisher
	hours     drepo.MarketHours
	lock      BuildLock
	interval  time.Duration
	log       *logger.Logger
	now       func() time.Time

	mu    sync.Mutex
	state models.GenerationState
}

func NewCoordinator(
	builder Generator,
	store drepo.ReportStore,
	history drepo.ReportHistory,
	publisher drepo.Publisher,
	hours drepo.MarketHours,
	lock BuildLock,
	interval time.Duration,
	log *logger.Logger,
) *Coordinator {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Coordinator{
		builder:   builder,
		store:     store,
		history:   history,
		publisher: publisher,
		hours:     hours,
		lock:      lock,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// ShouldRegenerate reports whether a fresh build is warranted for period:
// never while one is in flight; always when nothing was ever generated or the
// period changed; otherwise only after the refresh interval has elapsed.
func (c *Coordinator) ShouldRegenerate(period string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldRegenerateLocked(period)
}

func (c *Coordinator) shouldRegenerateLocked(period string) bool {
	if c.state.InProgress {
		return false
	}
	if c.state.LastSuccess == nil {
		return true
	}
	if c.state.LastPeriod != period {
		return true
	}
	return c.now().Sub(*c.state.LastSuccess) > c.interval
}

// MaybeGenerate runs a build if one is warranted and returns the fresh
// report, or nil when generation was skipped (gated, fresh, or already in
// flight). force bypasses the market-hours gate and the staleness clock but
// never the single-flight guarantee.
func (c *Coordinator) MaybeGenerate(ctx context.Context, period string, force bool) (*models.Report, error) {
	if !force && !c.hours.IsOpen(c.now()) {
		c.log.Debug("market closed, skipping regeneration", logger.String("period", period))
		return nil, nil
	}
	if !force && !c.ShouldRegenerate(period) {
		return nil, nil
	}

	// Double-checked under the guard: a caller that raced past the checks
	// above must not start a second build.
	c.mu.Lock()
	warranted := c.shouldRegenerateLocked(period) || (force && !c.state.InProgress)
	if !warranted {
		c.mu.Unlock()
		return nil, nil
	}
	c.state.InProgress = true
	c.mu.Unlock()

	// The single-flight guard above is per process. The cache lock extends
	// it across replicas sharing a Redis-backed cache; a failure to reach
	// the lock backend is advisory and never blocks the build.
	if c.lock != nil {
		acquired, lerr := c.lock.TryLock(ctx, regenLockKey, c.interval)
		switch {
		case lerr != nil:
			c.log.Warn("regeneration lock unavailable, proceeding", logger.Error(lerr))
		case !acquired:
			c.mu.Lock()
			c.state.InProgress = false
			c.mu.Unlock()
			c.log.Debug("regeneration held elsewhere, skipping", logger.String("period", period))
			return nil, nil
		default:
			defer func() {
				if uerr := c.lock.Unlock(context.WithoutCancel(ctx), regenLockKey); uerr != nil {
					c.log.Warn("regeneration unlock failed", logger.Error(uerr))
				}
			}()
		}
	}

	report, err := c.runBuild(ctx, period)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// runBuild invokes the builder and updates state. InProgress is cleared on
// every path, including builder panics.
func (c *Coordinator) runBuild(ctx context.Context, period string) (report *models.Report, err error) {
	started := c.now()
	c.log.Info("regeneration started", logger.String("period", period))

	defer func() {
		c.mu.Lock()
		c.state.InProgress = false
		if err == nil && report != nil {
			ts := report.GeneratedAt
			c.state.LastSuccess = &ts
			c.state.LastPeriod = period
		}
		c.mu.Unlock()
	}()

	report, err = c.builder.Build(ctx, period)
	if err != nil {
		c.log.Error("regeneration failed",
			logger.String("period", period),
			logger.Error(err))
		return nil, err
	}

	if err = c.store.Save(ctx, report); err != nil {
		c.log.Error("report save failed", logger.Error(err))
		return nil, err
	}

	// Best-effort sinks: history and events never fail the build.
	if c.history != nil {
		if herr := c.history.Append(ctx, report); herr != nil {
			c.log.Warn("report history append failed", logger.Error(herr))
		}
	}
	if c.publisher != nil {
		if perr := c.publisher.PublishReport(ctx, report); perr != nil {
			c.log.Warn("report event publish failed", logger.Error(perr))
		}
	}

	c.log.Info("regeneration finished",
		logger.String("period", period),
		logger.Duration("elapsed", c.now().Sub(started)))
	return report, nil
}

// RequestReport returns a fresh report when regeneration is warranted (or
// forced), otherwise the last persisted one. It fails only when a forced or
// warranted build fails, or when no report has ever been generated.
func (c *Coordinator) RequestReport(ctx context.Context, period string, force bool) (*models.Report, error) {
	period = drepo.NormalizePeriod(period)

	report, err := c.MaybeGenerate(ctx, period, force)
	if err != nil {
		return nil, err
	}
	if report != nil {
		return report, nil
	}
	return c.store.Load(ctx)
}

// Health reports the coordinator state for liveness endpoints.
func (c *Coordinator) Health() models.GenerationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run drives the recurring regeneration schedule until ctx is done. Each
// tick runs on its own goroutine so a long build never delays or blocks the
// ticker; the single-flight guard makes overlapping ticks harmless. A failed
// tick is logged and the next tick proceeds normally.
func (c *Coordinator) Run(ctx context.Context, cadence time.Duration) {
	if cadence <= 0 {
		cadence = c.interval
	}
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	c.log.Info("regeneration scheduler started", logger.Duration("cadence", cadence))
	for {
		select {
		case <-ctx.Done():
			c.log.Info("regeneration scheduler stopped")
			return
		case <-ticker.C:
			go func() {
				defer func() {
					if r := recover(); r != nil {
						c.log.Error("scheduled regeneration panicked", logger.Any("panic", r))
					}
				}()
				period := c.lastPeriodOrDefault()
				if _, err := c.MaybeGenerate(ctx, period, false); err != nil {
					c.log.Error("scheduled regeneration failed",
						logger.String("period", period),
						logger.Error(err))
				}
			}()
		}
	}
}

func (c *Coordinator) lastPeriodOrDefault() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.LastPeriod != "" {
		return c.state.LastPeriod
	}
	return drepo.DefaultPeriod
}
