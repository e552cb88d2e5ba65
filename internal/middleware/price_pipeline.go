package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
)

// Sink is the minimal downstream the pipeline needs.
type Sink interface {
	Apply(ctx context.Context, u *models.PriceUpdate) error
}

// PricePipeline sits between the WebSocket feed and the quote cache. It
// validates ticks, throttles per-symbol update rate, and buffers when the
// downstream is temporarily unavailable.
type PricePipeline struct {
	sink     Sink
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.PriceUpdate
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-symbol last accepted time
}

type PipelineOption func(*PricePipeline)

// WithMaxRPS sets the max accepted ticks per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *PricePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size for failed downstream applies.
func WithBufferSize(n int) PipelineOption {
	return func(p *PricePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func NewPricePipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *PricePipeline {
	p := &PricePipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   10,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.PriceUpdate, p.bufSize)
	return p
}

// Start launches background flushing of buffered updates.
func (p *PricePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case u := <-p.bufCh:
				if u == nil {
					continue
				}
				if err := p.sink.Apply(ctx, u); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- u:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *PricePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards an update, buffering on errors.
func (p *PricePipeline) Process(ctx context.Context, u *models.PriceUpdate) error {
	start := time.Now()
	if err := validateUpdate(u); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(u.Symbol, start) {
		// throttled; drop silently
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.sink.Apply(ctx, u); err != nil {
		p.metrics.RecordError("pipeline_apply")
		select {
		case p.bufCh <- u:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateUpdate(u *models.PriceUpdate) error {
	if u == nil {
		return fmt.Errorf("update nil")
	}
	if u.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if u.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if u.Price <= 0 || u.Volume < 0 {
		return fmt.Errorf("invalid price/volume")
	}
	return nil
}

func (p *PricePipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[symbol] = now
		return true
	}
	return false
}
