package usecase

import (
	"context"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	mid "FinBoard/internal/middleware"
)

// PriceCollector tails the live price feed and pushes updates through the
// pipeline into the quote cache.
type PriceCollector struct {
	stream  drepo.PriceStream
	pipe    *mid.PricePipeline
	metrics drepo.Metrics
}

func NewPriceCollector(stream drepo.PriceStream, pipe *mid.PricePipeline, metrics drepo.Metrics) *PriceCollector {
	return &PriceCollector{stream: stream, pipe: pipe, metrics: metrics}
}

// IsConnected reports whether the underlying feed is connected.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.pipe.Start(ctx)

	upCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, upCh, errCh)
	return nil
}

func (c *PriceCollector) consume(ctx context.Context, upCh <-chan *models.PriceUpdate, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case u := <-upCh:
			if u == nil {
				continue
			}
			_ = c.pipe.Process(ctx, u)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *PriceCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
