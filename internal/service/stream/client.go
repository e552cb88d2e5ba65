package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"FinBoard/internal/domain/models"
	"FinBoard/pkg/logger"
)

// Config holds the live price feed connection settings. When APIKey is empty
// the feed is disabled and the dashboard relies on polled quotes alone.
type Config struct {
	APIKey            string `yaml:"api_key"`
	WebsocketURL      string `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
	ReconnectDelaySec int    `yaml:"reconnect_delay_sec" default:"5"`
	PingIntervalSec   int    `yaml:"ping_interval_sec" default:"30"`
}

// Client implements a PriceStream backed by a trade-feed WebSocket. It keeps
// the watchlist's last prices warm between snapshot regenerations.
type Client struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

func NewClient(cfg *Config, symbols []string, log *logger.Logger) *Client {
	return &Client{
		apiKey:         cfg.APIKey,
		websocketURL:   cfg.WebsocketURL,
		symbols:        symbols,
		reconnectDelay: time.Duration(cfg.ReconnectDelaySec) * time.Second,
		pingInterval:   time.Duration(cfg.PingIntervalSec) * time.Second,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("price feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("price feed connected", logger.Int("symbols", len(c.symbols)))
	return nil
}

// Subscribe subscribes to the configured watchlist symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("price feed not connected")
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
	}
	return nil
}

type feedTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type feedMessage struct {
	Type string      `json:"type"`
	Data []feedTrade `json:"data"`
}

// Read streams price updates and errors until ctx is done or the connection
// drops. Updates are dropped on backpressure rather than blocking the reader.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceUpdate, <-chan error) {
	updates := make(chan *models.PriceUpdate, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(updates)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("price feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("price feed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-trade frames
					continue
				}
				if m.Type != "trade" {
					continue
				}
				for _, d := range m.Data {
					update := &models.PriceUpdate{
						Symbol:    d.S,
						Price:     d.P,
						Volume:    d.V,
						Timestamp: d.T / 1000,
					}
					select {
					case updates <- update:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return updates, errs
}

// Reconnect closes and reconnects, then resubscribes.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
