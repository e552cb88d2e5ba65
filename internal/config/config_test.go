package config

import (
	"strings"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
)

func validConfig() *Config {
	c := &Config{Environment: "test"}
	c.Watchlist = []models.WatchlistItem{{Symbol: "AAPL"}}
	c.Report.DefaultPeriod = "6mo"
	c.Report.TopN = 5
	c.Report.RefreshInterval = 15 * time.Minute
	return c
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing environment", func(c *Config) { c.Environment = "" }, "environment"},
		{"empty watchlist", func(c *Config) { c.Watchlist = nil }, "watchlist"},
		{"watchlist symbol", func(c *Config) { c.Watchlist[0].Symbol = "" }, "symbol"},
		{"negative units", func(c *Config) {
			c.Portfolio.Assets = []models.Asset{{Symbol: "AAPL", Units: -1}}
		}, "units"},
		{"zero top_n", func(c *Config) { c.Report.TopN = 0 }, "top_n"},
		{"unknown period", func(c *Config) { c.Report.DefaultPeriod = "7w" }, "default_period"},
		{"zero refresh interval", func(c *Config) { c.Report.RefreshInterval = 0 }, "refresh_interval"},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, "brokers"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
