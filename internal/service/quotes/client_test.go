package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	drepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/service/ratelimit"
	"FinBoard/pkg/logger"
)

type noopMetrics struct{}

func (noopMetrics) RecordReport(string, float64)    {}
func (noopMetrics) RecordError(string)              {}
func (noopMetrics) RecordCache(string, bool)        {}
func (noopMetrics) RecordLastPrice(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)   {}

var _ drepo.Metrics = noopMetrics{}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	cfg := &Config{
		QuoteURL:     srv.URL,
		ChartURL:     srv.URL,
		TimeoutSec:   5,
		RatePerSec:   1000,
		RateCapacity: 1000,
	}
	return NewClient(cfg, ratelimit.New(), noopMetrics{}, log)
}

func TestQuoteSetsLogoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[{
			"symbol":"aapl","longName":"Apple Inc.",
			"regularMarketPrice":190.5,"regularMarketChangePercent":1.2}]}}`))
	}))
	defer srv.Close()

	q, err := newTestClient(t, srv).Quote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Symbol != "AAPL" {
		t.Fatalf("symbol = %q, want AAPL", q.Symbol)
	}
	if q.LogoURL != "https://logo.clearbit.com/apple.com" {
		t.Fatalf("logo = %q, want clearbit apple.com", q.LogoURL)
	}
}

func TestHistoryEmptySeriesErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no indicators", `{"chart":{"result":[{"timestamp":[1700000000],"indicators":{"quote":[]}}]}}`},
		{"all closes null", `{"chart":{"result":[{"timestamp":[1700000000,1700086400],"indicators":{"quote":[{"close":[null,null]}]}}]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			points, err := newTestClient(t, srv).History(context.Background(), "AAPL", "6mo", "1d")
			if err == nil {
				t.Fatalf("expected error for empty series, got %d points", len(points))
			}
		})
	}
}

func TestHistorySkipsNullCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{
			"timestamp":[1700000000,1700086400,1700172800],
			"indicators":{"quote":[{"close":[100.0,null,102.0]}]}}]}}`))
	}))
	defer srv.Close()

	points, err := newTestClient(t, srv).History(context.Background(), "AAPL", "6mo", "1d")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	if points[0].Close != 100 || points[1].Close != 102 {
		t.Fatalf("closes = %v, %v, want 100, 102", points[0].Close, points[1].Close)
	}
}
