package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/usecase"
	xlogger "FinBoard/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubBuilder struct {
	calls  int32
	report *models.Report
}

func (b *stubBuilder) Build(_ context.Context, period string) (*models.Report, error) {
	atomic.AddInt32(&b.calls, 1)
	r := *b.report
	r.Period = period
	r.GeneratedAt = time.Now().UTC()
	return &r, nil
}

type stubStore struct {
	last *models.Report
}

func (s *stubStore) Save(_ context.Context, r *models.Report) error { s.last = r; return nil }
func (s *stubStore) Load(_ context.Context) (*models.Report, error) {
	if s.last == nil {
		return nil, drepo.ErrNoReport
	}
	return s.last, nil
}

type openHours struct{}

func (openHours) IsOpen(time.Time) bool { return true }

func overviewOf(n int) models.MarketOverview {
	entries := make([]models.MarketEntry, n)
	for i := range entries {
		entries[i] = models.MarketEntry{Symbol: string(rune('A' + i))}
	}
	return models.MarketOverview{
		All:        entries,
		Gainers:    entries,
		Losers:     entries,
		MostViewed: entries,
		MostActive: entries,
	}
}

func newTestHandler(t *testing.T, builder *stubBuilder) (*echo.Echo, *usecase.Coordinator) {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	coord := usecase.NewCoordinator(builder, &stubStore{}, nil, nil, openHours{}, nil, 15*time.Minute, log)

	e := echo.New()
	NewReportEchoHandler(log, coord, nil, nil).RegisterRoutes(e)
	return e, coord
}

func TestMarketTopParamCapsLists(t *testing.T) {
	builder := &stubBuilder{report: &models.Report{MarketOverview: overviewOf(3)}}
	e, _ := newTestHandler(t, builder)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market?top=1", nil)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.MarketOverview `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.All) != 1 || len(resp.Data.Gainers) != 1 || len(resp.Data.MostActive) != 1 {
		t.Fatalf("lists not capped at 1: all=%d gainers=%d active=%d",
			len(resp.Data.All), len(resp.Data.Gainers), len(resp.Data.MostActive))
	}
}

func TestMarketTopAbsentReturnsWholeLists(t *testing.T) {
	builder := &stubBuilder{report: &models.Report{MarketOverview: overviewOf(3)}}
	e, _ := newTestHandler(t, builder)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market", nil)
	e.ServeHTTP(rec, req)

	var resp struct {
		Data models.MarketOverview `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.All) != 3 {
		t.Fatalf("all = %d entries, want 3", len(resp.Data.All))
	}
}

// force=true on GET /report rebuilds even when the last report is fresh.
func TestReportForceParam(t *testing.T) {
	builder := &stubBuilder{report: &models.Report{MarketOverview: overviewOf(1)}}
	e, _ := newTestHandler(t, builder)

	for _, path := range []string{"/api/report", "/api/report", "/api/report?force=true"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d, body %s", path, rec.Code, rec.Body.String())
		}
	}

	// First call builds, second is served from the store, the forced call
	// builds again.
	if got := atomic.LoadInt32(&builder.calls); got != 2 {
		t.Fatalf("builder calls = %d, want 2", got)
	}
}
