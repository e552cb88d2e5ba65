package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
	"FinBoard/pkg/logger"
)

type fakeRequester struct {
	calls int32
	err   error
}

func (f *fakeRequester) RequestReport(_ context.Context, period string, _ bool) (*models.Report, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Report{Period: period, GeneratedAt: time.Now().UTC()}, nil
}

func refreshTestLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestRefreshHandlerRequestsReport(t *testing.T) {
	req := &fakeRequester{}
	h := NewRefreshHandler("finboard.refresh", req, refreshTestLog(t))

	if h.Topic() != "finboard.refresh" {
		t.Fatalf("topic = %q", h.Topic())
	}
	if err := h.Handle(context.Background(), []byte(`{"period":"1y","force":true}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := atomic.LoadInt32(&req.calls); got != 1 {
		t.Fatalf("requester calls = %d, want 1", got)
	}
}

// Malformed payloads are dropped without error so the consumer does not
// retry them.
func TestRefreshHandlerDropsMalformed(t *testing.T) {
	req := &fakeRequester{}
	h := NewRefreshHandler("finboard.refresh", req, refreshTestLog(t))

	if err := h.Handle(context.Background(), []byte(`{not json`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := atomic.LoadInt32(&req.calls); got != 0 {
		t.Fatalf("requester calls = %d, want 0", got)
	}
}

// Triggers older than the freshness window are discarded so a consumer
// catching up on a backlog does not replay them as builds.
func TestRefreshHandlerDropsStaleTrigger(t *testing.T) {
	req := &fakeRequester{}
	h := NewRefreshHandler("finboard.refresh", req, refreshTestLog(t))

	old := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	payload := []byte(`{"period":"6mo","requested_at":"` + old + `"}`)
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := atomic.LoadInt32(&req.calls); got != 0 {
		t.Fatalf("requester calls = %d, want 0 for stale trigger", got)
	}

	fresh := time.Now().UTC().Format(time.RFC3339)
	payload = []byte(`{"period":"6mo","requested_at":"` + fresh + `"}`)
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle fresh: %v", err)
	}
	if got := atomic.LoadInt32(&req.calls); got != 1 {
		t.Fatalf("requester calls = %d, want 1 for fresh trigger", got)
	}
}

func TestRefreshHandlerPropagatesFailure(t *testing.T) {
	req := &fakeRequester{err: errors.New("build failed")}
	h := NewRefreshHandler("finboard.refresh", req, refreshTestLog(t))

	if err := h.Handle(context.Background(), []byte(`{"period":"6mo"}`)); err == nil {
		t.Fatal("expected error to propagate for consumer retry")
	}
}
