package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	"FinBoard/pkg/cache"
)

func TestReportStoreRoundTrip(t *testing.T) {
	store := NewReportStore(cache.NewMemoryCache(), 0)
	ctx := context.Background()

	want := &models.Report{
		GeneratedAt: time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC),
		Period:      "6mo",
		Summary:     models.Summary{TotalValue: 2500},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.GeneratedAt.Equal(want.GeneratedAt) || got.Period != want.Period {
		t.Fatalf("loaded %+v, want %+v", got, want)
	}
	if got.Summary.TotalValue != 2500 {
		t.Fatalf("TotalValue = %v, want 2500", got.Summary.TotalValue)
	}
}

func TestReportStoreLoadMiss(t *testing.T) {
	store := NewReportStore(cache.NewMemoryCache(), 0)

	if _, err := store.Load(context.Background()); !errors.Is(err, drepo.ErrNoReport) {
		t.Fatalf("Load on empty store: got %v, want ErrNoReport", err)
	}
}

func TestReportStoreLatestWins(t *testing.T) {
	store := NewReportStore(cache.NewMemoryCache(), 0)
	ctx := context.Background()

	first := &models.Report{Period: "1mo", GeneratedAt: time.Now().UTC()}
	second := &models.Report{Period: "6mo", GeneratedAt: time.Now().UTC().Add(time.Minute)}

	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Period != "6mo" {
		t.Fatalf("Period = %q, want most recent save", got.Period)
	}
}
