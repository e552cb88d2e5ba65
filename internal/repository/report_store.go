package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	"FinBoard/pkg/cache"
)

const reportKey = "report:latest"

// ReportStore keeps the most recent report in the cache layer. Reports are
// stored as JSON strings so the same code works against the in-memory and
// Redis backends.
type ReportStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewReportStore creates a cache-backed report store. A zero ttl keeps the
// latest report until it is overwritten.
func NewReportStore(c cache.Service, ttl time.Duration) *ReportStore {
	return &ReportStore{cache: c, ttl: ttl}
}

func (s *ReportStore) Save(ctx context.Context, r *models.Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := s.cache.Set(ctx, reportKey, string(b), s.ttl); err != nil {
		return fmt.Errorf("persist report: %w", err)
	}
	return nil
}

func (s *ReportStore) Load(ctx context.Context) (*models.Report, error) {
	var raw string
	if err := s.cache.Get(ctx, reportKey, &raw); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, drepo.ErrNoReport
		}
		return nil, fmt.Errorf("load report: %w", err)
	}

	var r models.Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
