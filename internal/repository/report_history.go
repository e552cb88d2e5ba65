package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"FinBoard/internal/domain/models"
	"FinBoard/pkg/clickhouse"
)

// ClickHouseHistory appends every generated report to ClickHouse for later
// analysis. Implements repository.ReportHistory; writes are best-effort from
// the coordinator's point of view.
type ClickHouseHistory struct {
	client *clickhouse.Client
	table  string
}

// NewClickHouseHistory creates the history writer and ensures its schema.
func NewClickHouseHistory(ctx context.Context, client *clickhouse.Client, database string) (*ClickHouseHistory, error) {
	table := database + ".report_history"
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			generated_at DateTime,
			period String,
			total_value Float64,
			total_change_pct Float64,
			asset_count UInt32,
			payload String
		) ENGINE=MergeTree ORDER BY (period, generated_at)`, table),
	}
	if err := client.InitSchema(ctx, stmts); err != nil {
		return nil, fmt.Errorf("init report history schema: %w", err)
	}
	return &ClickHouseHistory{client: client, table: table}, nil
}

func (h *ClickHouseHistory) Append(ctx context.Context, r *models.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	q := fmt.Sprintf("INSERT INTO %s (generated_at, period, total_value, total_change_pct, asset_count, payload) VALUES (?, ?, ?, ?, ?, ?)", h.table)
	_, err = h.client.DB().ExecContext(ctx, q,
		r.GeneratedAt,
		r.Period,
		r.Summary.TotalValue,
		r.Summary.TotalChangePercent,
		uint32(len(r.Assets)),
		string(payload),
	)
	return err
}

func (h *ClickHouseHistory) Health(ctx context.Context) error {
	return h.client.Health(ctx)
}

func (h *ClickHouseHistory) Close() error {
	return h.client.Close()
}
