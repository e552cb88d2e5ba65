package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinBoard/internal/domain/models"
	"FinBoard/pkg/logger"
	"FinBoard/pkg/util"
)

// ReportRequester triggers report generation on demand.
type ReportRequester interface {
	RequestReport(ctx context.Context, period string, force bool) (*models.Report, error)
}

// maxTriggerAge bounds how old a refresh trigger may be before it is
// discarded. Consumers catching up after downtime must not replay a backlog
// of stale triggers as fresh builds.
const maxTriggerAge = 15 * time.Minute

// refreshRequest is the wire format of an external refresh trigger.
// RequestedAt is optional: RFC3339 or unix seconds.
type refreshRequest struct {
	Period      string `json:"period"`
	Force       bool   `json:"force"`
	RequestedAt string `json:"requested_at,omitempty"`
}

// RefreshHandler consumes refresh-request messages and asks the coordinator
// for a report. Implements kafka.MessageHandler.
type RefreshHandler struct {
	topic     string
	requester ReportRequester
	log       *logger.Logger
}

func NewRefreshHandler(topic string, requester ReportRequester, log *logger.Logger) *RefreshHandler {
	return &RefreshHandler{topic: topic, requester: requester, log: log}
}

func (h *RefreshHandler) Topic() string {
	return h.topic
}

func (h *RefreshHandler) Handle(ctx context.Context, data []byte) error {
	var req refreshRequest
	if err := json.Unmarshal(data, &req); err != nil {
		// Malformed triggers are dropped, not retried.
		h.log.Warn("dropping malformed refresh request", logger.Error(err))
		return nil
	}
	if at, ok := util.ParseTime(req.RequestedAt); ok && time.Since(at) > maxTriggerAge {
		h.log.Warn("dropping stale refresh request",
			logger.String("period", req.Period),
			logger.Any("requested_at", at))
		return nil
	}

	report, err := h.requester.RequestReport(ctx, req.Period, req.Force)
	if err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}

	h.log.Info("refresh request served",
		logger.String("period", report.Period),
		logger.Bool("force", req.Force))
	return nil
}
