package api

import (
	"errors"
	"net/http"
	"time"

	models "FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/usecase"
	xhttp "FinBoard/pkg/http"
	xlogger "FinBoard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StreamStatus reports live feed connectivity for the health endpoint.
type StreamStatus interface {
	IsConnected() bool
}

// ReportEchoHandler exposes the dashboard snapshot over HTTP.
type ReportEchoHandler struct {
	logger  *xlogger.Logger
	coord   *usecase.Coordinator
	history domrepo.ReportHistory
	stream  StreamStatus
}

func NewReportEchoHandler(logger *xlogger.Logger, coord *usecase.Coordinator, history domrepo.ReportHistory, stream StreamStatus) *ReportEchoHandler {
	return &ReportEchoHandler{logger: logger, coord: coord, history: history, stream: stream}
}

func (h *ReportEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.POST("/process", h.Process)
	g.GET("/report", h.Report)
	g.GET("/summary", h.Summary)
	g.GET("/market", h.Market)
}

// Process triggers a regeneration and returns the resulting report. With
// force=true the staleness and market-hours checks are skipped.
func (h *ReportEchoHandler) Process(c echo.Context) error {
	req := &models.ProcessRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.coord.RequestReport(c.Request().Context(), req.Period, req.Force)
	if err != nil {
		if errors.Is(err, domrepo.ErrNoReport) {
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("no report available yet"))
		}
		h.logger.Error("process request failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}

// Report returns the latest report for the period, regenerating first when
// the coordinator considers it stale. force=true skips the staleness and
// market-hours checks.
func (h *ReportEchoHandler) Report(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	force := xhttp.ParseBoolDefault(c.QueryParam("force"), false)

	report, err := h.coord.RequestReport(c.Request().Context(), req.Period, force)
	if err != nil {
		if errors.Is(err, domrepo.ErrNoReport) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no report generated yet"))
		}
		h.logger.Error("report request failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}

// Summary returns just the valuation summary and derived metrics.
func (h *ReportEchoHandler) Summary(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.coord.RequestReport(c.Request().Context(), req.Period, false)
	if err != nil {
		if errors.Is(err, domrepo.ErrNoReport) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no report generated yet"))
		}
		h.logger.Error("summary request failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"generated_at": report.GeneratedAt,
		"period":       report.Period,
		"summary":      report.Summary,
		"metrics":      report.Metrics,
	})
}

// Market returns the market overview block of the latest report. top=N
// caps each list at N entries; 0 or absent returns them whole.
func (h *ReportEchoHandler) Market(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	top := xhttp.ParseIntDefault(c.QueryParam("top"), 0)

	report, err := h.coord.RequestReport(c.Request().Context(), req.Period, false)
	if err != nil {
		if errors.Is(err, domrepo.ErrNoReport) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no report generated yet"))
		}
		h.logger.Error("market request failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, capOverview(report.MarketOverview, top))
}

// capOverview returns a copy of o with every list cut to at most top
// entries. top <= 0 leaves o untouched.
func capOverview(o models.MarketOverview, top int) models.MarketOverview {
	if top <= 0 {
		return o
	}
	cut := func(list []models.MarketEntry) []models.MarketEntry {
		if len(list) > top {
			return list[:top]
		}
		return list
	}
	return models.MarketOverview{
		All:        cut(o.All),
		Gainers:    cut(o.Gainers),
		Losers:     cut(o.Losers),
		MostViewed: cut(o.MostViewed),
		MostActive: cut(o.MostActive),
	}
}

// Health reports the coordinator state and dependency health.
func (h *ReportEchoHandler) Health(c echo.Context) error {
	state := h.coord.Health()

	deps := map[string]string{}
	status := http.StatusOK
	if h.history != nil {
		if err := h.history.Health(c.Request().Context()); err != nil {
			deps["history"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			deps["history"] = "up"
		}
	}
	if h.stream != nil {
		if h.stream.IsConnected() {
			deps["stream"] = "connected"
		} else {
			deps["stream"] = "disconnected"
		}
	}

	health := "ok"
	if status != http.StatusOK {
		health = "degraded"
	}
	return xhttp.DataResponse(c, status, map[string]interface{}{
		"status":     health,
		"timestamp":  time.Now().UTC(),
		"generation": state,
		"deps":       deps,
	})
}
