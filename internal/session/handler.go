package session

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eleven-am/sightguide/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/stats", h.GetMetrics)
	g.GET("/stats/summary", h.GetSummary)
}

// GetMetrics godoc
// @Summary      Hourly usage statistics
// @Description  Returns per-hour analysis counters, newest first. Hours without traffic are omitted.
// @Tags         stats
// @Produce      json
// @Param        hours  query     int  false  "Number of hours to look back (1-168)"  default(24)
// @Success      200    {object}  MetricsListResponse
// @Failure      500    {object}  shared.APIError
// @Router       /stats [get]
func (h *Handler) GetMetrics(c echo.Context) error {
	hours := 24
	if hoursStr := c.QueryParam("hours"); hoursStr != "" {
		if hr, err := strconv.Atoi(hoursStr); err == nil && hr > 0 && hr <= MaxMetricsHours {
			hours = hr
		}
	}

	metrics, err := h.store.GetMetrics(c.Request().Context(), hours)
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err)
		return shared.InternalError("get_metrics_failed", "failed to get metrics")
	}

	return c.JSON(http.StatusOK, MetricsListResponse{
		Hours:   hours,
		Metrics: metrics,
	})
}

// GetSummary godoc
// @Summary      Seven day usage summary
// @Tags         stats
// @Produce      json
// @Success      200  {object}  SummaryResponse
// @Failure      500  {object}  shared.APIError
// @Router       /stats/summary [get]
func (h *Handler) GetSummary(c echo.Context) error {
	summary, err := h.store.GetSummary(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to get metrics summary", "error", err)
		return shared.InternalError("get_metrics_failed", "failed to get metrics")
	}
	return c.JSON(http.StatusOK, summary)
}
