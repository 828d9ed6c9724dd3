package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
)

type StatsHandler struct {
	statsRepository repositories.StatsRepository
}

func NewStatsHandler(statsRepo repositories.StatsRepository) *StatsHandler {
	return &StatsHandler{statsRepository: statsRepo}
}

func (h *StatsHandler) RegisterStatsRoutes(g *echo.Group) {
	g.GET("/stats", h.GetStats)
}

func (h *StatsHandler) GetStats(c echo.Context) error {
	stats, err := h.statsRepository.GetStats(c.Request().Context())
	if err != nil {
		return apperrors.FromDB(err, "stats")
	}
	return c.JSON(http.StatusOK, stats)
}
