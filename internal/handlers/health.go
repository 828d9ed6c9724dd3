package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck reports liveness and whether the SQL store answers a ping
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	status, database := http.StatusOK, "up"

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		status, database = http.StatusServiceUnavailable, "down"
	}

	return c.JSON(status, map[string]string{
		"status":   http.StatusText(status),
		"service":  "stackit-api",
		"database": database,
	})
}
