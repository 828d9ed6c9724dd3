package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/middleware"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
	"go.uber.org/zap"
)

// getUserIDFromContext returns the authenticated user id, or 0 for guests
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(middleware.UserContextKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid %s", name)).
			WithDetails(map[string]string{name: "must be a positive integer"})
	}
	return uint(id), nil
}

// queryInt reads a non-negative integer query parameter, falling back to def when absent or malformed
func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// normalizer is implemented by requests that canonicalize their fields before validation
type normalizer interface {
	Normalize()
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewValidationError("invalid request payload").
			WithCode(apperrors.CodeInvalidPayload).
			WithCause(err)
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	return c.Validate(req)
}

// recordActivity appends to the activity feed. Failures are logged and never fail the request.
func recordActivity(ctx context.Context, repo repositories.ActivityRepository, logger *zap.Logger, activity *models.Activity) {
	if err := repo.Record(ctx, activity); err != nil {
		logger.Warn("recording activity failed",
			zap.Uint("user_id", activity.UserID),
			zap.String("kind", activity.Kind),
			zap.Error(err),
		)
	}
}
