package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityHandler serves a user's public activity feed
type ActivityHandler struct {
	activityRepository repositories.ActivityRepository
	userRepository     repositories.UserRepository
}

func NewActivityHandler(activityRepo repositories.ActivityRepository, userRepo repositories.UserRepository) *ActivityHandler {
	return &ActivityHandler{activityRepository: activityRepo, userRepository: userRepo}
}

func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.GET("/users/:id/activity", h.GetUserActivity)
}

// GetUserActivity lists the user's activities newest first
func (h *ActivityHandler) GetUserActivity(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByID(ctx, userID); err != nil {
		return apperrors.FromDB(err, "user")
	}

	limit := queryInt(c, "limit", defaultActivityLimit)
	if limit == 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}
	offset := queryInt(c, "offset", 0)

	activities, err := h.activityRepository.ListByUser(ctx, userID, int64(offset), int64(limit))
	if err != nil {
		return apperrors.NewInternalError("failed to load activity", err)
	}
	return c.JSON(http.StatusOK, activities)
}
