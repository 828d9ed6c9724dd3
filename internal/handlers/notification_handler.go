package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
)

const (
	defaultNotificationLimit = 10
	maxNotificationLimit     = 50
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

// RegisterNotificationRoutes registers notification routes; all require an identity
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, requireAuth)
	g.GET("/notifications/count", h.GetUnreadCount, requireAuth)
	g.POST("/notifications/read-all", h.MarkAllAsRead, requireAuth)
	g.POST("/notifications/:id/read", h.MarkAsRead, requireAuth)
}

// GetNotifications returns the caller's newest notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return apperrors.NewUnauthenticatedError("")
	}

	limit := queryInt(c, "limit", defaultNotificationLimit)
	if limit == 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notifications, err := h.notificationRepository.GetByRecipientID(c.Request().Context(), currentUserID, limit)
	if err != nil {
		return apperrors.FromDB(err, "notification")
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return apperrors.NewUnauthenticatedError("")
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return apperrors.FromDB(err, "notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return apperrors.NewUnauthenticatedError("")
	}

	notifID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), notifID, currentUserID); err != nil {
		return apperrors.FromDB(err, "notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return apperrors.NewUnauthenticatedError("")
	}

	updated, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentUserID)
	if err != nil {
		return apperrors.FromDB(err, "notification")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}
