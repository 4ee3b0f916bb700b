package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formdesk/dashboard-gateway/internal/core/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List refreshes the history from the upstream and returns it with the
// unread count. A failed refresh surfaces; stale data is not silently
// served.
func (h *NotificationHandler) List(c echo.Context) error {
	if err := h.notifications.Refresh(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":   h.notifications.Notifications(),
		"unread": h.notifications.UnreadCount(),
	})
}

// MarkRead sets the read timestamp on one notification.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stream pushes merged notifications to the browser as server-sent events
// until the client disconnects.
func (h *NotificationHandler) Stream(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	ctx := c.Request().Context()
	events := h.notifications.Subscribe(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case notification, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(notification)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(c.Response(), "event: notification\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}
