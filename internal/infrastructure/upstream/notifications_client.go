package upstream

import (
	"context"
	"net/url"
	"time"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/gateway"
)

// NotificationClient implements ports.NotificationAPI over /notifications.
type NotificationClient struct {
	gw *gateway.Client
}

// NewNotificationClient creates a NotificationClient over the shared gateway.
func NewNotificationClient(gw *gateway.Client) *NotificationClient {
	return &NotificationClient{gw: gw}
}

type notificationPayload struct {
	ID   flexID `json:"id"`
	Type string `json:"type"`
	Data struct {
		Message string `json:"message"`
	} `json:"data"`
	CreatedAt string  `json:"created_at"`
	ReadAt    *string `json:"read_at"`
}

type notificationList struct {
	Data []notificationPayload `json:"data"`
}

// List fetches the notification history, newest first as the upstream
// returns it.
func (c *NotificationClient) List(ctx context.Context) ([]domain.Notification, error) {
	var payload notificationList
	if err := c.gw.GetJSON(ctx, "/notifications", nil, &payload); err != nil {
		return nil, mapStatus(err)
	}

	items := make([]domain.Notification, 0, len(payload.Data))
	for _, p := range payload.Data {
		item := domain.Notification{
			ID:        string(p.ID),
			Severity:  p.Type,
			Message:   p.Data.Message,
			CreatedAt: parseUpstreamTime(p.CreatedAt),
		}
		if item.Severity == "" {
			item.Severity = domain.SeverityInfo
		}
		if p.ReadAt != nil {
			readAt := parseUpstreamTime(*p.ReadAt)
			item.ReadAt = &readAt
		}
		items = append(items, item)
	}
	return items, nil
}

// MarkRead reports a read notification to the upstream.
func (c *NotificationClient) MarkRead(ctx context.Context, id string) error {
	return mapStatus(c.gw.PostJSON(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil, nil))
}

// parseUpstreamTime parses an RFC3339 timestamp, zero on failure. Callers
// treat a zero CreatedAt as "unknown"; it never aborts a fetch.
func parseUpstreamTime(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}
