package ports

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

// ResourceAPI proxies CRUD collections owned by the upstream (organizations,
// businesses, business units, users, roles, forms). The upstream schema is
// collaborator-owned, so payloads pass through as raw JSON.
type ResourceAPI interface {
	List(ctx context.Context, collection string, query url.Values) (json.RawMessage, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Create(ctx context.Context, collection string, body json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, collection, id string, body json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, collection, id string) error
}

// FormAPI fetches typed form definitions for rendering.
type FormAPI interface {
	Form(ctx context.Context, id string) (*domain.Form, error)
}

// DashboardAPI exposes the aggregated completion figures shown on the
// landing view.
type DashboardAPI interface {
	Completion(ctx context.Context) (json.RawMessage, error)
}
