package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/fields"
	"github.com/formdesk/dashboard-gateway/internal/gateway"
)

// collections maps the resource names this gateway proxies to their upstream
// paths. Anything else is rejected before a request is built.
var collections = map[string]string{
	"organizations":  "/organizations",
	"businesses":     "/businesses",
	"business-units": "/business-units",
	"users":          "/users",
	"roles":          "/roles",
	"forms":          "/forms",
}

// ResourceClient implements ports.ResourceAPI: pass-through CRUD over the
// upstream collections, schema untouched.
type ResourceClient struct {
	gw *gateway.Client
}

// NewResourceClient creates a ResourceClient over the shared gateway.
func NewResourceClient(gw *gateway.Client) *ResourceClient {
	return &ResourceClient{gw: gw}
}

func collectionPath(collection string) (string, error) {
	path, ok := collections[collection]
	if !ok {
		return "", fmt.Errorf("%w: unknown collection %q", domain.ErrInvalidInput, collection)
	}
	return path, nil
}

// List fetches a collection, forwarding pagination and filter query values.
func (c *ResourceClient) List(ctx context.Context, collection string, query url.Values) (json.RawMessage, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.gw.GetJSON(ctx, path, query, &raw); err != nil {
		return nil, mapStatus(err)
	}
	return raw, nil
}

// Get fetches a single resource.
func (c *ResourceClient) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.gw.GetJSON(ctx, path+"/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, mapStatus(err)
	}
	return raw, nil
}

// Create posts a new resource.
func (c *ResourceClient) Create(ctx context.Context, collection string, body json.RawMessage) (json.RawMessage, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.gw.PostJSON(ctx, path, body, &raw); err != nil {
		return nil, mapStatus(err)
	}
	return raw, nil
}

// Update replaces a resource.
func (c *ResourceClient) Update(ctx context.Context, collection, id string, body json.RawMessage) (json.RawMessage, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.gw.PutJSON(ctx, path+"/"+url.PathEscape(id), body, &raw); err != nil {
		return nil, mapStatus(err)
	}
	return raw, nil
}

// Delete removes a resource.
func (c *ResourceClient) Delete(ctx context.Context, collection, id string) error {
	path, err := collectionPath(collection)
	if err != nil {
		return err
	}
	return mapStatus(c.gw.DeleteJSON(ctx, path+"/"+url.PathEscape(id)))
}

// formPayload tolerates the upstream form shape; fields may arrive under
// "fields" or "schema".
type formPayload struct {
	ID          flexID              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Fields      []fields.Definition `json:"fields"`
	Schema      []fields.Definition `json:"schema"`
}

// formEnvelope covers both bare and data-wrapped responses.
type formEnvelope struct {
	Data *formPayload `json:"data"`
	formPayload
}

// Form fetches a typed form definition for rendering.
func (c *ResourceClient) Form(ctx context.Context, id string) (*domain.Form, error) {
	var envelope formEnvelope
	if err := c.gw.GetJSON(ctx, "/forms/"+url.PathEscape(id), nil, &envelope); err != nil {
		return nil, mapStatus(err)
	}

	payload := envelope.formPayload
	if envelope.Data != nil {
		payload = *envelope.Data
	}
	defs := payload.Fields
	if len(defs) == 0 {
		defs = payload.Schema
	}

	return &domain.Form{
		ID:          string(payload.ID),
		Name:        payload.Name,
		Description: payload.Description,
		Fields:      defs,
	}, nil
}

// Completion fetches the dashboard completion aggregate.
func (c *ResourceClient) Completion(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.gw.GetJSON(ctx, "/dashboard/completion", nil, &raw); err != nil {
		return nil, mapStatus(err)
	}
	return raw, nil
}

// mapStatus converts upstream 404s to the domain sentinel; other errors pass
// through for the caller (and the central error handler) to deal with.
func mapStatus(err error) error {
	var status *gateway.StatusError
	if errors.As(err, &status) && status.Code == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return err
}
