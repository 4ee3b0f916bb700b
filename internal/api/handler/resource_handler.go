package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

// maxProxyBody bounds pass-through request bodies.
const maxProxyBody = 1 << 20

// ResourceHandler proxies CRUD collections to the upstream untouched. One
// handler serves every collection; routes bind the collection name.
type ResourceHandler struct {
	resources ports.ResourceAPI
}

func NewResourceHandler(resources ports.ResourceAPI) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// List proxies GET /<collection>, forwarding the query string.
func (h *ResourceHandler) List(collection string) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := h.resources.List(c.Request().Context(), collection, c.QueryParams())
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, raw)
	}
}

// Get proxies GET /<collection>/:id.
func (h *ResourceHandler) Get(collection string) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := h.resources.Get(c.Request().Context(), collection, c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, raw)
	}
}

// Create proxies POST /<collection>.
func (h *ResourceHandler) Create(collection string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readBody(c)
		if err != nil {
			return err
		}
		raw, err := h.resources.Create(c.Request().Context(), collection, body)
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusCreated, raw)
	}
}

// Update proxies PUT /<collection>/:id.
func (h *ResourceHandler) Update(collection string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readBody(c)
		if err != nil {
			return err
		}
		raw, err := h.resources.Update(c.Request().Context(), collection, c.Param("id"), body)
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, raw)
	}
}

// Delete proxies DELETE /<collection>/:id.
func (h *ResourceHandler) Delete(collection string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.resources.Delete(c.Request().Context(), collection, c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// readBody reads and syntax-checks a JSON request body. The upstream owns
// the schema; only well-formedness is enforced here.
func readBody(c echo.Context) (json.RawMessage, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxProxyBody))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable payload")
	}
	if len(raw) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "empty payload")
	}
	if !json.Valid(raw) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return raw, nil
}
