package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
	"github.com/formdesk/dashboard-gateway/internal/fields"
)

type FormHandler struct {
	forms ports.FormAPI
}

func NewFormHandler(forms ports.FormAPI) *FormHandler {
	return &FormHandler{forms: forms}
}

// renderedField pairs a stored field definition with the widget and props
// the dashboard renders it with.
type renderedField struct {
	Definition fields.Definition `json:"definition"`
	Props      fields.Props      `json:"props"`
}

type renderedForm struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Fields      []renderedField `json:"fields"`
}

// Render fetches a form and resolves every field definition to rendering
// instructions.
func (h *FormHandler) Render(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return domain.ErrInvalidInput
	}

	form, err := h.forms.Form(c.Request().Context(), id)
	if err != nil {
		return err
	}

	rendered := make([]renderedField, 0, len(form.Fields))
	for _, def := range form.Fields {
		rendered = append(rendered, renderedField{
			Definition: def,
			Props:      fields.PropsFor(def),
		})
	}

	return c.JSON(http.StatusOK, renderedForm{
		ID:          form.ID,
		Name:        form.Name,
		Description: form.Description,
		Fields:      rendered,
	})
}

// Catalog returns the field type palette for the form builder.
func (h *FormHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"data": fields.Catalog()})
}
