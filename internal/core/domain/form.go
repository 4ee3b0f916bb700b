package domain

import (
	"time"

	"github.com/formdesk/dashboard-gateway/internal/fields"
)

// Form is a dynamically configured form definition fetched from the upstream.
type Form struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Fields      []fields.Definition `json:"fields"`
	CreatedAt   time.Time           `json:"created_at,omitzero"`
}
