package domain

import "time"

// Notification severity classes.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is a message delivered to the principal, either fetched from
// the upstream history or merged in from the push channel. The upstream is
// authoritative for deletion; locally a notification only ever gains a read
// timestamp.
type Notification struct {
	ID        string     `json:"id"`
	Severity  string     `json:"severity"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// Read reports whether the notification has been marked read.
func (n Notification) Read() bool {
	return n.ReadAt != nil
}
