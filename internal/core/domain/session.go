package domain

import "time"

// Forced-logout reasons reported in metrics and logs.
const (
	LogoutReasonExpired      = "expired"
	LogoutReasonUnauthorized = "unauthorized"
	LogoutReasonInactive     = "inactive"
)

// Session pairs the opaque bearer token with its absolute expiry timestamp.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session token can no longer be used. A token
// whose expiry equals now is already expired; an absent token always is.
func (s Session) Expired(now time.Time) bool {
	if s.Token == "" || s.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(s.ExpiresAt)
}

// Valid reports whether a token is present and not past its expiry.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && !s.Expired(now)
}
