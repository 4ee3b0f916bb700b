package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

// SessionStore is what the session handlers need from the store.
type SessionStore interface {
	Login(ctx context.Context, creds ports.Credentials) (*domain.Principal, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	TokenValid() bool
	ExpiresAt() time.Time
	Principal() *domain.Principal
	RefreshPrincipal(ctx context.Context) (*domain.Principal, error)
}

// Notifier is the slice of the notification service the session lifecycle
// drives: the push listener follows the principal.
type Notifier interface {
	StartListening(ctx context.Context, userID string) error
	StopListening(ctx context.Context)
}

type SessionHandler struct {
	sessions SessionStore
	notifier Notifier
}

func NewSessionHandler(sessions SessionStore, notifier Notifier) *SessionHandler {
	return &SessionHandler{sessions: sessions, notifier: notifier}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type sessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *domain.Principal `json:"user,omitempty"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
}

// Login authenticates against the upstream and establishes the session.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	principal, err := h.sessions.Login(ctx, ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Remember: req.Remember,
	})
	if err != nil {
		return err
	}

	if h.notifier != nil {
		// Losing the push channel does not fail the login.
		_ = h.notifier.StartListening(context.WithoutCancel(ctx), principal.ID)
	}

	expiresAt := h.sessions.ExpiresAt()
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		User:          principal,
		ExpiresAt:     &expiresAt,
	})
}

// Logout tears down the session. Idempotent; always 204.
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if h.notifier != nil {
		h.notifier.StopListening(ctx)
	}
	if err := h.sessions.Logout(ctx); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Session reports the current session state to the browser shell.
func (h *SessionHandler) Session(c echo.Context) error {
	resp := sessionResponse{Authenticated: h.sessions.IsAuthenticated() && h.sessions.TokenValid()}
	if resp.Authenticated {
		resp.User = h.sessions.Principal()
		expiresAt := h.sessions.ExpiresAt()
		resp.ExpiresAt = &expiresAt
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh re-fetches the profile from the upstream and replaces the cached
// principal. Fetch failures surface to the caller.
func (h *SessionHandler) Refresh(c echo.Context) error {
	principal, err := h.sessions.RefreshPrincipal(c.Request().Context())
	if err != nil {
		return err
	}
	expiresAt := h.sessions.ExpiresAt()
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		User:          principal,
		ExpiresAt:     &expiresAt,
	})
}
