package ports

import (
	"context"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
	Remember bool
}

// LoginResult is what the upstream returns on a successful login.
type LoginResult struct {
	Token     string
	Principal *domain.Principal
}

// AuthAPI is the upstream authentication surface consumed by the session
// store.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context) error
	FetchUser(ctx context.Context) (*domain.Principal, error)
}
