// Package upstream holds the typed clients for the remote admin API. Every
// call goes through the gateway pipeline, which owns authentication and
// auth-failure recovery; these clients only shape payloads.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
	"github.com/formdesk/dashboard-gateway/internal/gateway"
)

// AuthClient implements ports.AuthAPI over /login, /logout and /user.
type AuthClient struct {
	gw *gateway.Client
}

// NewAuthClient creates an AuthClient over the shared gateway.
func NewAuthClient(gw *gateway.Client) *AuthClient {
	return &AuthClient{gw: gw}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  principalPayload `json:"user"`
}

// Login exchanges credentials for a token and principal. A 401 or 422 from
// the upstream maps to ErrInvalidCredentials; everything else propagates.
func (c *AuthClient) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	var resp loginResponse
	err := c.gw.PostJSON(ctx, "/login", loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Remember: creds.Remember,
	}, &resp)
	if err != nil {
		var status *gateway.StatusError
		if errors.As(err, &status) &&
			(status.Code == http.StatusUnauthorized || status.Code == http.StatusUnprocessableEntity) {
			return nil, domain.ErrInvalidCredentials
		}
		// The auth-failure middleware converts a 401 on /login too; it still
		// means bad credentials here because no session was held.
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if resp.Token == "" {
		return nil, domain.ErrInvalidCredentials
	}

	return &ports.LoginResult{Token: resp.Token, Principal: resp.User.principal()}, nil
}

// Logout tells the upstream to invalidate the token.
func (c *AuthClient) Logout(ctx context.Context) error {
	return c.gw.PostJSON(ctx, "/logout", nil, nil)
}

// FetchUser retrieves the fresh profile of the authenticated principal.
func (c *AuthClient) FetchUser(ctx context.Context) (*domain.Principal, error) {
	var payload principalPayload
	if err := c.gw.GetJSON(ctx, "/user", nil, &payload); err != nil {
		return nil, err
	}
	return payload.principal(), nil
}

// principalPayload tolerates the upstream's loose user shape: numeric or
// string ids, and roles as either names or {name: ...} objects.
type principalPayload struct {
	ID             flexID    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	OrganizationID flexID    `json:"organization_id"`
	Roles          roleNames `json:"roles"`
	Permissions    []string  `json:"permissions"`
}

func (p principalPayload) principal() *domain.Principal {
	return &domain.Principal{
		ID:             string(p.ID),
		Name:           p.Name,
		Email:          p.Email,
		OrganizationID: string(p.OrganizationID),
		Roles:          []string(p.Roles),
		Permissions:    p.Permissions,
	}
}

// flexID accepts numeric, string or null identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*f = flexID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*f = flexID(asNumber.String())
	return nil
}

type roleNames []string

func (r *roleNames) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*r = plain
		return nil
	}

	var objects []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &objects); err != nil {
		return err
	}
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		if o.Name != "" {
			names = append(names, o.Name)
		}
	}
	*r = names
	return nil
}
