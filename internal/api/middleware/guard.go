package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

// Session is the slice of the session store the navigation guard needs.
type Session interface {
	IsAuthenticated() bool
	CheckTokenExpiration(ctx context.Context) bool
	Principal() *domain.Principal
}

// RequireSession is the navigation guard for authenticated routes. An
// expired token is logged out as a side effect of the check, so both the
// "no session" and "stale session" cases fall through to the same rejection.
func RequireSession(session Session) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session.CheckTokenExpiration(c.Request().Context()) {
				return domain.ErrTokenExpired
			}
			if !session.IsAuthenticated() {
				return domain.ErrNotAuthenticated
			}
			return next(c)
		}
	}
}

// RequireOrganization redirects principals that have not created or joined
// an organization yet. Applied to every guarded view except the organization
// routes themselves, mirroring the navigation rule evaluated by the browser
// shell.
func RequireOrganization(session Session) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := session.Principal()
			if principal == nil {
				return domain.ErrNotAuthenticated
			}
			if principal.OrganizationID == "" && !principal.HasRole(domain.RoleSuperadmin) {
				return domain.ErrOrganizationRequired
			}
			return next(c)
		}
	}
}

// RequirePermission gates a route on the principal holding any of the given
// permissions. Superadmins always pass.
func RequirePermission(session Session, permissions ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := session.Principal()
			if principal == nil {
				return domain.ErrNotAuthenticated
			}
			if !principal.HasPermission(permissions...) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
