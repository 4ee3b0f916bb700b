package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/formdesk/dashboard-gateway/internal/api/metrics"
	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

// BearerAuth injects the Authorization header when a token is present.
func BearerAuth(session SessionState) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			if token, ok := session.Token(); ok {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next(req)
		}
	}
}

// ExpiryGuard rejects requests before they leave the process when the token
// is locally known to be expired, and terminates the stale session. Requests
// made while logged out (the login call itself) pass through.
func ExpiryGuard(session SessionState) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			if _, held := session.Token(); held && session.TokenExpired() {
				session.ForceLogout(req.Context(), domain.LogoutReasonExpired)
				return nil, domain.ErrTokenExpired
			}
			return next(req)
		}
	}
}

// Upstream 403 messages that mean the session is dead rather than the
// operation being forbidden.
var authFailureFragments = []string{
	"account is inactive",
	"token is invalid",
	"token has expired",
	"token invalid",
	"token expired",
}

// AuthFailure intercepts 401 responses, and 403 responses whose message
// marks the session itself as dead, forcing a logout. The redirect callback
// runs exactly once per session even when concurrent requests fail together,
// because ForceLogout reports only the first transition. All other responses
// and errors pass through unmodified.
func AuthFailure(session SessionState, redirect func(), log zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err != nil {
				return nil, err
			}

			reason, dead := sessionDeath(resp)
			if !dead {
				return resp, nil
			}

			drain(resp)
			if session.ForceLogout(req.Context(), reason) {
				log.Warn().
					Str("path", req.URL.Path).
					Int("status", resp.StatusCode).
					Str("reason", reason).
					Msg("upstream rejected session")
				if redirect != nil {
					redirect()
				}
			}

			if reason == domain.LogoutReasonInactive {
				return nil, domain.ErrAccountInactive
			}
			return nil, domain.ErrNotAuthenticated
		}
	}
}

// sessionDeath classifies a response as a session-terminating auth failure.
func sessionDeath(resp *http.Response) (reason string, dead bool) {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.LogoutReasonUnauthorized, true
	case http.StatusForbidden:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		resp.Body = io.NopCloser(bytes.NewReader(raw))

		var envelope errorEnvelope
		_ = json.Unmarshal(raw, &envelope)
		message := strings.ToLower(envelope.Message)
		if message == "" {
			message = strings.ToLower(envelope.Error)
		}
		for _, fragment := range authFailureFragments {
			if strings.Contains(message, fragment) {
				if strings.Contains(message, "inactive") {
					return domain.LogoutReasonInactive, true
				}
				return domain.LogoutReasonUnauthorized, true
			}
		}
	}
	return "", false
}

// Logging emits one structured line per upstream round-trip.
func Logging(log zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			if err != nil {
				log.Warn().
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Dur("duration", time.Since(start)).
					Err(err).
					Msg("upstream request failed")
				return nil, err
			}
			log.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Dur("duration", time.Since(start)).
				Int("status", resp.StatusCode).
				Msg("upstream request")
			return resp, nil
		}
	}
}

// Metrics records request counts and durations per method.
func Metrics() Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			metrics.UpstreamRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.UpstreamRequestsTotal.WithLabelValues(req.Method, "error").Inc()
				return nil, err
			}
			metrics.UpstreamRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
			return resp, nil
		}
	}
}
