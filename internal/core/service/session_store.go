package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/formdesk/dashboard-gateway/internal/api/metrics"
	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

// Persistence keys shared by both scopes. The expiry key holds the unix
// timestamp as a decimal string.
const (
	scopeKeyToken     = "authToken"
	scopeKeyPrincipal = "authUser"
	scopeKeyExpiry    = "authExpiry"
)

const defaultTokenTTL = 60 * time.Minute

// SessionStore is the single source of truth for who is logged in and what
// they can do. It is an explicit, injectable object: construct one at the
// application root and hand it to every consumer.
//
// State mutations are serialized by a mutex so the gateway's auth-failure
// hook and the HTTP handlers can race safely; the persistence scopes are
// last-write-wins by design.
type SessionStore struct {
	mu         sync.Mutex
	remembered ports.Scope
	ephemeral  ports.Scope
	api        ports.AuthAPI
	log        zerolog.Logger
	now        func() time.Time
	tokenTTL   time.Duration

	session   domain.Session
	principal *domain.Principal
	active    ports.Scope
}

// SessionOption customises a SessionStore.
type SessionOption func(*SessionStore)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// WithTokenTTL sets the validity window applied when the upstream token does
// not carry its own expiry.
func WithTokenTTL(ttl time.Duration) SessionOption {
	return func(s *SessionStore) { s.tokenTTL = ttl }
}

// NewSessionStore creates a logged-out store over the two persistence scopes.
// The upstream auth API is attached separately with AttachAPI because the
// request gateway that carries it needs the store first.
func NewSessionStore(remembered, ephemeral ports.Scope, log zerolog.Logger, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		remembered: remembered,
		ephemeral:  ephemeral,
		log:        log,
		now:        time.Now,
		tokenTTL:   defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttachAPI binds the upstream auth client. Must be called once during wiring
// before Login, Logout or RefreshPrincipal are used.
func (s *SessionStore) AttachAPI(api ports.AuthAPI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
}

// Login authenticates against the upstream and stores token, principal and
// computed expiry in the scope selected by creds.Remember. Upstream errors
// propagate unchanged.
func (s *SessionStore) Login(ctx context.Context, creds ports.Credentials) (*domain.Principal, error) {
	s.mu.Lock()
	api := s.api
	s.mu.Unlock()
	if api == nil {
		return nil, domain.ErrNoUpstream
	}

	result, err := api.Login(ctx, creds)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	now := s.now()
	expiresAt := s.tokenExpiry(result.Token, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = domain.Session{Token: result.Token, ExpiresAt: expiresAt}
	s.principal = result.Principal.Clone()
	if creds.Remember {
		s.active = s.remembered
	} else {
		s.active = s.ephemeral
	}

	// The token lives in exactly one scope; wipe both before persisting.
	s.clearScopes(ctx)
	s.persistSession(ctx, s.active)

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.log.Info().
		Str("user_id", s.principal.ID).
		Bool("remember", creds.Remember).
		Time("expires_at", expiresAt).
		Msg("session established")

	return s.principal.Clone(), nil
}

// Restore reconstructs the session from persistence, remembered scope first.
// Malformed stored state degrades to logged-out; it never fails the caller.
func (s *SessionStore) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, scope := range []ports.Scope{s.remembered, s.ephemeral} {
		token, err := scope.Get(ctx, scopeKeyToken)
		if err != nil || token == "" {
			continue
		}

		raw, err := scope.Get(ctx, scopeKeyPrincipal)
		if errors.Is(err, domain.ErrKeyNotFound) {
			// A token without its principal is absent, not corrupt.
			s.log.Debug().Msg("stored token without principal, treating session as absent")
			continue
		}
		if err != nil {
			metrics.SessionRestoresTotal.WithLabelValues("corrupt").Inc()
			s.log.Warn().Err(err).Msg("stored principal unreadable, treating session as absent")
			continue
		}
		var principal domain.Principal
		if err := json.Unmarshal([]byte(raw), &principal); err != nil {
			metrics.SessionRestoresTotal.WithLabelValues("corrupt").Inc()
			s.log.Warn().Err(err).Msg("stored principal malformed, treating session as absent")
			continue
		}

		expiresAt := s.storedExpiry(ctx, scope, token)

		s.session = domain.Session{Token: token, ExpiresAt: expiresAt}
		s.principal = &principal
		s.active = scope

		metrics.SessionRestoresTotal.WithLabelValues("restored").Inc()
		s.log.Info().Str("user_id", principal.ID).Time("expires_at", expiresAt).Msg("session restored")
		return true, nil
	}

	metrics.SessionRestoresTotal.WithLabelValues("empty").Inc()
	return false, nil
}

// Logout clears in-memory and persisted state in both scopes. The upstream is
// notified best-effort before the token is dropped; notification failures are
// swallowed. Calling Logout on a logged-out store is a no-op.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	api := s.api
	hadToken := s.session.Token != ""
	s.mu.Unlock()

	if hadToken && api != nil {
		if err := api.Logout(ctx); err != nil {
			s.log.Debug().Err(err).Msg("upstream logout notification failed")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(ctx)
	return nil
}

// ForceLogout terminates the session without notifying the upstream, used
// when the upstream itself rejected the token. It reports whether the store
// actually transitioned, so concurrent auth failures trigger follow-up
// actions (the login redirect) exactly once.
func (s *SessionStore) ForceLogout(ctx context.Context, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Token == "" && s.principal == nil {
		return false
	}
	s.reset(ctx)

	metrics.ForcedLogoutsTotal.WithLabelValues(reason).Inc()
	s.log.Warn().Str("reason", reason).Msg("session terminated")
	return true
}

// IsAuthenticated is true iff a token and a principal are both present.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token != "" && s.principal != nil
}

// Token returns the bearer token, if any.
func (s *SessionStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token, s.session.Token != ""
}

// ExpiresAt returns the token expiry timestamp (zero when logged out).
func (s *SessionStore) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ExpiresAt
}

// TokenExpired reports whether the token is absent or at/past its expiry.
func (s *SessionStore) TokenExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Expired(s.now())
}

// TokenValid reports whether a token is present and not expired.
func (s *SessionStore) TokenValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Valid(s.now())
}

// CheckTokenExpiration reports whether a held token is expired, logging the
// stale session out as a side effect. A logged-out store reports false; it
// holds nothing that could expire, and callers distinguish "no session" from
// "stale session".
func (s *SessionStore) CheckTokenExpiration(ctx context.Context) bool {
	s.mu.Lock()
	held := s.session.Token != ""
	expired := s.session.Expired(s.now())
	s.mu.Unlock()

	if !held {
		return false
	}
	if expired {
		s.ForceLogout(ctx, domain.LogoutReasonExpired)
	}
	return expired
}

// HasRole reports whether the principal holds any of the given roles.
func (s *SessionStore) HasRole(roles ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal.HasRole(roles...)
}

// HasPermission reports whether the principal holds any of the given
// permissions; superadmins always pass.
func (s *SessionStore) HasPermission(permissions ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal.HasPermission(permissions...)
}

// Principal returns a copy of the authenticated principal, or nil.
func (s *SessionStore) Principal() *domain.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal.Clone()
}

// SetPrincipal replaces the cached principal wholesale and re-persists it to
// both scopes, mirroring how a profile refresh lands regardless of which
// scope carries the token.
func (s *SessionStore) SetPrincipal(ctx context.Context, principal *domain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.principal = principal.Clone()
	s.persistPrincipal(ctx)
}

// RefreshPrincipal fetches the profile from the upstream and replaces the
// cached principal. Fetch failures surface to the caller; the previous
// principal stays in place.
func (s *SessionStore) RefreshPrincipal(ctx context.Context) (*domain.Principal, error) {
	s.mu.Lock()
	api := s.api
	held := s.session.Token != ""
	s.mu.Unlock()

	if api == nil {
		return nil, domain.ErrNoUpstream
	}
	if !held {
		return nil, domain.ErrNotAuthenticated
	}

	principal, err := api.FetchUser(ctx)
	if err != nil {
		return nil, err
	}

	s.SetPrincipal(ctx, principal)
	return principal.Clone(), nil
}

// tokenExpiry derives the absolute expiry for a freshly issued token. JWTs
// carry their real lifetime in the exp claim; the signature is the upstream's
// concern, so an unverified parse is enough here. Opaque tokens get the
// configured validity window from issue time.
func (s *SessionStore) tokenExpiry(token string, issuedAt time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return issuedAt.Add(s.tokenTTL)
}

// storedExpiry reads the persisted expiry timestamp, falling back to deriving
// it from the token for sessions written before the expiry key existed.
func (s *SessionStore) storedExpiry(ctx context.Context, scope ports.Scope, token string) time.Time {
	raw, err := scope.Get(ctx, scopeKeyExpiry)
	if err == nil {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.Unix(unix, 0)
		}
		s.log.Warn().Str("value", raw).Msg("stored expiry malformed, deriving from token")
	}
	return s.tokenExpiry(token, s.now())
}

// reset clears memory and both scopes. Callers hold the mutex.
func (s *SessionStore) reset(ctx context.Context) {
	s.session = domain.Session{}
	s.principal = nil
	s.active = nil
	s.clearScopes(ctx)
}

// clearScopes wipes the session keys from both scopes, best-effort.
func (s *SessionStore) clearScopes(ctx context.Context) {
	for _, scope := range []ports.Scope{s.remembered, s.ephemeral} {
		if err := scope.Delete(ctx, scopeKeyToken, scopeKeyPrincipal, scopeKeyExpiry); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear persistence scope")
		}
	}
}

// persistSession writes token, principal and expiry into the given scope.
// Callers hold the mutex.
func (s *SessionStore) persistSession(ctx context.Context, scope ports.Scope) {
	if err := scope.Set(ctx, scopeKeyToken, s.session.Token); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist token")
	}
	if err := scope.Set(ctx, scopeKeyExpiry, strconv.FormatInt(s.session.ExpiresAt.Unix(), 10)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist expiry")
	}
	if raw, err := json.Marshal(s.principal); err == nil {
		if err := scope.Set(ctx, scopeKeyPrincipal, string(raw)); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist principal")
		}
	}
}

// persistPrincipal writes the principal into both scopes. Callers hold the
// mutex.
func (s *SessionStore) persistPrincipal(ctx context.Context) {
	raw, err := json.Marshal(s.principal)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to serialize principal")
		return
	}
	for _, scope := range []ports.Scope{s.remembered, s.ephemeral} {
		if err := scope.Set(ctx, scopeKeyPrincipal, string(raw)); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist principal")
		}
	}
}
