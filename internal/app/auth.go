package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pricetrail/internal/domain/shared"
	"pricetrail/internal/ports/inbound"
	"pricetrail/internal/ports/outbound"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthManager implements the auth session use cases. It exclusively owns
// the session: no other component reads or writes the token directly; the
// record client receives it only through SetToken.
type AuthManager struct {
	api           outbound.AuthAPI
	sessions      outbound.SessionStore
	healthTimeout time.Duration
	logger        zerolog.Logger

	mu           sync.RWMutex
	state        inbound.AuthState
	user         *shared.User
	epoch        uint64
	listeners    map[int]inbound.AuthListener
	nextListener int
}

type AuthManagerParams struct {
	API           outbound.AuthAPI
	Sessions      outbound.SessionStore
	HealthTimeout time.Duration
	Logger        zerolog.Logger
}

// NewAuthManager creates a new auth manager in the uninitialized state
func NewAuthManager(params AuthManagerParams) *AuthManager {
	healthTimeout := params.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = 15 * time.Second
	}

	return &AuthManager{
		api:           params.API,
		sessions:      params.Sessions,
		healthTimeout: healthTimeout,
		logger:        params.Logger.With().Str("component", "auth_manager").Logger(),
		state:         inbound.StateUninitialized,
		listeners:     make(map[int]inbound.AuthListener),
	}
}

// Restore attempts to restore a persisted session and settles into the
// authenticated or anonymous state. A malformed or expired token is not
// an error: the stale blob is cleared and the manager becomes anonymous.
func (m *AuthManager) Restore(ctx context.Context) inbound.AuthState {
	m.setState(inbound.StateInitializing, nil)

	blob, ok, err := m.sessions.Load(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load persisted session")
		m.setState(inbound.StateAnonymous, nil)
		return inbound.StateAnonymous
	}
	if !ok {
		m.logger.Info().Msg("No persisted session found")
		m.setState(inbound.StateAnonymous, nil)
		return inbound.StateAnonymous
	}

	var session shared.Session
	if err := json.Unmarshal(blob, &session); err != nil {
		m.logger.Warn().Err(err).Msg("Persisted session is malformed, discarding")
		m.discardSession(ctx)
		return inbound.StateAnonymous
	}

	if err := validateToken(session.Token); err != nil {
		m.logger.Info().Err(err).Msg("Persisted session is no longer valid, discarding")
		m.discardSession(ctx)
		return inbound.StateAnonymous
	}

	user := normalizeUser(session.Record)
	m.api.SetToken(session.Token)
	m.setState(inbound.StateAuthenticated, &user)

	m.logger.Info().Str("user_id", user.ID).Msg("Session restored")
	return inbound.StateAuthenticated
}

// SignIn exchanges credentials for a session. A reachability pre-check
// runs first so "no network" fails fast and distinctly from bad
// credentials. State is untouched on any failure.
func (m *AuthManager) SignIn(ctx context.Context, email, password string) (*shared.User, error) {
	if email == "" {
		return nil, shared.ErrEmailRequired
	}
	if password == "" {
		return nil, shared.ErrPasswordRequired
	}

	m.logger.Info().Str("email", email).Msg("Attempting sign-in")

	if err := m.preCheck(ctx); err != nil {
		return nil, err
	}

	result, err := m.api.AuthWithPassword(ctx, email, password)
	if err != nil {
		m.logger.Warn().Err(err).Str("email", email).Msg("Credential exchange failed")
		return nil, err
	}

	user := m.establishSession(ctx, result)

	m.logger.Info().Str("user_id", user.ID).Msg("Sign-in successful")
	return user, nil
}

// SignUp registers a new account and immediately signs in with the new
// credentials: registration implies login.
func (m *AuthManager) SignUp(ctx context.Context, req inbound.SignUpRequest) (*shared.User, error) {
	if req.Username == "" {
		return nil, shared.ErrUsernameRequired
	}
	if req.Email == "" {
		return nil, shared.ErrEmailRequired
	}
	if req.Password == "" {
		return nil, shared.ErrPasswordRequired
	}
	if req.Password != req.PasswordConfirm {
		return nil, shared.ErrPasswordMismatch
	}

	m.logger.Info().Str("email", req.Email).Msg("Attempting sign-up")

	if err := m.preCheck(ctx); err != nil {
		return nil, err
	}

	if err := m.api.CreateUser(ctx, outbound.NewUser{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	}); err != nil {
		m.logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		return nil, err
	}

	return m.SignIn(ctx, req.Email, req.Password)
}

// SignOut clears the session and transitions to anonymous
// unconditionally: the local logout happens even if clearing the store
// fails, and the bumped epoch invalidates any in-flight responses.
func (m *AuthManager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	m.mu.Unlock()

	m.api.SetToken("")
	m.setState(inbound.StateAnonymous, nil)

	if err := m.sessions.Clear(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Failed to clear persisted session")
		return err
	}

	m.logger.Info().Msg("Signed out")
	return nil
}

// CurrentUser returns the authenticated user, or nil
func (m *AuthManager) CurrentUser() *shared.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// IsAuthenticated reports whether a valid session is active
func (m *AuthManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == inbound.StateAuthenticated
}

// State returns the current lifecycle state
func (m *AuthManager) State() inbound.AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Epoch increments on every sign-out; snapshot application compares it to
// discard responses from a superseded session
func (m *AuthManager) Epoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// Subscribe registers a listener for state transitions and returns an
// unsubscribe function
func (m *AuthManager) Subscribe(listener inbound.AuthListener) func() {
	m.mu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = listener
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// preCheck probes the liveness endpoint within the configured timeout
func (m *AuthManager) preCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, m.healthTimeout)
	defer cancel()

	if err := m.api.CheckHealth(checkCtx); err != nil {
		m.logger.Warn().Err(err).Msg("Reachability pre-check failed")
		return err
	}

	m.logger.Debug().Msg("Reachability pre-check passed")
	return nil
}

// establishSession persists the session and transitions to authenticated.
// A persistence failure degrades to an in-memory session rather than
// failing the sign-in.
func (m *AuthManager) establishSession(ctx context.Context, result *outbound.AuthResult) *shared.User {
	session := shared.Session{Token: result.Token, Record: result.Record}

	blob, err := json.Marshal(session)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to serialize session")
	} else if err := m.sessions.Save(ctx, blob); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist session, continuing in memory")
	}

	user := normalizeUser(result.Record)
	m.api.SetToken(result.Token)
	m.setState(inbound.StateAuthenticated, &user)

	return &user
}

// discardSession clears a stale persisted session and becomes anonymous
func (m *AuthManager) discardSession(ctx context.Context) {
	if err := m.sessions.Clear(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Failed to clear stale session")
	}
	m.setState(inbound.StateAnonymous, nil)
}

// setState records the transition and notifies listeners outside the lock
func (m *AuthManager) setState(state inbound.AuthState, user *shared.User) {
	m.mu.Lock()
	m.state = state
	m.user = user

	notify := make([]inbound.AuthListener, 0, len(m.listeners))
	for _, listener := range m.listeners {
		notify = append(notify, listener)
	}
	m.mu.Unlock()

	for _, listener := range notify {
		listener(state, user)
	}
}

// validateToken checks that the persisted token is a well-formed JWT
// carrying an unexpired exp claim. The signature is the server's concern;
// only shape and expiry are checked locally.
func validateToken(token string) error {
	if token == "" {
		return fmt.Errorf("empty token")
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("malformed token: %w", err)
	}

	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return fmt.Errorf("token has no expiry claim")
	}
	if expiry.Before(time.Now()) {
		return fmt.Errorf("token expired at %s", expiry.Time.Format(time.RFC3339))
	}

	return nil
}

// normalizeUser converts the remote identity record into the client-facing
// user shape, passing through any additional remote fields
func normalizeUser(record outbound.Record) shared.User {
	user := shared.User{
		ID:       record.Str("id"),
		Email:    record.Str("email"),
		Username: record.Str("username"),
	}

	extra := make(map[string]any)
	for key, value := range record {
		switch key {
		case "id", "email", "username":
		default:
			extra[key] = value
		}
	}
	if len(extra) > 0 {
		user.Extra = extra
	}

	return user
}
