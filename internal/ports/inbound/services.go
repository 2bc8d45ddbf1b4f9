package inbound

import (
	"context"

	"pricetrail/internal/domain/shared"
)

// AuthState is the auth manager's lifecycle state
type AuthState int

const (
	StateUninitialized AuthState = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

// String returns the state name for logging
func (s AuthState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// AuthListener is notified on every auth state transition. The user is
// non-nil only in the authenticated state.
type AuthListener func(state AuthState, user *shared.User)

// request to register a new user account
type SignUpRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// AuthService defines the auth session operations
type AuthService interface {
	// Restore attempts to restore a persisted session at startup and
	// settles into the authenticated or anonymous state
	Restore(ctx context.Context) AuthState

	// SignIn exchanges credentials for a session
	SignIn(ctx context.Context, email, password string) (*shared.User, error)

	// SignUp registers a new account; registration implies login
	SignUp(ctx context.Context, req SignUpRequest) (*shared.User, error)

	// SignOut clears the session locally, never blocked by network state
	SignOut(ctx context.Context) error

	// CurrentUser returns the authenticated user, or nil
	CurrentUser() *shared.User

	// IsAuthenticated reports whether a valid session is active
	IsAuthenticated() bool

	// Subscribe registers a listener for state transitions and returns
	// an unsubscribe function
	Subscribe(listener AuthListener) func()

	// Epoch increments on every sign-out; snapshot application compares
	// it to discard responses from a superseded session
	Epoch() uint64
}

// Dashboard is an immutable snapshot of a user's items and their price
// observations. Callers replace prior state wholesale on receipt; Seq and
// Epoch let the snapshot holder discard stale in-flight responses.
type Dashboard struct {
	Seq          uint64
	Epoch        uint64
	Items        []shared.Item
	PricesByItem map[string][]shared.PriceObservation
}

// CascadeResult reports the outcome of a cascade delete
type CascadeResult struct {
	ObservationsRemoved int
	ObservationsTotal   int
}

// TrackerService defines the item/price aggregation operations
type TrackerService interface {
	// LoadDashboard retrieves the user's items and all their price
	// observations in one batched query, grouped by item
	LoadDashboard(ctx context.Context, userID string) (*Dashboard, error)

	// CreateItem creates a tracked item owned by the user
	CreateItem(ctx context.Context, userID, name, description, category string) (*shared.Item, error)

	// AddPrice validates and records a price observation for an item
	AddPrice(ctx context.Context, itemID, rawPrice string) (*shared.PriceObservation, error)

	// ItemPrices retrieves one item's observations, optionally bounded
	// to the trailing number of days (0 means unbounded), sorted
	// ascending by creation time
	ItemPrices(ctx context.Context, itemID string, withinDays int) ([]shared.PriceObservation, error)

	// DeleteItemCascade removes an item together with all its observations
	DeleteItemCascade(ctx context.Context, itemID string) (CascadeResult, error)
}
