package outbound

import "context"

// AuthResult is the remote response to a successful credential exchange:
// a bearer token and the identity record it was issued for.
type AuthResult struct {
	Token  string
	Record Record
}

// NewUser carries the fields for remote user registration
type NewUser struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthAPI defines the outbound auth surface of the remote record service
type AuthAPI interface {
	// CheckHealth probes the liveness endpoint. Used as the reachability
	// pre-check to distinguish "no network" from "bad credentials".
	CheckHealth(ctx context.Context) error

	// AuthWithPassword exchanges credentials for a token and identity record
	AuthWithPassword(ctx context.Context, identity, password string) (*AuthResult, error)

	// CreateUser creates the remote user record
	CreateUser(ctx context.Context, user NewUser) error

	// SetToken attaches a bearer token to subsequent record operations.
	// An empty token detaches it. Only the auth manager calls this.
	SetToken(token string)
}
