package pocketbase

import (
	"context"
	"errors"
	"net/http"

	"pricetrail/internal/domain/shared"
	"pricetrail/internal/ports/outbound"
)

const (
	healthPath    = "/api/health"
	authPath      = "/api/collections/users/auth-with-password"
	registerPath  = "/api/collections/users/records"
	duplicateCode = "validation_not_unique"
)

// CheckHealth probes the liveness endpoint. The caller bounds the call
// with its own context deadline; expiry reports as unreachable.
func (c *Client) CheckHealth(ctx context.Context) error {
	if err := c.send(ctx, http.MethodGet, healthPath, nil, nil, nil); err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			// A reachable but unhealthy service is still unreachable
			// for the purposes of the pre-check
			return shared.ErrNetworkUnreachable
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return shared.ErrNetworkUnreachable
		}
		return err
	}
	return nil
}

type authResponse struct {
	Token  string          `json:"token"`
	Record outbound.Record `json:"record"`
}

// AuthWithPassword exchanges credentials for a bearer token and identity
// record. Credential rejection maps to ErrInvalidCredentials.
func (c *Client) AuthWithPassword(ctx context.Context, identity, password string) (*outbound.AuthResult, error) {
	body := map[string]string{
		"identity": identity,
		"password": password,
	}

	var resp authResponse
	if err := c.send(ctx, http.MethodPost, authPath, nil, body, &resp); err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			if reqErr.StatusCode == http.StatusBadRequest {
				return nil, shared.ErrInvalidCredentials
			}
			return nil, remoteRejected(reqErr)
		}
		return nil, err
	}

	c.logger.Debug().Str("identity", identity).Msg("Credential exchange succeeded")

	return &outbound.AuthResult{Token: resp.Token, Record: resp.Record}, nil
}

// CreateUser creates the remote user record. Field-level rejections are
// classified from the structured error codes: a non-unique email maps to
// ErrDuplicateEmail, any other field code to a FieldError.
func (c *Client) CreateUser(ctx context.Context, user outbound.NewUser) error {
	body := map[string]any{
		"username":        user.Username,
		"email":           user.Email,
		"password":        user.Password,
		"passwordConfirm": user.PasswordConfirm,
		"emailVisibility": true,
	}

	err := c.send(ctx, http.MethodPost, registerPath, nil, body, nil)
	if err == nil {
		return nil
	}

	var reqErr *requestError
	if !errors.As(err, &reqErr) {
		return err
	}

	if detail, ok := reqErr.Data["email"]; ok && detail.Code == duplicateCode {
		return shared.ErrDuplicateEmail
	}
	for field, detail := range reqErr.Data {
		return &shared.FieldError{Field: field, Code: detail.Code, Message: detail.Message}
	}

	return remoteRejected(reqErr)
}
