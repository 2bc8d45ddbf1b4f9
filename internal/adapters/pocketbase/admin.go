package pocketbase

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"pricetrail/internal/domain/shared"
)

// Superuser surface used only by the out-of-band bootstrap tool; the
// client application never touches these endpoints.

const (
	superuserAuthPath = "/api/collections/_superusers/auth-with-password"
	collectionsPath   = "/api/collections"
)

// CollectionField describes one field of a collection schema
type CollectionField struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Required     bool   `json:"required,omitempty"`
	MaxSelect    int    `json:"maxSelect,omitempty"`
	CollectionID string `json:"collectionId,omitempty"`
	OnCreate     bool   `json:"onCreate,omitempty"`
	OnUpdate     bool   `json:"onUpdate,omitempty"`
}

// CollectionDefinition describes a collection schema with access rules.
// A nil rule means superuser-only; an empty string means public.
type CollectionDefinition struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Fields     []CollectionField `json:"fields"`
	ListRule   *string           `json:"listRule"`
	ViewRule   *string           `json:"viewRule"`
	CreateRule *string           `json:"createRule"`
	UpdateRule *string           `json:"updateRule"`
	DeleteRule *string           `json:"deleteRule"`
}

// Collection is a created collection as returned by the service
type Collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthSuperuser authenticates as a superuser and attaches the resulting
// token to subsequent requests
func (c *Client) AuthSuperuser(ctx context.Context, email, password string) error {
	body := map[string]string{
		"identity": email,
		"password": password,
	}

	var resp authResponse
	if err := c.send(ctx, http.MethodPost, superuserAuthPath, nil, body, &resp); err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			if reqErr.StatusCode == http.StatusBadRequest {
				return shared.ErrInvalidCredentials
			}
			return remoteRejected(reqErr)
		}
		return err
	}

	c.SetToken(resp.Token)
	return nil
}

// FindCollection looks up a collection by name
func (c *Client) FindCollection(ctx context.Context, name string) (*Collection, error) {
	query := url.Values{}
	query.Set("filter", "name = "+quote(name))
	query.Set("perPage", "1")

	var resp struct {
		Items []Collection `json:"items"`
	}
	if err := c.send(ctx, http.MethodGet, collectionsPath, query, nil, &resp); err != nil {
		return nil, classifyRecordError(err)
	}
	if len(resp.Items) == 0 {
		return nil, shared.ErrRecordNotFound
	}
	return &resp.Items[0], nil
}

// CreateCollection creates a collection from the definition
func (c *Client) CreateCollection(ctx context.Context, def CollectionDefinition) (*Collection, error) {
	var created Collection
	if err := c.send(ctx, http.MethodPost, collectionsPath, nil, def, &created); err != nil {
		return nil, classifyRecordError(err)
	}
	return &created, nil
}

// DeleteCollection removes a collection by id or name
func (c *Client) DeleteCollection(ctx context.Context, idOrName string) error {
	if err := c.send(ctx, http.MethodDelete, collectionsPath+"/"+idOrName, nil, nil, nil); err != nil {
		return classifyRecordError(err)
	}
	return nil
}
