package shared

import (
	"time"
)

// User represents an authenticated user normalized from the remote
// identity record. Extra carries any remote fields beyond the named ones.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Username string         `json:"username"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Item represents a tracked item owned by a user
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PriceObservation represents a single recorded price for an item.
// Observations are immutable once created; CreatedAt is the time axis.
type PriceObservation struct {
	ID        string    `json:"id"`
	Price     float64   `json:"price"`
	ItemID    string    `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the durable proof of identity: the raw bearer token plus a
// snapshot of the identity record it was issued for. Owned exclusively by
// the auth manager; the session store only persists its serialized bytes.
type Session struct {
	Token  string         `json:"token"`
	Record map[string]any `json:"record"`
}
