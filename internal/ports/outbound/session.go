package outbound

import "context"

// SessionStore persists the serialized session blob under a single key.
// It stores and retrieves opaque bytes only; interpreting them is the auth
// manager's job. Operations are idempotent: Clear followed by Load always
// yields absent.
type SessionStore interface {
	// Load returns the persisted blob, or ok=false if none is present.
	// A missing blob is not an error; only underlying storage failures are.
	Load(ctx context.Context) (blob []byte, ok bool, err error)

	// Save persists the blob, overwriting any prior value
	Save(ctx context.Context, blob []byte) error

	// Clear removes the persisted blob
	Clear(ctx context.Context) error
}
