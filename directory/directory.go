// Package directory defines the boundary to the credential directory:
// the authority on which emails may log in and which API keys may
// report locations.
package directory

import (
	"context"
	"errors"
)

var (
	// ErrNotAuthorized means the directory has no live entry for the
	// given email or key.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrUnavailable means the directory itself could not be consulted.
	ErrUnavailable = errors.New("directory unavailable")
)

// ClientInfo identifies one reporting client.
type ClientInfo struct {
	ID   int64
	Name string
}

// Directory answers the two authorization questions the server asks.
// Implementations return ErrNotAuthorized for unknown or expired
// principals and ErrUnavailable (possibly wrapped) for backend failure.
type Directory interface {
	// LookupUserByEmail returns the display name for an authorized web
	// user.
	LookupUserByEmail(ctx context.Context, email string) (string, error)

	// LookupClientByKey returns the client behind an authorized API key.
	LookupClientByKey(ctx context.Context, key string) (ClientInfo, error)
}
