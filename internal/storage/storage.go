package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/hollowayink/wayfarer/pkg/game"
)

// Storage persists game sessions between API calls. The scene cache
// travels with the state, so a resumed session keeps its rendered art.
type Storage interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error

	// SaveState stores a session snapshot
	SaveState(ctx context.Context, id uuid.UUID, st *game.State) error

	// LoadState retrieves a session snapshot; nil means not found
	LoadState(ctx context.Context, id uuid.UUID) (*game.State, error)

	// DeleteState removes a session
	DeleteState(ctx context.Context, id uuid.UUID) error

	// Close closes the storage connection
	Close() error

	// WaitForConnection waits for storage to be available with retries
	WaitForConnection(ctx context.Context) error
}
