package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hollowayink/wayfarer/pkg/game"
)

// MemoryStorage is an in-memory Storage for tests and for the console
// client, which keeps the whole session in one process. States are
// stored as JSON so load/save round-trips behave like the real thing.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID][]byte
}

// Ensure MemoryStorage implements Storage interface
var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[uuid.UUID][]byte),
	}
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) SaveState(ctx context.Context, id uuid.UUID, st *game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = data
	return nil
}

func (m *MemoryStorage) LoadState(ctx context.Context, id uuid.UUID) (*game.State, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	var st game.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &st, nil
}

func (m *MemoryStorage) DeleteState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) WaitForConnection(ctx context.Context) error {
	return nil
}
