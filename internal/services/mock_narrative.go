package services

import (
	"context"
	"sync"

	"github.com/hollowayink/wayfarer/pkg/game"
)

// MockNarrativeService is a mock implementation of NarrativeService for
// testing.
type MockNarrativeService struct {
	StartAdventureFunc func(ctx context.Context, theme string) (*game.TurnResult, error)
	AdvanceFunc        func(ctx context.Context, command string, recentHistory []string, inventory []string, currentSceneID string) (*game.TurnResult, error)

	// Track calls for testing
	StartAdventureCalls []string
	AdvanceCalls        []AdvanceCall

	mu sync.Mutex // protects all fields above
}

type AdvanceCall struct {
	Command        string
	RecentHistory  []string
	Inventory      []string
	CurrentSceneID string
}

// Ensure MockNarrativeService implements NarrativeService
var _ NarrativeService = (*MockNarrativeService)(nil)

func NewMockNarrativeService() *MockNarrativeService {
	return &MockNarrativeService{
		StartAdventureCalls: make([]string, 0),
		AdvanceCalls:        make([]AdvanceCall, 0),
	}
}

func (m *MockNarrativeService) StartAdventure(ctx context.Context, theme string) (*game.TurnResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartAdventureCalls = append(m.StartAdventureCalls, theme)

	if m.StartAdventureFunc != nil {
		return m.StartAdventureFunc(ctx, theme)
	}

	return &game.TurnResult{
		Narrative:           "Your adventure begins.",
		SceneID:             "opening_scene",
		VisualDescription:   "an opening scene",
		TriggerVisualUpdate: true,
		Interactables:       []string{},
	}, nil
}

func (m *MockNarrativeService) Advance(ctx context.Context, command string, recentHistory []string, inventory []string, currentSceneID string) (*game.TurnResult, error) {
	m.mu.Lock()
	m.AdvanceCalls = append(m.AdvanceCalls, AdvanceCall{
		Command:        command,
		RecentHistory:  recentHistory,
		Inventory:      inventory,
		CurrentSceneID: currentSceneID,
	})
	fn := m.AdvanceFunc
	// Release the lock before invoking the callback so a blocking
	// AdvanceFunc cannot deadlock concurrent GetAdvanceCalls.
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, command, recentHistory, inventory, currentSceneID)
	}

	return &game.TurnResult{
		Narrative:     "Nothing much happens.",
		SceneID:       currentSceneID,
		Interactables: []string{},
	}, nil
}

// GetAdvanceCalls returns a copy of the tracked Advance calls.
func (m *MockNarrativeService) GetAdvanceCalls() []AdvanceCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]AdvanceCall, len(m.AdvanceCalls))
	copy(calls, m.AdvanceCalls)
	return calls
}

// Reset clears all call tracking.
func (m *MockNarrativeService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartAdventureCalls = make([]string, 0)
	m.AdvanceCalls = make([]AdvanceCall, 0)
}
