package services

import (
	"context"

	"github.com/hollowayink/wayfarer/pkg/game"
)

// NarrativeService is the game's storyteller. It holds all actual game
// logic; the client consumes its structured responses without
// second-guessing their content.
type NarrativeService interface {
	// StartAdventure begins a new game with the given theme and
	// returns the opening turn.
	StartAdventure(ctx context.Context, theme string) (*game.TurnResult, error)

	// Advance sends a player command along with recent transcript
	// lines, the held inventory, and the current scene id, and returns
	// the resulting turn.
	Advance(ctx context.Context, command string, recentHistory []string, inventory []string, currentSceneID string) (*game.TurnResult, error)
}
