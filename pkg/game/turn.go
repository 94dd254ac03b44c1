package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed indicates a narrative response that was received but did
// not match the expected TurnResult shape. Callers substitute a
// fallback turn rather than surfacing this to the player.
var ErrMalformed = errors.New("malformed turn result")

// FallbackNarrative is shown when the narrative service fails. It stays
// in character so a degraded turn reads like part of the story.
const FallbackNarrative = "A strange fog clouds your senses for a moment. " +
	"When it clears, everything is as it was. (The storyteller seems " +
	"distracted. Try that again.)"

// TurnResult is the structured narrative response for one turn. It is
// the sole channel through which game logic reaches the client; the
// client trusts its narrative content and validates only its shape.
type TurnResult struct {
	Narrative           string   `json:"narrative"`
	SceneID             string   `json:"scene_id"`
	VisualDescription   string   `json:"visual_description"`
	TriggerVisualUpdate bool     `json:"trigger_visual_update"`
	Interactables       []string `json:"interactables"`
	InventoryAdd        string   `json:"inventory_add,omitempty"`
	InventoryRemove     string   `json:"inventory_remove,omitempty"`
	IsGameOver          bool     `json:"is_game_over,omitempty"`
}

// ParseTurnResult parses raw model output into a TurnResult. Markdown
// code fences are stripped first, since models wrap JSON in them
// despite instructions not to. A response missing its required fields
// returns ErrMalformed.
func ParseTurnResult(raw string) (*TurnResult, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	var tr TurnResult
	if err := json.Unmarshal([]byte(cleaned), &tr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if tr.Narrative == "" || tr.SceneID == "" {
		return nil, fmt.Errorf("%w: missing narrative or scene_id", ErrMalformed)
	}
	if tr.Interactables == nil {
		tr.Interactables = []string{}
	}
	return &tr, nil
}

// FallbackTurn builds the deterministic turn used when the narrative
// service fails or returns garbage. It keeps the player in the previous
// scene and never triggers a visual update.
func FallbackTurn(prevSceneID string) *TurnResult {
	sceneID := prevSceneID
	if sceneID == "" {
		sceneID = "limbo"
	}
	return &TurnResult{
		Narrative:     FallbackNarrative,
		SceneID:       sceneID,
		Interactables: []string{},
	}
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = ""
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
