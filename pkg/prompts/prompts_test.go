package prompts

import (
	"strings"
	"testing"
)

func TestTurnPrompt(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		history  []string
		inv      []string
		sceneID  string
		contains []string
	}{
		{
			name:    "full context",
			command: "open the door",
			history: []string{"You arrive at the lighthouse.", "look around"},
			inv:     []string{"brass key", "rope"},
			sceneID: "lighthouse_base",
			contains: []string{
				"Recent events:",
				"You arrive at the lighthouse.",
				"Current scene: lighthouse_base",
				"Inventory: brass key, rope",
				"Player action: open the door",
			},
		},
		{
			name:    "empty context",
			command: "look",
			contains: []string{
				"Current scene: (none)",
				"Inventory: (empty)",
				"Player action: look",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TurnPrompt(tt.command, tt.history, tt.inv, tt.sceneID)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("prompt missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestStartPrompt(t *testing.T) {
	got := StartPrompt("haunted lighthouse")
	if !strings.Contains(got, "haunted lighthouse") {
		t.Errorf("start prompt missing theme: %s", got)
	}
}

func TestHotspotPrompt(t *testing.T) {
	got := HotspotPrompt([]string{"lantern", "trapdoor"})
	if !strings.Contains(got, "lantern, trapdoor") {
		t.Errorf("hotspot prompt missing item names: %s", got)
	}
	if !strings.Contains(got, "box_2d") {
		t.Errorf("hotspot prompt missing box_2d contract: %s", got)
	}
}
