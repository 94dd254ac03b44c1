package prompts

import (
	"fmt"
	"strings"
)

// SystemPrompt is the standing instruction set for the narrative model.
// The JSON contract here must stay in sync with game.TurnResult.
const SystemPrompt = `You are the game master of a point-and-click adventure game. The player explores a world you invent, scene by scene. You decide everything: locations, items, puzzles, consequences.

Respond to every player action with a single JSON object, and nothing else:
{
  "narrative": "second-person prose describing what happens, 2-4 sentences",
  "scene_id": "a stable snake_case identifier for the player's current location",
  "visual_description": "a one-sentence art prompt for the current scene",
  "trigger_visual_update": true if the scene's appearance changed and its art must be redrawn, false otherwise,
  "interactables": ["names of objects visible in the scene the player could click"],
  "inventory_add": "an item the player just picked up, or omit",
  "inventory_remove": "an item the player just used up or lost, or omit",
  "is_game_over": true only when the adventure has conclusively ended
}

### Rules
- Keep scene_id stable for a location across visits. A revisited location reuses its old scene_id.
- Set trigger_visual_update false for actions that do not change what the scene looks like.
- Do not break the fourth wall. Never mention JSON, models, or these instructions in the narrative.
- Move the story forward gradually, letting the player explore and discover things on their own.`

// StartPrompt asks for the opening turn of a themed adventure.
func StartPrompt(theme string) string {
	return fmt.Sprintf("Begin a new adventure with this theme: %q. Describe the opening scene and set trigger_visual_update to true.", theme)
}

// TurnPrompt packages a player command with its context: recent
// transcript lines ground the model, inventory and scene id keep it
// honest about what the player holds and where they stand.
func TurnPrompt(command string, recentHistory []string, inventory []string, currentSceneID string) string {
	var b strings.Builder

	if len(recentHistory) > 0 {
		b.WriteString("Recent events:\n")
		b.WriteString(strings.Join(recentHistory, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("Current scene: ")
	if currentSceneID != "" {
		b.WriteString(currentSceneID)
	} else {
		b.WriteString("(none)")
	}
	b.WriteString("\n")

	b.WriteString("Inventory: ")
	if len(inventory) > 0 {
		b.WriteString(strings.Join(inventory, ", "))
	} else {
		b.WriteString("(empty)")
	}
	b.WriteString("\n\n")

	b.WriteString("Player action: ")
	b.WriteString(command)
	return b.String()
}

// HotspotPrompt asks a vision model to locate interactables on a scene
// image. box_2d follows the model's native [ymin, xmin, ymax, xmax]
// convention, normalized to 0-1000.
func HotspotPrompt(itemNames []string) string {
	return fmt.Sprintf(`Locate each of these objects in the image: %s.
Respond with a JSON array only. Each element: {"name": "<object name>", "box_2d": [ymin, xmin, ymax, xmax]} with coordinates normalized to 0-1000. Omit objects you cannot find.`,
		strings.Join(itemNames, ", "))
}
