package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// LogEntry kinds. The transcript distinguishes narration, player
// commands, and recovered errors so the presentation layer can style
// them differently.
const (
	LogNarrator = "narrator"
	LogCommand  = "command"
	LogError    = "error"
)

// LogEntry is a single line of the session transcript. Entries are
// immutable once appended.
type LogEntry struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// State is the full state of one adventure session. It is the single
// source of truth for the presentation layer and is mutated only by the
// orchestrator, by whole-state replacement at the end of a turn.
type State struct {
	ID             uuid.UUID  `json:"id"`
	IsPlaying      bool       `json:"is_playing"`
	GameOver       bool       `json:"game_over"`
	CurrentSceneID string     `json:"current_scene_id,omitempty"`
	Inventory      []string   `json:"inventory,omitempty"`
	History        []LogEntry `json:"history,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	Hotspots       []Hotspot  `json:"hotspots,omitempty"`
	IsLoading      bool       `json:"is_loading"`
	LoadingMessage string     `json:"loading_message,omitempty"`
	SceneCache     SceneCache `json:"scene_cache,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at,omitempty"`
}

func NewState() *State {
	return &State{
		ID:         uuid.New(),
		Inventory:  make([]string, 0),
		History:    make([]LogEntry, 0),
		SceneCache: make(SceneCache),
	}
}

// AppendLog adds an entry to the transcript.
func (s *State) AppendLog(kind, text string) {
	s.History = append(s.History, LogEntry{Kind: kind, Text: text})
}

// RecentHistory returns the text of the last n transcript entries,
// oldest first. Used to build the narrative prompt context.
func (s *State) RecentHistory(n int) []string {
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	return lo.Map(s.History[start:], func(e LogEntry, _ int) string {
		return e.Text
	})
}

// AddItem adds an item to the inventory. Adding an item already held is
// a no-op; insertion order is preserved for display.
func AddItem(inventory []string, item string) []string {
	if item == "" || lo.Contains(inventory, item) {
		return inventory
	}
	return append(inventory, item)
}

// RemoveItem removes an item from the inventory. Removing an absent
// item is a no-op.
func RemoveItem(inventory []string, item string) []string {
	if item == "" {
		return inventory
	}
	return lo.Reject(inventory, func(held string, _ int) bool {
		return held == item
	})
}
