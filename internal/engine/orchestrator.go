package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hollowayink/wayfarer/internal/services"
	"github.com/hollowayink/wayfarer/pkg/audio"
	"github.com/hollowayink/wayfarer/pkg/game"
)

// TurnPhase is the explicit lifecycle of a turn. Keeping it enumerated,
// rather than inferring it from boolean flags, makes the single-turn
// invariant checkable.
type TurnPhase int

const (
	PhaseIdle TurnPhase = iota
	PhaseAwaitingNarrative
	PhaseAwaitingVisuals
	PhaseCommitting
)

func (p TurnPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingNarrative:
		return "awaiting_narrative"
	case PhaseAwaitingVisuals:
		return "awaiting_visuals"
	case PhaseCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// HistoryContextLimit is how many transcript lines accompany each
// narrative request.
const HistoryContextLimit = 5

const narrativeTimeout = 60 * time.Second

const (
	loadingNarrative = "The story unfolds..."
	loadingVisuals   = "Painting the scene..."
)

// Orchestrator drives one game session end to end: it sends commands
// to the narrative service, resolves visuals through the policy and
// scene cache, merges the results into the next game state, and fires
// narration. It is the only writer of the session's State.
type Orchestrator struct {
	narrative services.NarrativeService
	policy    *VisualPolicy
	narrator  *audio.Narrator
	logger    *slog.Logger

	mu    sync.Mutex // guards state and phase
	state *game.State
	phase TurnPhase
}

func NewOrchestrator(narrative services.NarrativeService, policy *VisualPolicy, narrator *audio.Narrator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		narrative: narrative,
		policy:    policy,
		narrator:  narrator,
		logger:    logger,
		state:     game.NewState(),
		phase:     PhaseIdle,
	}
}

// NewOrchestratorWithState resumes an orchestrator over a previously
// saved session state.
func NewOrchestratorWithState(st *game.State, narrative services.NarrativeService, policy *VisualPolicy, narrator *audio.Narrator, logger *slog.Logger) *Orchestrator {
	o := NewOrchestrator(narrative, policy, narrator, logger)
	if st != nil {
		if st.SceneCache == nil {
			st.SceneCache = make(game.SceneCache)
		}
		st.IsLoading = false
		st.LoadingMessage = ""
		o.state = st
	}
	return o
}

// Snapshot returns a copy of the current game state for the
// presentation layer. Slices are copied so readers never observe a
// mid-commit mutation.
func (o *Orchestrator) Snapshot() game.State {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := *o.state
	snap.Inventory = append([]string(nil), o.state.Inventory...)
	snap.History = append([]game.LogEntry(nil), o.state.History...)
	snap.Hotspots = append([]game.Hotspot(nil), o.state.Hotspots...)
	cache := make(game.SceneCache, len(o.state.SceneCache))
	for k, v := range o.state.SceneCache {
		cache[k] = v
	}
	snap.SceneCache = cache
	return snap
}

// Phase returns the current turn phase.
func (o *Orchestrator) Phase() TurnPhase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// StartGame begins a new session with the given theme. The opening
// scene always generates fresh art; there is nothing in the cache to
// reuse. Returns false if a turn is already in flight.
func (o *Orchestrator) StartGame(ctx context.Context, theme string) bool {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return false
	}
	st := game.NewState()
	st.ID = o.state.ID // session identity survives a restart
	st.IsPlaying = true
	st.IsLoading = true
	st.LoadingMessage = loadingNarrative
	o.state = st
	o.phase = PhaseAwaitingNarrative
	o.mu.Unlock()

	nctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
	defer cancel()

	result, err := o.narrative.StartAdventure(nctx, theme)
	if err != nil {
		o.logger.Error("Failed to start adventure", "error", err, "theme", theme)
		result = game.FallbackTurn("")
	}

	// The first visual of a session is always generated, regardless of
	// what the model claims.
	result.TriggerVisualUpdate = true

	inventory := game.AddItem([]string{}, result.InventoryAdd)
	o.resolveAndCommit(ctx, result, inventory, "")
	return true
}

// ExecuteTurn runs one player command through the full turn pipeline.
// It returns false when the command is rejected without any state
// change: empty input, game not running, game over, or another turn
// still in flight. Rejection is a debounce, not an error.
func (o *Orchestrator) ExecuteTurn(ctx context.Context, rawCommand string) bool {
	command := strings.TrimSpace(rawCommand)
	if command == "" {
		return false
	}

	o.mu.Lock()
	if !o.state.IsPlaying || o.state.GameOver || o.phase != PhaseIdle {
		o.mu.Unlock()
		return false
	}
	o.state.AppendLog(game.LogCommand, command)
	o.state.IsLoading = true
	o.state.LoadingMessage = loadingNarrative
	o.phase = PhaseAwaitingNarrative

	recentHistory := o.state.RecentHistory(HistoryContextLimit)
	inventory := append([]string(nil), o.state.Inventory...)
	prevSceneID := o.state.CurrentSceneID
	o.mu.Unlock()

	nctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
	defer cancel()

	result, err := o.narrative.Advance(nctx, command, recentHistory, inventory, prevSceneID)
	if err != nil {
		if errors.Is(err, game.ErrMalformed) {
			o.logger.Warn("Malformed narrative response, substituting fallback", "error", err)
		} else {
			o.logger.Error("Narrative service failed, substituting fallback", "error", err)
		}
		result = game.FallbackTurn(prevSceneID)
	}

	inventory = game.AddItem(inventory, result.InventoryAdd)
	inventory = game.RemoveItem(inventory, result.InventoryRemove)

	o.resolveAndCommit(ctx, result, inventory, prevSceneID)
	return true
}

// resolveAndCommit runs the visual half of a turn and then commits the
// next state. Shared by StartGame and ExecuteTurn; the narrative result
// is already final (fallback-substituted if needed) by the time this
// runs.
func (o *Orchestrator) resolveAndCommit(ctx context.Context, result *game.TurnResult, inventory []string, prevSceneID string) {
	needsVisualUpdate := result.SceneID != prevSceneID || result.TriggerVisualUpdate

	var visuals Visuals
	if needsVisualUpdate {
		o.mu.Lock()
		o.phase = PhaseAwaitingVisuals
		o.state.LoadingMessage = loadingVisuals
		cache := o.state.SceneCache
		o.mu.Unlock()

		visuals = o.policy.Resolve(ctx, result.SceneID, result.VisualDescription, result.TriggerVisualUpdate, result.Interactables, cache)
	}

	o.mu.Lock()
	o.phase = PhaseCommitting

	next := *o.state
	next.Inventory = inventory
	next.CurrentSceneID = result.SceneID
	next.GameOver = result.IsGameOver
	next.IsLoading = false
	next.LoadingMessage = ""
	next.UpdatedAt = time.Now()
	next.AppendLog(game.LogNarrator, result.Narrative)

	if needsVisualUpdate {
		// A fresh image replaces the display; a failed render keeps
		// the previous image. Hotspots are replaced wholesale either
		// way, so stale regions never sit over new art.
		if visuals.ImageURL != "" {
			next.ImageURL = visuals.ImageURL
		}
		next.Hotspots = visuals.Hotspots

		if visuals.Fresh {
			next.SceneCache.Put(result.SceneID, game.SceneArtifact{
				ID:                result.SceneID,
				ImageURL:          visuals.ImageURL,
				Hotspots:          visuals.Hotspots,
				VisualDescription: result.VisualDescription,
				Interactables:     result.Interactables,
			})
		}
	}

	o.state = &next
	o.phase = PhaseIdle
	o.mu.Unlock()

	if o.narrator != nil {
		o.narrator.Speak(result.Narrative)
	}
}
