package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hollowayink/wayfarer/internal/engine"
	"github.com/hollowayink/wayfarer/internal/services"
	"github.com/hollowayink/wayfarer/internal/storage"
	"github.com/hollowayink/wayfarer/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type StartRequest struct {
	Theme string `json:"theme"`
}

type TurnRequest struct {
	Command string `json:"command"`
}

// GameHandler owns the live sessions. Each session is one orchestrator;
// snapshots go to storage after every committed turn so a session can
// be resumed after the process restarts.
type GameHandler struct {
	narrative services.NarrativeService
	media     services.MediaService
	storage   storage.Storage
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*engine.Orchestrator
}

func NewGameHandler(narrative services.NarrativeService, media services.MediaService, store storage.Storage, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		narrative: narrative,
		media:     media,
		storage:   store,
		logger:    logger,
		sessions:  make(map[uuid.UUID]*engine.Orchestrator),
	}
}

// ServeHTTP handles HTTP requests for game sessions
// Routes:
// POST /v1/games             - Start a new game
// GET /v1/games/{id}         - Read game state by ID
// POST /v1/games/{id}/turn   - Execute a player command
// DELETE /v1/games/{id}      - End and delete a session
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/games")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST to start a game")
			return
		}
		h.handleStart(w, r)
		return
	}

	parts := strings.Split(path, "/")
	gameID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, gameID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, gameID)
	case len(parts) == 2 && parts[1] == "turn" && r.Method == http.MethodPost:
		h.handleTurn(w, r, gameID)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown route")
	}
}

func (h *GameHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Theme) == "" {
		h.writeError(w, http.StatusBadRequest, "Theme is required")
		return
	}

	policy := engine.NewVisualPolicy(h.media, h.logger)
	// No narrator on the server: speech is synthesized for clients that
	// ask for it, not per turn.
	o := engine.NewOrchestrator(h.narrative, policy, nil, h.logger)

	if !o.StartGame(r.Context(), req.Theme) {
		h.writeError(w, http.StatusConflict, "Game is busy")
		return
	}

	st := o.Snapshot()
	h.mu.Lock()
	h.sessions[st.ID] = o
	h.mu.Unlock()

	h.persist(r, &st)

	h.logger.Info("Game started", "game_id", st.ID, "theme", req.Theme, "scene_id", st.CurrentSceneID)
	w.WriteHeader(http.StatusCreated)
	h.writeState(w, &st)
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	o, err := h.session(r, gameID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if o == nil {
		h.writeError(w, http.StatusNotFound, "Game not found")
		return
	}

	st := o.Snapshot()
	h.writeState(w, &st)
}

func (h *GameHandler) handleTurn(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		h.writeError(w, http.StatusBadRequest, "Command is required")
		return
	}

	o, err := h.session(r, gameID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if o == nil {
		h.writeError(w, http.StatusNotFound, "Game not found")
		return
	}

	if !o.ExecuteTurn(r.Context(), req.Command) {
		// Rejected without state change: another turn in flight, or the
		// game is over.
		h.writeError(w, http.StatusConflict, "Command rejected")
		return
	}

	st := o.Snapshot()
	h.persist(r, &st)
	h.writeState(w, &st)
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	h.mu.Lock()
	delete(h.sessions, gameID)
	h.mu.Unlock()

	if err := h.storage.DeleteState(r.Context(), gameID); err != nil {
		h.logger.Error("Failed to delete session", "game_id", gameID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session returns the live orchestrator for a game, resuming it from
// storage if the process has restarted since the game began. nil means
// the game does not exist.
func (h *GameHandler) session(r *http.Request, gameID uuid.UUID) (*engine.Orchestrator, error) {
	h.mu.Lock()
	if o, ok := h.sessions[gameID]; ok {
		h.mu.Unlock()
		return o, nil
	}
	h.mu.Unlock()

	st, err := h.storage.LoadState(r.Context(), gameID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}

	policy := engine.NewVisualPolicy(h.media, h.logger)
	o := engine.NewOrchestratorWithState(st, h.narrative, policy, nil, h.logger)

	h.mu.Lock()
	// Another request may have resumed it first; keep the winner.
	if existing, ok := h.sessions[gameID]; ok {
		o = existing
	} else {
		h.sessions[gameID] = o
	}
	h.mu.Unlock()

	h.logger.Info("Session resumed from storage", "game_id", gameID)
	return o, nil
}

func (h *GameHandler) persist(r *http.Request, st *game.State) {
	if err := h.storage.SaveState(r.Context(), st.ID, st); err != nil {
		// Persistence is best effort; the live session keeps playing.
		h.logger.Error("Failed to persist session", "game_id", st.ID, "error", err)
	}
}

func (h *GameHandler) writeState(w http.ResponseWriter, st *game.State) {
	if err := json.NewEncoder(w).Encode(st); err != nil {
		h.logger.Error("Failed to encode game state", "error", err)
	}
}

func (h *GameHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
