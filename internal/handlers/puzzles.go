package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebdray/storywalk/pkg/progression"
	"github.com/calebdray/storywalk/pkg/puzzle"
	"github.com/calebdray/storywalk/pkg/storage"
)

// PuzzlesHandler serves the puzzle list and answer submission.
// Routes:
//
//	GET /v1/puzzles              - List puzzles with solved/locked markers
//	POST /v1/puzzles/{key}/answer - Submit an answer for one puzzle
type PuzzlesHandler struct {
	service *progression.Service
	storage storage.Storage
	logger  *slog.Logger
}

// PuzzleView is a puzzle as exposed to clients: the answer never leaves the
// server, and solved/locked state is derived fresh per request.
type PuzzleView struct {
	Key      string      `json:"key"`
	Kind     puzzle.Kind `json:"kind"`
	StoryID  string      `json:"story_id,omitempty"`
	Title    string      `json:"title"`
	Question string      `json:"question"`
	Image    string      `json:"image,omitempty"`
	Solved   bool        `json:"solved"`
	Locked   bool        `json:"locked"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

func NewPuzzlesHandler(service *progression.Service, storage storage.Storage, logger *slog.Logger) *PuzzlesHandler {
	return &PuzzlesHandler{
		service: service,
		storage: storage,
		logger:  logger,
	}
}

func (h *PuzzlesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/puzzles")
	path = strings.Trim(path, "/")

	switch {
	case r.Method == http.MethodGet && path == "":
		h.handleList(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/answer"):
		key := strings.TrimSuffix(path, "/answer")
		h.handleAnswer(w, r, key)
	default:
		h.logger.Warn("Method not allowed for puzzles endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported: GET /v1/puzzles, POST /v1/puzzles/{key}/answer")
	}
}

func (h *PuzzlesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	puzzles, err := h.storage.ListPuzzles(ctx)
	if err != nil {
		h.logger.Error("Failed to list puzzles", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list puzzles")
		return
	}

	snap := h.service.Snapshot(ctx)
	unlockedExtras := make(map[string]bool, len(snap.UnlockedExtras))
	for _, key := range snap.UnlockedExtras {
		unlockedExtras[key] = true
	}
	solved := make(map[string]bool, len(snap.Solved))
	for _, key := range snap.Solved {
		solved[key] = true
	}

	views := make([]PuzzleView, 0, len(puzzles))
	for _, p := range puzzles {
		view := PuzzleView{
			Key:      p.Key,
			Kind:     p.Kind,
			StoryID:  p.StoryID,
			Title:    p.Title,
			Question: p.Question,
			Image:    p.Image,
			Solved:   solved[p.Key],
		}
		if p.Kind == puzzle.KindExtra {
			// An extra stays playable once solved, even though its unlock
			// entry would survive a catalog change.
			unlocked := false
			if entry, ok := h.service.Catalog().ByTarget(progression.KindExtra, p.Key); ok {
				unlocked = unlockedExtras[entry.Key]
			}
			view.Locked = !unlocked && !view.Solved
		}
		views = append(views, view)
	}

	writeJSON(w, h.logger, http.StatusOK, views)
}

func (h *PuzzlesHandler) handleAnswer(w http.ResponseWriter, r *http.Request, key string) {
	if key == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Puzzle key is required")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Answer) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'answer' field.")
		return
	}

	ctx := r.Context()
	p, err := h.storage.GetPuzzle(ctx, key)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Puzzle not found: "+key)
		return
	}

	if p.Kind == puzzle.KindExtra {
		unlocked, err := h.service.IsExtraPuzzleUnlocked(ctx, p.Key)
		if err != nil {
			h.logger.Error("Failed to check extra unlock", "puzzle", key, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to check puzzle lock state")
			return
		}
		solvedAlready, err := h.service.IsSolved(ctx, p.Key)
		if err != nil {
			h.logger.Error("Failed to check solve state", "puzzle", key, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to check puzzle state")
			return
		}
		if !unlocked && !solvedAlready {
			writeError(w, h.logger, http.StatusForbidden, "Puzzle is locked. Unlock it in the ticket exchange.")
			return
		}
	}

	outcome, err := h.service.SubmitAnswer(ctx, p.Key, req.Answer, p.Answer)
	if err != nil {
		h.logger.Error("Failed to submit answer", "puzzle", key, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to record answer")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, outcome)
}
