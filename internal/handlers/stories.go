package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebdray/storywalk/pkg/progression"
	"github.com/calebdray/storywalk/pkg/storage"
	"github.com/calebdray/storywalk/pkg/story"
)

// StoriesHandler serves story pins with per-installation lock state.
// Routes:
//
//	GET /v1/stories      - List pins; gated pins carry locked markers
//	GET /v1/stories/{id} - Full pin detail; locked detail is gated
type StoriesHandler struct {
	service *progression.Service
	storage storage.Storage
	logger  *slog.Logger
}

// StoryView is a pin as exposed to clients. A locked pin keeps its place on
// the map but hides the narrative text until unlocked.
type StoryView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	CoordsText  string  `json:"coords_text,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Gated       bool    `json:"gated"`
	Locked      bool    `json:"locked"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
}

func NewStoriesHandler(service *progression.Service, storage storage.Storage, logger *slog.Logger) *StoriesHandler {
	return &StoriesHandler{
		service: service,
		storage: storage,
		logger:  logger,
	}
}

func (h *StoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for stories endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/stories")
	id := strings.Trim(path, "/")

	if id == "" {
		h.handleList(w, r)
		return
	}
	h.handleDetail(w, r, id)
}

func (h *StoriesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pins, err := h.storage.ListStories(ctx)
	if err != nil {
		h.logger.Error("Failed to list stories", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list stories")
		return
	}

	snap := h.service.Snapshot(ctx)
	unlocked := make(map[string]bool, len(snap.UnlockedStories))
	for _, id := range snap.UnlockedStories {
		unlocked[id] = true
	}

	views := make([]StoryView, 0, len(pins))
	for _, pin := range pins {
		views = append(views, h.view(pin, unlocked[pin.ID]))
	}

	writeJSON(w, h.logger, http.StatusOK, views)
}

func (h *StoriesHandler) handleDetail(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	pin, err := h.storage.GetStory(ctx, id)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Story not found: "+id)
		return
	}

	unlocked := false
	if pin.Gated {
		unlocked, err = h.service.IsStoryUnlocked(ctx, pin.ID)
		if err != nil {
			h.logger.Error("Failed to check story unlock", "story", id, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to check story lock state")
			return
		}
	}

	view := h.view(*pin, unlocked)
	if view.Locked {
		writeError(w, h.logger, http.StatusPaymentRequired, "Story is locked. Unlock it in the ticket exchange.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *StoriesHandler) view(pin story.Pin, unlocked bool) StoryView {
	locked := pin.Gated && !unlocked
	v := StoryView{
		ID:         pin.ID,
		Title:      pin.Title,
		CoordsText: pin.CoordsText,
		Lat:        pin.Lat,
		Lng:        pin.Lng,
		Gated:      pin.Gated,
		Locked:     locked,
		Image:      pin.Image,
	}
	if !locked {
		v.Description = pin.Description
	}
	return v
}
