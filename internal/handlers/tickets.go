package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebdray/storywalk/pkg/progression"
)

// TicketsHandler serves the ticket balance and the exchange operation.
// Routes:
//
//	GET /v1/tickets           - Current balance and the exchange catalog
//	POST /v1/tickets/exchange - Purchase one catalog entry
type TicketsHandler struct {
	service *progression.Service
	logger  *slog.Logger
}

type BalanceResponse struct {
	Balance int                 `json:"balance"`
	Catalog progression.Catalog `json:"catalog"`
}

type ExchangeRequest struct {
	Key string `json:"key"`
}

func NewTicketsHandler(service *progression.Service, logger *slog.Logger) *TicketsHandler {
	return &TicketsHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TicketsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/tickets")
	path = strings.Trim(path, "/")

	switch {
	case r.Method == http.MethodGet && path == "":
		h.handleBalance(w, r)
	case r.Method == http.MethodPost && path == "exchange":
		h.handleExchange(w, r)
	default:
		h.logger.Warn("Method not allowed for tickets endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported: GET /v1/tickets, POST /v1/tickets/exchange")
	}
}

func (h *TicketsHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.Balance(r.Context())
	if err != nil {
		h.logger.Error("Failed to read balance", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read ticket balance")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, BalanceResponse{
		Balance: balance,
		Catalog: h.service.Catalog(),
	})
}

func (h *TicketsHandler) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'key' field.")
		return
	}

	result, err := h.service.Purchase(r.Context(), req.Key)
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrUnknownItem):
			writeError(w, h.logger, http.StatusNotFound, "Unknown exchange item: "+req.Key)
		case errors.Is(err, progression.ErrAlreadyUnlocked):
			writeError(w, h.logger, http.StatusConflict, "Content is already unlocked")
		case errors.Is(err, progression.ErrInsufficientFunds):
			writeError(w, h.logger, http.StatusPaymentRequired, "Not enough tickets for this exchange")
		default:
			h.logger.Error("Exchange failed", "key", req.Key, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Exchange failed")
		}
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
