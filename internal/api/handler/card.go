// internal/api/handler/card.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"svpay-balance/internal/api/types"
	"svpay-balance/internal/service"
	"svpay-balance/internal/util"
)

// DefaultTimeout bounds request handling in the router's timeout middleware.
const DefaultTimeout = 60 * time.Second

// CardHandler handles HTTP requests related to card operations.
type CardHandler struct {
	service service.CardService
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *CardHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *CardHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		message = err.Error()
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrCardNotFound):
		statusCode = http.StatusNotFound
		message = "Card not found"
	case util.IsError(err, util.ErrDuplicateTag):
		statusCode = http.StatusConflict
		message = "Card with this UID already exists"
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusBadRequest
		message = "Insufficient balance"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// parseCardID extracts the numeric {cardID} path parameter. An id that does
// not parse cannot name a card, so it maps to NotFound.
func parseCardID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil {
		return 0, util.ErrCardNotFound
	}
	return id, nil
}

// ListCards handles card listing and search.
// GET /api/cards?search=
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	cards, err := h.service.ListCards(r.Context(), search)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, cards)
}

// GetCard handles lookup by internal id.
// GET /api/cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseCardID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	card, err := h.service.GetCard(r.Context(), cardID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, card)
}

// GetCardByTag handles lookup by RFID UID, used by the scanner before a wash.
// GET /api/cards/uid/{rfidUID}
func (h *CardHandler) GetCardByTag(w http.ResponseWriter, r *http.Request) {
	rfidUID := chi.URLParam(r, "rfidUID")

	card, err := h.service.GetCardByTag(r.Context(), rfidUID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, card)
}

// CreateCardRequest represents the request body for card creation.
type CreateCardRequest struct {
	RFIDUID string `json:"rfid_uid"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// CreateCard handles card creation.
// POST /api/cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	if req.RFIDUID == "" || req.Name == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	card, err := h.service.CreateCard(r.Context(), req.RFIDUID, req.Name, req.Balance)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, card)
}

// UpdateCardRequest represents the request body for a partial card update.
type UpdateCardRequest struct {
	Name    *string `json:"name"`
	Balance *int64  `json:"balance"`
}

// UpdateCard handles partial updates of name and balance.
// PUT /api/cards/{cardID}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseCardID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	card, err := h.service.UpdateCard(r.Context(), cardID, req.Name, req.Balance)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, card)
}

// AddBalanceRequest represents the request body for a quick top-up.
type AddBalanceRequest struct {
	Amount int64 `json:"amount"`
}

// AddBalance handles quick top-ups.
// POST /api/cards/{cardID}/add-balance
func (h *CardHandler) AddBalance(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseCardID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AddBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	card, err := h.service.AddBalance(r.Context(), cardID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, card)
}

// UseCard handles the single-credit consumption triggered by a physical scan.
// POST /api/cards/uid/{rfidUID}/use
func (h *CardHandler) UseCard(w http.ResponseWriter, r *http.Request) {
	rfidUID := chi.URLParam(r, "rfidUID")

	card, err := h.service.Consume(r.Context(), rfidUID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.ConsumeResponse{
		Success:          true,
		Message:          "Wash activated",
		RemainingBalance: card.Balance,
	})
}

// DeleteCard handles card deletion.
// DELETE /api/cards/{cardID}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseCardID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.DeleteCard(r.Context(), cardID); err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.StatusResponse{
		Success: true,
		Message: "Card deleted",
	})
}

// GetTransactions handles transaction history listing.
// GET /api/transactions/{cardID}?limit=
func (h *CardHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseCardID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = service.DefaultHistoryLimit
	}

	transactions, err := h.service.GetTransactionHistory(r.Context(), cardID, limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, transactions)
}
