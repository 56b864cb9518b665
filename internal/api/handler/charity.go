// internal/api/handler/charity.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"nova-ledger/internal/service"
	"nova-ledger/internal/util"
)

// CharityHandler handles HTTP requests for charities and donations.
type CharityHandler struct {
	charities service.CharityService
	logger    *slog.Logger
}

// NewCharityHandler creates a new CharityHandler.
func NewCharityHandler(charities service.CharityService, logger *slog.Logger) *CharityHandler {
	return &CharityHandler{
		charities: charities,
		logger:    logger,
	}
}

func (h *CharityHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
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

func (h *CharityHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput), util.IsError(err, util.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrCharityNotFound), util.IsError(err, util.ErrDonationNotFound),
		util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	default:
		h.logger.Error("Unhandled charity service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// ListCharities handles GET /api/charities.
func (h *CharityHandler) ListCharities(w http.ResponseWriter, r *http.Request) {
	charities, err := h.charities.ListCharities(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, charities)
}

// CreateDonationRequest is the request body for starting a donation.
type CreateDonationRequest struct {
	UserID    string          `json:"user_id"`
	CharityID string          `json:"charity_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// CreateDonation handles POST /api/donations. The donation starts out
// pending; it completes only once the matching transfer reconciles.
func (h *CharityHandler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	donation, err := h.charities.CreateDonation(r.Context(), req.UserID, req.CharityID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, donation)
}

// GetDonation handles GET /api/donations/{donationId}.
func (h *CharityHandler) GetDonation(w http.ResponseWriter, r *http.Request) {
	donationID := chi.URLParam(r, "donationId")
	donation, err := h.charities.GetDonation(r.Context(), donationID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, donation)
}
