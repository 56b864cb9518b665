// internal/api/handler/payment.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"nova-ledger/internal/service"
	"nova-ledger/internal/util"
)

// DefaultTimeout is the per-request timeout applied by the router.
const DefaultTimeout = 30 * time.Second

// PaymentHandler handles HTTP requests for accounts and transfers.
type PaymentHandler struct {
	transfers service.TransferService
	charities service.CharityService
	logger    *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(transfers service.TransferService, charities service.CharityService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		transfers: transfers,
		charities: charities,
		logger:    logger,
	}
}

// Helper function to send JSON responses.
func (h *PaymentHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
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

// Helper function to send error responses. The body always carries
// status=FAILURE plus the error message; insufficient-funds failures
// additionally expose the sender's current balance.
func (h *PaymentHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	payload := map[string]interface{}{"status": "FAILURE"}

	var insufficient *util.InsufficientFundsError
	switch {
	case util.IsError(err, util.ErrInvalidInput), util.IsError(err, util.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		payload["error"] = err.Error()
	case errors.As(err, &insufficient):
		statusCode = http.StatusBadRequest
		payload["error"] = util.ErrInsufficientFunds.Error()
		payload["currentBalance"] = insufficient.CurrentBalance
	case util.IsError(err, util.ErrInvalidPIN):
		statusCode = http.StatusUnauthorized
		payload["error"] = err.Error()
	case util.IsError(err, util.ErrAccountNotFound), util.IsError(err, util.ErrNotFound),
		util.IsError(err, util.ErrCharityNotFound), util.IsError(err, util.ErrDonationNotFound):
		statusCode = http.StatusNotFound
		payload["error"] = err.Error()
	case util.IsError(err, util.ErrCompensationFailed):
		payload["error"] = err.Error()
		h.logger.Error("Compensation failure surfaced to caller", "error", err)
	case util.IsError(err, util.ErrPartialFailure):
		payload["error"] = err.Error()
	case util.IsError(err, util.ErrPersistence):
		payload["error"] = util.ErrPersistence.Error()
		h.logger.Error("Persistence failure", "error", err)
	default:
		payload["error"] = "internal server error"
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, payload)
}

type accountView struct {
	Name     string          `json:"name"`
	UpiID    string          `json:"upiId"`
	Balance  decimal.Decimal `json:"balance"`
	BankName string          `json:"bankName"`
}

// ListAccounts handles GET /api/accounts. The merchant account is
// excluded from the listing.
func (h *PaymentHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.transfers.ListAccounts(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, accountView{
			Name:     acc.Name,
			UpiID:    acc.UpiID,
			Balance:  acc.Balance,
			BankName: acc.BankName,
		})
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "SUCCESS",
		"accounts": views,
	})
}

// UpiRequest carries a UPI id lookup.
type UpiRequest struct {
	UpiID string `json:"upiId"`
}

// VerifyUpi handles POST /api/verify-upi.
func (h *PaymentHandler) VerifyUpi(w http.ResponseWriter, r *http.Request) {
	h.lookupAccount(w, r)
}

// GetBalance handles POST /api/get-balance. Same contract as VerifyUpi.
func (h *PaymentHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	h.lookupAccount(w, r)
}

func (h *PaymentHandler) lookupAccount(w http.ResponseWriter, r *http.Request) {
	var req UpiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.UpiID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	account, err := h.transfers.GetAccount(r.Context(), req.UpiID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "SUCCESS",
		"name":    account.Name,
		"upiId":   account.UpiID,
		"balance": account.Balance,
	})
}

// CompletePaymentRequest is the request body for the demo checkout.
type CompletePaymentRequest struct {
	UpiID      string          `json:"upiId"`
	Pin        string          `json:"pin"`
	Amount     decimal.Decimal `json:"amount"`
	OrderID    string          `json:"orderId"`
	DonationID string          `json:"donationId"`
}

// CompletePayment handles POST /api/demo/complete-payment. Outcomes are
// status-code driven: 200 on success, 4xx/5xx on failure.
func (h *PaymentHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	var req CompletePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	result, err := h.transfers.Transfer(r.Context(), service.TransferInput{
		UpiID:      req.UpiID,
		PIN:        req.Pin,
		Amount:     req.Amount,
		OrderID:    req.OrderID,
		DonationID: req.DonationID,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if req.DonationID != "" {
		h.charities.Reconcile(r.Context(), req.DonationID, result.TxnID)
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "SUCCESS",
		"txnId":         result.TxnID,
		"senderName":    result.SenderName,
		"senderBalance": result.SenderBalance,
		"amount":        result.Amount,
		"timestamp":     result.Timestamp,
	})
}

// VerifyPaymentRequest is the snake_case request body of the
// body-flag payment endpoint.
type VerifyPaymentRequest struct {
	DonationID string          `json:"donation_id"`
	PaymentID  string          `json:"payment_id"`
	UpiID      string          `json:"upi_id"`
	Pin        string          `json:"pin"`
	Amount     decimal.Decimal `json:"amount"`
}

// VerifyPayment handles POST /api/payment/verify. It always answers
// HTTP 200 and reports the outcome through a success flag in the body.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": util.ErrInvalidInput.Error(),
		})
		return
	}

	result, err := h.transfers.Transfer(r.Context(), service.TransferInput{
		UpiID:      req.UpiID,
		PIN:        req.Pin,
		Amount:     req.Amount,
		OrderID:    req.PaymentID,
		DonationID: req.DonationID,
	})
	if err != nil {
		payload := map[string]interface{}{
			"success": false,
			"message": err.Error(),
		}
		var insufficient *util.InsufficientFundsError
		if errors.As(err, &insufficient) {
			payload["message"] = util.ErrInsufficientFunds.Error()
			payload["currentBalance"] = insufficient.CurrentBalance
		}
		h.respondWithJSON(w, http.StatusOK, payload)
		return
	}

	if req.DonationID != "" {
		h.charities.Reconcile(r.Context(), req.DonationID, result.TxnID)
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"txnId":         result.TxnID,
		"senderBalance": result.SenderBalance,
	})
}

// History handles GET /api/transactions/{upiId}.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	upiID := chi.URLParam(r, "upiId")
	transactions, err := h.transfers.History(r.Context(), upiID, service.HistoryLimit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "SUCCESS",
		"transactions": transactions,
	})
}

// HistoryByUser handles GET /api/transactions/user/{userId}. An unknown
// user id yields an empty list rather than 404.
func (h *PaymentHandler) HistoryByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	transactions, err := h.transfers.HistoryByUserID(r.Context(), userID, service.HistoryLimit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "SUCCESS",
		"transactions": transactions,
	})
}
