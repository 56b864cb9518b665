// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nova-ledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(paymentHandler *handler.PaymentHandler, charityHandler *handler.CharityHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"OK"}`))
		})

		// Account lookups
		r.Get("/accounts", paymentHandler.ListAccounts)
		r.Post("/verify-upi", paymentHandler.VerifyUpi)
		r.Post("/get-balance", paymentHandler.GetBalance)

		// Transfers: status-code-driven demo checkout and the
		// body-flag verify endpoint kept for caller compatibility
		r.Post("/demo/complete-payment", paymentHandler.CompletePayment)
		r.Post("/payment/verify", paymentHandler.VerifyPayment)

		// Transaction history
		r.Get("/transactions/user/{userId}", paymentHandler.HistoryByUser)
		r.Get("/transactions/{upiId}", paymentHandler.History)

		// Charities and donations
		r.Get("/charities", charityHandler.ListCharities)
		r.Post("/donations", charityHandler.CreateDonation)
		r.Get("/donations/{donationId}", charityHandler.GetDonation)
	})

	return r
}
