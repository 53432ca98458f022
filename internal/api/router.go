package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	"github.com/shopmate/payment-gateway/internal/api/httpx"
	"github.com/shopmate/payment-gateway/internal/api/validate"
	"github.com/shopmate/payment-gateway/internal/config"
	"github.com/shopmate/payment-gateway/internal/metrics"
	"github.com/shopmate/payment-gateway/internal/middleware"
	"github.com/shopmate/payment-gateway/internal/phonepe"
	"github.com/shopmate/payment-gateway/internal/services"
)

func NewRouter(cfg config.Config, ps *services.PaymentService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// ---------- initiate ----------
		r.Post("/initiate", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Amount       decimal.Decimal `json:"amount"`
				UserID       string          `json:"userId"`
				MobileNumber string          `json:"mobileNumber"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
				return
			}

			var ferrs validate.Errs
			if e := validate.PositiveAmount("amount", req.Amount); e != nil {
				ferrs = append(ferrs, *e)
			}
			if e := validate.Required("userId", req.UserID); e != nil {
				ferrs = append(ferrs, *e)
			}
			if e := validate.Required("mobileNumber", req.MobileNumber); e != nil {
				ferrs = append(ferrs, *e)
			}
			if len(ferrs) > 0 {
				httpx.WriteError(w, http.StatusBadRequest, "validation_error", ferrs.Error())
				return
			}

			res, err := ps.Initiate(r.Context(), req.Amount, req.UserID, req.MobileNumber)
			if err != nil {
				writeGatewayError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{
				"success":       true,
				"url":           res.RedirectURL,
				"transactionId": res.TransactionID,
			})
		})

		// ---------- status ----------
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			txnID := r.URL.Query().Get("transactionId")
			if txnID == "" {
				httpx.WriteError(w, http.StatusBadRequest, "validation_error", "transactionId required")
				return
			}

			out, err := ps.Status(r.Context(), txnID)
			if err != nil {
				writeGatewayError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{
				"status":        out.Status,
				"transactionId": out.TransactionID,
				"message":       out.Message,
			})
		})

		// ---------- webhook ----------
		r.Post("/webhook", func(w http.ResponseWriter, r *http.Request) {
			signature := r.Header.Get("X-VERIFY")

			var body struct {
				Response string `json:"response"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
				return
			}

			if _, err := ps.Webhook(r.Context(), signature, body.Response); err != nil {
				writeGatewayError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
		})
	})

	return r
}

// writeGatewayError maps the error taxonomy onto HTTP statuses. Signature
// and configuration failures are never downgraded to a 200.
func writeGatewayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, phonepe.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, phonepe.ErrSignatureMismatch):
		httpx.WriteError(w, http.StatusForbidden, "signature_mismatch", "signature verification failed")
	case errors.Is(err, phonepe.ErrNetwork):
		httpx.WriteError(w, http.StatusBadGateway, "network_error", "payment gateway unreachable")
	case errors.Is(err, phonepe.ErrGateway):
		httpx.WriteError(w, http.StatusBadGateway, "gateway_error", err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
