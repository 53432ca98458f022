package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/shopmate/payment-gateway/internal/metrics"
	"github.com/shopmate/payment-gateway/internal/outcome"
	"github.com/shopmate/payment-gateway/internal/phonepe"
	"github.com/shopmate/payment-gateway/internal/worker"
)

// PaymentService is the platform-independent core behind every hosting
// front-end. The HTTP router and the Lambda adapter both translate their
// request shapes into these calls; signing and status mapping live only in
// the phonepe package underneath.
type PaymentService struct {
	gw    *phonepe.Client
	store outcome.Store
	wp    *worker.Pool
}

func NewPaymentService(gw *phonepe.Client, store outcome.Store, wp *worker.Pool) *PaymentService {
	return &PaymentService{gw: gw, store: store, wp: wp}
}

// Initiate starts a payment and seeds the merged view with PENDING, so a
// status query for a fresh transaction is determinate even before the
// first poll reaches the gateway.
func (s *PaymentService) Initiate(ctx context.Context, amount decimal.Decimal, userID, mobileNumber string) (phonepe.InitiateResult, error) {
	res, err := s.gw.Initiate(ctx, phonepe.PaymentRequest{
		Amount:       amount,
		UserID:       userID,
		MobileNumber: mobileNumber,
	})
	if err != nil {
		metrics.InitiationsTotal.WithLabelValues(initiateResultLabel(err)).Inc()
		return phonepe.InitiateResult{}, err
	}

	if _, err := s.store.Apply(ctx, outcome.Outcome{
		TransactionID: res.TransactionID,
		Status:        outcome.StatusPending,
	}); err != nil {
		// the store is advisory; the initiation itself succeeded
		slog.Error("seed outcome", "txn_id", res.TransactionID, "err", err)
	}

	metrics.InitiationsTotal.WithLabelValues("ok").Inc()
	return res, nil
}

// Status polls the gateway and merges the result into the stored view, so
// a webhook-confirmed SUCCESS never regresses to PENDING in what the
// collaborator sees.
func (s *PaymentService) Status(ctx context.Context, transactionID string) (outcome.Outcome, error) {
	polled, err := s.gw.CheckStatus(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, phonepe.ErrValidation) {
			metrics.StatusChecksTotal.WithLabelValues("error").Inc()
		}
		return outcome.Outcome{}, err
	}

	merged, err := s.store.Apply(ctx, polled)
	if err != nil {
		slog.Error("merge outcome", "txn_id", transactionID, "err", err)
		merged = polled
	}

	metrics.StatusChecksTotal.WithLabelValues(string(merged.Status)).Inc()
	return merged, nil
}

// Webhook verifies an asynchronous notification and, when it confirms a
// payment, applies the upgrade off the request path. Verification failures
// come back as typed errors; anything after verification is logged only,
// so the gateway always gets its acknowledgment and never enters a retry
// storm over our internal state.
func (s *PaymentService) Webhook(ctx context.Context, signature, base64Body string) (phonepe.WebhookResult, error) {
	res, err := s.gw.VerifyWebhook(signature, base64Body)
	if err != nil {
		if errors.Is(err, phonepe.ErrSignatureMismatch) {
			metrics.WebhooksTotal.WithLabelValues("signature_mismatch").Inc()
		} else {
			metrics.WebhooksTotal.WithLabelValues("malformed").Inc()
		}
		return phonepe.WebhookResult{}, err
	}

	if !res.Decoded {
		// authenticated but unparseable: acknowledged anyway, logged by
		// the verifier; anything else risks a gateway retry storm
		metrics.WebhooksTotal.WithLabelValues("malformed").Inc()
		return res, nil
	}

	metrics.WebhooksTotal.WithLabelValues("ok").Inc()

	if res.Outcome != nil {
		obs := *res.Outcome
		s.wp.Submit(func() {
			if _, err := s.store.Apply(context.Background(), obs); err != nil {
				slog.Error("apply webhook outcome", "txn_id", obs.TransactionID, "err", err)
			}
		})
	} else {
		slog.Info("webhook without success confirmation", "txn_id", res.TransactionID, "code", res.Code)
	}

	return res, nil
}

func initiateResultLabel(err error) string {
	switch {
	case errors.Is(err, phonepe.ErrValidation):
		return "validation_error"
	case errors.Is(err, phonepe.ErrNetwork):
		return "network_error"
	default:
		return "gateway_error"
	}
}
