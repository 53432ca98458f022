package phonepe

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/shopmate/payment-gateway/internal/outcome"
)

// WebhookResult is what a verified notification yields. Decoded is false
// when the blob authenticated but could not be parsed; that is a
// downstream processing failure, not grounds to refuse the notification.
// Outcome is nil for non-success codes: a push that is not a success
// confirmation carries weaker guarantees than a poll response, so webhooks
// only ever upgrade state toward SUCCESS and never assert FAILED.
type WebhookResult struct {
	TransactionID string
	Code          string
	Decoded       bool
	Outcome       *outcome.Outcome
}

// VerifyWebhook authenticates and decodes an asynchronous notification.
// The signature is checked over the raw base64 blob before any decoding:
// an unverified body is never parsed into trusted state. Errors are
// returned only for missing inputs and signature mismatch — once the
// signature verifies, the notification is accepted and decode failures are
// logged, so the gateway never re-delivers over our internal problems.
func (c *Client) VerifyWebhook(signature, base64Body string) (WebhookResult, error) {
	if signature == "" {
		return WebhookResult{}, validationf("missing signature header")
	}
	if base64Body == "" {
		return WebhookResult{}, validationf("missing response body")
	}

	if !c.signer.Verify(c.signer.webhookSigningString(base64Body), signature) {
		return WebhookResult{}, ErrSignatureMismatch
	}

	raw, err := base64.StdEncoding.DecodeString(base64Body)
	if err != nil {
		slog.Warn("webhook blob undecodable after valid signature", "err", err)
		return WebhookResult{}, nil
	}

	var note webhookNotification
	if err := json.Unmarshal(raw, &note); err != nil {
		slog.Warn("webhook blob is not valid json after valid signature", "err", err)
		return WebhookResult{}, nil
	}

	res := WebhookResult{
		TransactionID: note.Data.MerchantTransactionID,
		Code:          note.Code,
		Decoded:       true,
	}
	if note.Success && note.Code == codePaymentSuccess && res.TransactionID != "" {
		res.Outcome = &outcome.Outcome{
			TransactionID: res.TransactionID,
			Status:        outcome.StatusSuccess,
			Message:       note.Message,
		}
	}
	return res, nil
}
