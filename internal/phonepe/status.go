package phonepe

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopmate/payment-gateway/internal/outcome"
)

// CheckStatus polls the gateway for one transaction and maps the response
// onto the local three-state result. The mapping is total: every reachable
// gateway response, including a malformed body, resolves to an outcome.
// Only transport failures and a missing transaction id return an error;
// the poll is advisory and the collaborator must always get a determinate
// answer otherwise.
func (c *Client) CheckStatus(ctx context.Context, transactionID string) (outcome.Outcome, error) {
	if strings.TrimSpace(transactionID) == "" {
		return outcome.Outcome{}, validationf("transactionId is required")
	}

	path := statusPathBase + c.merchantID + "/" + transactionID
	checksum := c.signer.Sign(c.signer.statusSigningString(c.merchantID, transactionID))

	_, data, err := c.doRequest(ctx, http.MethodGet, path, nil, map[string]string{
		"X-VERIFY":      checksum,
		"X-MERCHANT-ID": c.merchantID,
	})
	if err != nil {
		return outcome.Outcome{}, err
	}

	return mapStatusResponse(transactionID, data), nil
}

// mapStatusResponse applies the poll mapping in priority order:
// success+PAYMENT_SUCCESS -> SUCCESS, PAYMENT_PENDING -> PENDING,
// everything else (unknown codes, gateway errors, unparseable body) -> FAILED.
func mapStatusResponse(transactionID string, body []byte) outcome.Outcome {
	env, ok := decodeEnvelope(body)
	if !ok {
		return outcome.Outcome{
			TransactionID: transactionID,
			Status:        outcome.StatusFailed,
			Message:       "payment status could not be determined",
		}
	}

	switch {
	case env.Success && env.Code == codePaymentSuccess:
		return outcome.Outcome{
			TransactionID: transactionID,
			Status:        outcome.StatusSuccess,
			Message:       env.Message,
		}
	case env.Code == codePaymentPending:
		return outcome.Outcome{
			TransactionID: transactionID,
			Status:        outcome.StatusPending,
			Message:       env.Message,
		}
	default:
		msg := env.Message
		if msg == "" {
			msg = "payment failed"
		}
		return outcome.Outcome{
			TransactionID: transactionID,
			Status:        outcome.StatusFailed,
			Message:       msg,
		}
	}
}
