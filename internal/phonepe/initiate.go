package phonepe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Initiate starts a payment on the gateway's hosted pay page and returns
// the URL to redirect the payer to. The transaction id is generated only
// after validation passes, so an invalid request never burns an id.
func (c *Client) Initiate(ctx context.Context, req PaymentRequest) (InitiateResult, error) {
	if !req.Amount.IsPositive() {
		return InitiateResult{}, validationf("amount must be > 0")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return InitiateResult{}, validationf("userId is required")
	}
	if strings.TrimSpace(req.MobileNumber) == "" {
		return InitiateResult{}, validationf("mobileNumber is required")
	}

	txnID := NewTransactionID()

	payload := payRequest{
		MerchantID:            c.merchantID,
		MerchantTransactionID: txnID,
		MerchantUserID:        req.UserID,
		Amount:                MinorUnits(req.Amount),
		RedirectURL:           c.hostURL + "/payment/redirect/" + txnID,
		RedirectMode:          "POST",
		CallbackURL:           c.hostURL + "/api/webhook",
		MobileNumber:          req.MobileNumber,
		PaymentInstrument:     paymentInstrument{Type: "PAY_PAGE"},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return InitiateResult{}, fmt.Errorf("encode pay request: %w", err)
	}
	b64 := base64.StdEncoding.EncodeToString(raw)
	checksum := c.signer.Sign(c.signer.paySigningString(b64))

	body, err := json.Marshal(map[string]string{"request": b64})
	if err != nil {
		return InitiateResult{}, fmt.Errorf("encode pay body: %w", err)
	}

	slog.Debug("initiating payment", "txn_id", txnID, "amount_minor", payload.Amount)

	status, data, err := c.doRequest(ctx, http.MethodPost, payPath, body, map[string]string{
		"X-VERIFY": checksum,
	})
	if err != nil {
		return InitiateResult{}, err
	}

	env, ok := decodeEnvelope(data)
	if !ok || status < 200 || status >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "payment initiation failed"
		}
		return InitiateResult{}, gatewayf("%s", msg)
	}

	url := ""
	if env.Data.InstrumentResponse != nil && env.Data.InstrumentResponse.RedirectInfo != nil {
		url = env.Data.InstrumentResponse.RedirectInfo.URL
	}
	if url == "" {
		return InitiateResult{}, gatewayf("gateway response missing redirect url")
	}

	return InitiateResult{RedirectURL: url, TransactionID: txnID}, nil
}
