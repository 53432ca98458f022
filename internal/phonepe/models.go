package phonepe

import "github.com/shopspring/decimal"

// PaymentRequest is what the collaborator hands us: a major-unit amount and
// the payer's identifiers. Never a binary float; decimal all the way to the
// minor-unit conversion.
type PaymentRequest struct {
	Amount       decimal.Decimal
	UserID       string
	MobileNumber string
}

// InitiateResult is returned on a successful initiation.
type InitiateResult struct {
	RedirectURL   string
	TransactionID string
}

// payRequest is the wire shape POSTed (base64-encoded) to /pg/v1/pay.
type payRequest struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"` // minor units
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	MobileNumber          string            `json:"mobileNumber"`
	PaymentInstrument     paymentInstrument `json:"paymentInstrument"`
}

type paymentInstrument struct {
	Type string `json:"type"`
}

// gatewayResponse covers the envelopes of the pay and status endpoints; the
// nested data block carries whichever fields the operation returns.
type gatewayResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Data    responseData `json:"data"`
}

type responseData struct {
	MerchantTransactionID string              `json:"merchantTransactionId"`
	InstrumentResponse    *instrumentResponse `json:"instrumentResponse,omitempty"`
}

type instrumentResponse struct {
	Type         string        `json:"type"`
	RedirectInfo *redirectInfo `json:"redirectInfo,omitempty"`
}

type redirectInfo struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

// webhookNotification is the decoded body blob of a callback push.
type webhookNotification struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		TransactionID         string `json:"transactionId"`
		Amount                int64  `json:"amount"`
		State                 string `json:"state"`
	} `json:"data"`
}

// Gateway response codes this layer interprets. Anything outside this set
// maps to FAILED on the poll path and is ignored on the webhook path.
const (
	codePaymentSuccess = "PAYMENT_SUCCESS"
	codePaymentPending = "PAYMENT_PENDING"
)

// MinorUnits converts a major-unit amount to integer minor units,
// round-half-up on the boundary (0.005 becomes 1 paisa, never 0).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
