package lambdafn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"

	"github.com/shopmate/payment-gateway/internal/phonepe"
	"github.com/shopmate/payment-gateway/internal/services"
)

// Handler adapts API Gateway proxy events onto the same payment core the
// chi router uses. It only translates shapes; no signing or mapping logic
// lives here.
type Handler struct {
	svc *services.PaymentService
}

func New(svc *services.PaymentService) *Handler {
	return &Handler{svc: svc}
}

// Handle dispatches on method+path, mirroring the HTTP routes.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch {
	case req.HTTPMethod == http.MethodPost && req.Path == "/api/initiate":
		return h.initiate(ctx, req)
	case req.HTTPMethod == http.MethodGet && req.Path == "/api/status":
		return h.status(ctx, req)
	case req.HTTPMethod == http.MethodPost && req.Path == "/api/webhook":
		return h.webhook(ctx, req)
	default:
		return respondError(http.StatusNotFound, "not_found", "no such route"), nil
	}
}

func (h *Handler) initiate(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var body struct {
		Amount       decimal.Decimal `json:"amount"`
		UserID       string          `json:"userId"`
		MobileNumber string          `json:"mobileNumber"`
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return respondError(http.StatusBadRequest, "bad_request", "invalid request body"), nil
	}

	res, err := h.svc.Initiate(ctx, body.Amount, body.UserID, body.MobileNumber)
	if err != nil {
		return mapError(err), nil
	}
	return respond(http.StatusOK, map[string]any{
		"success":       true,
		"url":           res.RedirectURL,
		"transactionId": res.TransactionID,
	}), nil
}

func (h *Handler) status(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	txnID := req.QueryStringParameters["transactionId"]
	if txnID == "" {
		return respondError(http.StatusBadRequest, "validation_error", "transactionId required"), nil
	}

	out, err := h.svc.Status(ctx, txnID)
	if err != nil {
		return mapError(err), nil
	}
	return respond(http.StatusOK, map[string]any{
		"status":        out.Status,
		"transactionId": out.TransactionID,
		"message":       out.Message,
	}), nil
}

func (h *Handler) webhook(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	signature := req.Headers["X-VERIFY"]
	if signature == "" {
		signature = req.Headers["x-verify"] // API Gateway lowercases headers
	}

	var body struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return respondError(http.StatusBadRequest, "bad_request", "invalid request body"), nil
	}

	if _, err := h.svc.Webhook(ctx, signature, body.Response); err != nil {
		return mapError(err), nil
	}
	return respond(http.StatusOK, map[string]string{"status": "OK"}), nil
}

func mapError(err error) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, phonepe.ErrValidation):
		return respondError(http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, phonepe.ErrSignatureMismatch):
		return respondError(http.StatusForbidden, "signature_mismatch", "signature verification failed")
	case errors.Is(err, phonepe.ErrNetwork):
		return respondError(http.StatusBadGateway, "network_error", "payment gateway unreachable")
	case errors.Is(err, phonepe.ErrGateway):
		return respondError(http.StatusBadGateway, "gateway_error", err.Error())
	default:
		return respondError(http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func respond(status int, v any) events.APIGatewayProxyResponse {
	data, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

func respondError(status int, code, msg string) events.APIGatewayProxyResponse {
	return respond(status, map[string]any{"success": false, "code": code, "error": msg})
}
