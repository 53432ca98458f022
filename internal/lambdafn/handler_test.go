package lambdafn

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"github.com/shopmate/payment-gateway/internal/config"
	"github.com/shopmate/payment-gateway/internal/outcome"
	"github.com/shopmate/payment-gateway/internal/phonepe"
	"github.com/shopmate/payment-gateway/internal/services"
	"github.com/shopmate/payment-gateway/internal/worker"
)

const testSaltKey = "test-salt-key"

func newTestHandler(t *testing.T, gatewayBody string) *Handler {
	t.Helper()

	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(gatewayBody))
	}))
	t.Cleanup(gw.Close)

	cfg := config.Config{
		MerchantID:     "M1TEST",
		SaltKey:        testSaltKey,
		SaltIndex:      1,
		GatewayBaseURL: gw.URL,
		HostURL:        "https://shop.example.com",
		CallTimeout:    2 * time.Second,
	}
	client, err := phonepe.New(cfg, nil)
	require.NoError(t, err)

	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	return New(services.NewPaymentService(client, outcome.NewMemoryStore(), wp))
}

func TestHandleRoutes(t *testing.T) {
	h := newTestHandler(t, `{"success":true,"code":"PAYMENT_SUCCESS"}`)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/api/status",
		QueryStringParameters: map[string]string{
			"transactionId": "TXN_1_1",
		},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	require.Equal(t, "SUCCESS", body.Status)
}

func TestHandleUnknownRoute(t *testing.T) {
	h := newTestHandler(t, `{}`)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/nope",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleInitiate(t *testing.T) {
	body := `{"success":true,"code":"PAYMENT_INITIATED","data":{"instrumentResponse":{"redirectInfo":{"url":"https://pay.example.com/page"}}}}`
	h := newTestHandler(t, body)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/initiate",
		Body:       `{"amount":49.99,"userId":"u1","mobileNumber":"9999999999"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success       bool   `json:"success"`
		URL           string `json:"url"`
		TransactionID string `json:"transactionId"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	require.True(t, out.Success)
	require.NotEmpty(t, out.URL)
	require.NotEmpty(t, out.TransactionID)
}

func TestHandleWebhookLowercasedHeader(t *testing.T) {
	h := newTestHandler(t, `{}`)

	raw, _ := json.Marshal(map[string]any{
		"success": true,
		"code":    "PAYMENT_SUCCESS",
		"data":    map[string]any{"merchantTransactionId": "TXN_1_1"},
	})
	blob := base64.StdEncoding.EncodeToString(raw)
	sig := phonepe.NewSigner(testSaltKey, 1).Sign(blob + testSaltKey)
	body, _ := json.Marshal(map[string]string{"response": blob})

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/webhook",
		Headers:    map[string]string{"x-verify": sig},
		Body:       string(body),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleWebhookSignatureMismatch(t *testing.T) {
	h := newTestHandler(t, `{}`)

	raw, _ := json.Marshal(map[string]any{"success": true, "code": "PAYMENT_SUCCESS"})
	blob := base64.StdEncoding.EncodeToString(raw)
	body, _ := json.Marshal(map[string]string{"response": blob})

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/webhook",
		Headers:    map[string]string{"X-VERIFY": "deadbeef###1"},
		Body:       string(body),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
