package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shopmate/payment-gateway/internal/config"
	"github.com/shopmate/payment-gateway/internal/outcome"
	"github.com/shopmate/payment-gateway/internal/phonepe"
	"github.com/shopmate/payment-gateway/internal/worker"
)

const (
	testSaltKey  = "test-salt-key"
	testMerchant = "M1TEST"
)

// recordingStore wraps a MemoryStore and remembers every Apply, so tests
// can assert on side-effect absence as well as presence.
type recordingStore struct {
	mu      sync.Mutex
	inner   *outcome.MemoryStore
	applied []outcome.Outcome
}

func newRecordingStore() *recordingStore {
	return &recordingStore{inner: outcome.NewMemoryStore()}
}

func (s *recordingStore) Apply(ctx context.Context, obs outcome.Outcome) (outcome.Outcome, error) {
	s.mu.Lock()
	s.applied = append(s.applied, obs)
	s.mu.Unlock()
	return s.inner.Apply(ctx, obs)
}

func (s *recordingStore) Get(ctx context.Context, id string) (outcome.Outcome, bool, error) {
	return s.inner.Get(ctx, id)
}

func (s *recordingStore) appliedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
}

// stubGateway answers /pg/v1/pay with a fixed redirect and /pg/v1/status
// with whatever body the test installs.
type stubGateway struct {
	srv        *httptest.Server
	statusBody func() string
}

func newStubGateway(t *testing.T) *stubGateway {
	t.Helper()
	g := &stubGateway{
		statusBody: func() string { return `{"success":true,"code":"PAYMENT_PENDING"}` },
	}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/pg/v1/pay":
			var body struct {
				Request string `json:"request"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			raw, _ := base64.StdEncoding.DecodeString(body.Request)
			var pay struct {
				MerchantTransactionID string `json:"merchantTransactionId"`
			}
			_ = json.Unmarshal(raw, &pay)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"code":    "PAYMENT_INITIATED",
				"data": map[string]any{
					"merchantTransactionId": pay.MerchantTransactionID,
					"instrumentResponse": map[string]any{
						"redirectInfo": map[string]any{"url": "https://pay.example.com/page"},
					},
				},
			})
		default:
			_, _ = w.Write([]byte(g.statusBody()))
		}
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func newTestService(t *testing.T, gwURL string, store outcome.Store) (*PaymentService, *worker.Pool) {
	t.Helper()
	cfg := config.Config{
		MerchantID:     testMerchant,
		SaltKey:        testSaltKey,
		SaltIndex:      1,
		GatewayBaseURL: gwURL,
		HostURL:        "https://shop.example.com",
		CallTimeout:    2 * time.Second,
	}
	gw, err := phonepe.New(cfg, nil)
	require.NoError(t, err)
	wp := worker.NewPool(1)
	return NewPaymentService(gw, store, wp), wp
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func signedBlob(t *testing.T, note map[string]any) (signature, blob string) {
	t.Helper()
	raw, err := json.Marshal(note)
	require.NoError(t, err)
	blob = base64.StdEncoding.EncodeToString(raw)
	signature = phonepe.NewSigner(testSaltKey, 1).Sign(blob + testSaltKey)
	return signature, blob
}

func TestInitiateSeedsPendingOutcome(t *testing.T) {
	gw := newStubGateway(t)
	store := newRecordingStore()
	svc, wp := newTestService(t, gw.srv.URL, store)
	defer wp.Stop()

	res, err := svc.Initiate(context.Background(), mustDecimal(t, "250.00"), "u1", "9999999999")
	require.NoError(t, err)
	require.Equal(t, "https://pay.example.com/page", res.RedirectURL)

	got, ok, err := store.Get(context.Background(), res.TransactionID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, outcome.StatusPending, got.Status)
}

// The core regression property: a webhook-confirmed SUCCESS must survive a
// later poll that still reports PENDING.
func TestWebhookSuccessThenPendingPollDoesNotRegress(t *testing.T) {
	gw := newStubGateway(t)
	store := newRecordingStore()
	svc, wp := newTestService(t, gw.srv.URL, store)

	sig, blob := signedBlob(t, map[string]any{
		"success": true,
		"code":    "PAYMENT_SUCCESS",
		"data":    map[string]any{"merchantTransactionId": "TXN_42_7"},
	})
	_, err := svc.Webhook(context.Background(), sig, blob)
	require.NoError(t, err)

	// drain the async outcome application before polling
	wp.Stop()

	out, err := svc.Status(context.Background(), "TXN_42_7")
	require.NoError(t, err)
	require.Equal(t, outcome.StatusSuccess, out.Status)
}

func TestWebhookTamperedBodyLeavesStoreUntouched(t *testing.T) {
	gw := newStubGateway(t)
	store := newRecordingStore()
	svc, wp := newTestService(t, gw.srv.URL, store)

	_, blob := signedBlob(t, map[string]any{
		"success": true,
		"code":    "PAYMENT_SUCCESS",
		"data":    map[string]any{"merchantTransactionId": "TXN_42_7"},
	})
	sigOfOther, _ := signedBlob(t, map[string]any{"success": true, "code": "PAYMENT_SUCCESS"})

	_, err := svc.Webhook(context.Background(), sigOfOther, blob)
	require.ErrorIs(t, err, phonepe.ErrSignatureMismatch)

	wp.Stop()
	require.Zero(t, store.appliedCount())
}

func TestWebhookVerifiedButUndecodableBlobIsAcceptedWithoutOutcome(t *testing.T) {
	gw := newStubGateway(t)
	store := newRecordingStore()
	svc, wp := newTestService(t, gw.srv.URL, store)

	blob := "!!not-base64!!"
	sig := phonepe.NewSigner(testSaltKey, 1).Sign(blob + testSaltKey)

	res, err := svc.Webhook(context.Background(), sig, blob)
	require.NoError(t, err)
	require.False(t, res.Decoded)

	wp.Stop()
	require.Zero(t, store.appliedCount())
}

func TestWebhookNonSuccessCodeIsAcceptedWithoutOutcome(t *testing.T) {
	gw := newStubGateway(t)
	store := newRecordingStore()
	svc, wp := newTestService(t, gw.srv.URL, store)

	sig, blob := signedBlob(t, map[string]any{
		"success": false,
		"code":    "PAYMENT_ERROR",
		"data":    map[string]any{"merchantTransactionId": "TXN_42_7"},
	})
	_, err := svc.Webhook(context.Background(), sig, blob)
	require.NoError(t, err)

	wp.Stop()
	require.Zero(t, store.appliedCount())

	// no FAILED was asserted: the id is simply unknown to the store
	_, ok, err := store.Get(context.Background(), "TXN_42_7")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStatusMergesIntoStore(t *testing.T) {
	gw := newStubGateway(t)
	gw.statusBody = func() string {
		return `{"success":true,"code":"PAYMENT_SUCCESS","message":"done"}`
	}
	store := newRecordingStore()
	svc, wp := newTestService(t, gw.srv.URL, store)
	defer wp.Stop()

	out, err := svc.Status(context.Background(), "TXN_42_7")
	require.NoError(t, err)
	require.Equal(t, outcome.StatusSuccess, out.Status)

	got, ok, err := store.Get(context.Background(), "TXN_42_7")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, outcome.StatusSuccess, got.Status)
}
