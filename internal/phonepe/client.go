package phonepe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/shopmate/payment-gateway/internal/config"
)

const (
	sandboxBaseURL    = "https://api-preprod.phonepe.com/apis/pg-sandbox"
	productionBaseURL = "https://api.phonepe.com/apis/hermes"
)

// Client talks to the PhonePe payment gateway. It is stateless across
// transactions; the only shared pieces are the immutable config, the signer
// and the circuit breaker around the outbound call.
type Client struct {
	merchantID  string
	hostURL     string
	baseURL     string
	signer      Signer
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	callTimeout time.Duration
}

// New builds a gateway client from config. Missing credentials are a fatal
// configuration error, surfaced here rather than on the first signed call.
func New(cfg config.Config, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errConfiguration(err)
	}

	baseURL := sandboxBaseURL
	if cfg.GatewayEnv == "production" {
		baseURL = productionBaseURL
	}
	if cfg.GatewayBaseURL != "" {
		baseURL = strings.TrimSuffix(cfg.GatewayBaseURL, "/")
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "phonepe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		merchantID:  cfg.MerchantID,
		hostURL:     strings.TrimSuffix(cfg.HostURL, "/"),
		baseURL:     baseURL,
		signer:      NewSigner(cfg.SaltKey, cfg.SaltIndex),
		httpClient:  httpClient,
		breaker:     cb,
		callTimeout: timeout,
	}, nil
}

func errConfiguration(err error) error {
	return fmt.Errorf("%w: %v", ErrConfiguration, err)
}

// doRequest issues one bounded outbound call through the breaker. Transport
// failures, timeouts and an open breaker all come back as ErrNetwork; the
// body is returned for any HTTP status so callers can decode gateway-level
// failures themselves.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, networkf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	type result struct {
		status int
		data   []byte
	}
	res, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		return result{status: resp.StatusCode, data: data}, nil
	})
	if err != nil {
		return 0, nil, networkf("%v", err)
	}

	r := res.(result)
	return r.status, r.data, nil
}

func decodeEnvelope(data []byte) (gatewayResponse, bool) {
	var env gatewayResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return gatewayResponse{}, false
	}
	return env, true
}
