package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	HostURL  string

	MerchantID     string
	SaltKey        string
	SaltIndex      int
	GatewayEnv     string // "sandbox" | "production"
	GatewayBaseURL string // overrides the env-derived base URL when set
	CallTimeout    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateRPS int
}

// ErrMissingCredentials is fatal: requests must never be signed with an
// empty merchant id or salt key.
var ErrMissingCredentials = errors.New("config: PHONEPE_MERCHANT_ID and PHONEPE_SALT_KEY must be set")

func Load() Config {
	cfg := Config{
		Env:            get("APP_ENV", "dev"),
		HTTPPort:       get("HTTP_PORT", "8080"),
		HostURL:        get("APP_HOST_URL", "http://localhost:8080"),
		MerchantID:     get("PHONEPE_MERCHANT_ID", ""),
		SaltKey:        get("PHONEPE_SALT_KEY", ""),
		SaltIndex:      getInt("PHONEPE_SALT_INDEX", 1),
		GatewayEnv:     get("PHONEPE_ENV", "sandbox"),
		GatewayBaseURL: get("PHONEPE_BASE_URL", ""),
		CallTimeout:    getDuration("GATEWAY_CALL_TIMEOUT", 15*time.Second),
		RedisAddr:      get("REDIS_ADDR", ""),
		RedisPassword:  get("REDIS_PASSWORD", ""),
		RedisDB:        getInt("REDIS_DB", 0),
		RateRPS:        getInt("RATE_RPS", 100),
	}
	return cfg
}

func (c Config) Validate() error {
	if c.MerchantID == "" || c.SaltKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

func get(key, def string) string { v := os.Getenv(key); if v == "" { return def }; return v }

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil { return n }
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 { return d }
	}
	return def
}
