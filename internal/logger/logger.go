package logger

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON in prod, human-readable text
// elsewhere. Salt keys and checksums must never be passed as attributes.
func New(env string) *slog.Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h).With("service", "payment-gateway")
}
