package phonepe

import (
	"errors"
	"fmt"
)

// Error kinds the HTTP layer maps onto status codes. Every failure leaving
// this package wraps exactly one of these sentinels, so callers can switch
// on errors.Is instead of string-matching.
var (
	ErrConfiguration     = errors.New("gateway configuration error")
	ErrValidation        = errors.New("validation error")
	ErrNetwork           = errors.New("gateway unreachable")
	ErrGateway           = errors.New("gateway rejected request")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func networkf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNetwork, fmt.Sprintf(format, args...))
}

// gatewayf carries the gateway's own message back to the caller. The salt
// key is never part of these messages.
func gatewayf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrGateway, fmt.Sprintf(format, args...))
}
