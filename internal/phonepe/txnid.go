package phonepe

import (
	"fmt"
	"math/rand"
	"time"
)

// NewTransactionID returns a merchant-side id of the form
// TXN_<unixMillis>_<0-999>. Uniqueness is best-effort: two calls inside the
// same millisecond can collide on the random suffix (~0.1% per pair).
// Callers that need a hard guarantee must enforce one at the persistence
// layer; this service does not.
func NewTransactionID() string {
	return fmt.Sprintf("TXN_%d_%d", time.Now().UnixMilli(), rand.Intn(1000))
}
