package outcome

import "context"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Terminal reports whether a status can never change again.
func (s Status) Terminal() bool { return s == StatusSuccess || s == StatusFailed }

// Outcome is one observation of a transaction's state, produced either by
// the poll path or the webhook path.
type Outcome struct {
	TransactionID string `json:"transactionId"`
	Status        Status `json:"status"`
	Message       string `json:"message,omitempty"`
}

// Merge applies the monotonic rule shared by both producers: once terminal,
// an outcome never regresses to PENDING or flips between SUCCESS and
// FAILED; whichever terminal value was observed first stays authoritative.
// Applying the same terminal outcome twice is a no-op, so the race between
// poll and webhook needs no locking beyond the store's own.
func Merge(old, next Outcome) Outcome {
	if old.Status.Terminal() {
		return old
	}
	return next
}

// Store keeps the merged per-transaction view. Implementations must apply
// Merge atomically with respect to concurrent writers for the same id.
type Store interface {
	// Apply merges obs into the stored state and returns the merged view.
	Apply(ctx context.Context, obs Outcome) (Outcome, error)
	// Get returns the stored view; ok is false if the id was never seen.
	Get(ctx context.Context, transactionID string) (Outcome, bool, error)
}
