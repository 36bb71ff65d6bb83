// Package history records scans so later evaluations can reason about
// familiarity, amount baselines, and scan bursts.
//
// The risk engine never reads this store itself; the scan handler loads a
// snapshot and passes it in.
package history

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrInvalidTransaction = errors.New("history: invalid transaction")

// Transaction is one recorded scan.
type Transaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId,omitempty"`
	Identifier      string    `json:"identifier"`
	Amount          *float64  `json:"amount,omitempty"`
	TimestampMillis int64     `json:"timestamp"`
	Outcome         string    `json:"outcome"` // safe | warning | risky
	CreatedAt       time.Time `json:"createdAt"`
}

// Validate checks required fields before a transaction is stored.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Identifier) == "" {
		return errors.Join(ErrInvalidTransaction, errors.New("identifier is required"))
	}
	if t.TimestampMillis <= 0 {
		return errors.Join(ErrInvalidTransaction, errors.New("timestamp is required"))
	}
	switch t.Outcome {
	case "safe", "warning", "risky":
	default:
		return errors.Join(ErrInvalidTransaction, errors.New("unknown outcome"))
	}
	return nil
}

// Store persists scan history.
//
// ListForScan returns the union of the user's prior scans (any payee) and all
// prior scans of the payee, newest first: exactly the context the evaluators
// need for familiarity, amount baselines, and burst detection. Either filter
// may be empty.
type Store interface {
	Record(ctx context.Context, tx *Transaction) error
	ListForScan(ctx context.Context, userID, identifier string, limit int) ([]Transaction, error)
	Count(ctx context.Context) (int, error)
}
