// Package risk implements rule-based risk scoring for UPI payee identifiers.
//
// A scan is evaluated by a pipeline of independent signal evaluators: one over
// the identifier string alone (blacklist, keywords, patterns, format
// heuristics) and four over the caller-supplied scan history (familiarity,
// amount anomaly, timing, prior flags). Their deltas are summed, clamped to
// [0, 100], and classified into four levels. Trusted merchants short-circuit
// the whole pipeline to a safe verdict.
//
// Evaluation is pure computation over the inputs and the immutable reference
// data snapshot; it is safe to call concurrently.
package risk

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidInput = errors.New("risk: invalid input")

// Level classifies a final score.
type Level string

const (
	LevelSafe    Level = "safe"
	LevelCaution Level = "caution"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Classification thresholds. Score >= DangerThreshold is danger, and so on
// down; anything below CautionThreshold is safe.
const (
	DangerThreshold  = 60
	WarningThreshold = 40
	CautionThreshold = 20
)

// Outcome tags a recorded scan with how it was classified at the time.
type Outcome string

const (
	OutcomeSafe    Outcome = "safe"
	OutcomeWarning Outcome = "warning"
	OutcomeRisky   Outcome = "risky"
)

// HistoricalTransaction is one prior observation supplied by the caller.
// Entries may arrive in any order; evaluators sort or filter as needed.
// UserID attributes the scan to whoever performed it, so rate signals can
// tell the requesting user's activity apart from other users' scans of the
// same payee.
type HistoricalTransaction struct {
	UserID          string   `json:"userId,omitempty"`
	Identifier      string   `json:"identifier"`
	Amount          *float64 `json:"amount,omitempty"`
	TimestampMillis int64    `json:"timestamp"`
	Outcome         Outcome  `json:"outcome"`
}

// Input carries everything the engine needs to score one candidate scan.
type Input struct {
	UserID          string                  `json:"userId,omitempty"`
	Identifier      string                  `json:"identifier"`
	Amount          *float64                `json:"amount,omitempty"`
	TimestampMillis int64                   `json:"timestamp,omitempty"` // 0 means now
	History         []HistoricalTransaction `json:"history,omitempty"`
}

// Signal is one evaluator's contribution: a score delta and the reasons
// behind it. Deltas are unbounded here; the aggregator applies the final
// clamp. FraudType is set only by the blacklist check.
type Signal struct {
	Delta     int
	Reasons   []string
	FraudType string
}

// Verdict is the aggregated, classified result of one evaluation.
type Verdict struct {
	ID             string    `json:"id"`
	Identifier     string    `json:"identifier"`
	Score          int       `json:"score"`
	Level          Level     `json:"level"`
	Reasons        []string  `json:"reasons"`
	FraudType      string    `json:"fraudType,omitempty"`
	Confidence     int       `json:"confidence"`
	Recommendation string    `json:"recommendation"`
	EvaluatedAt    time.Time `json:"evaluatedAt"`
}

// Risky reports whether the verdict crosses the caution/act boundary.
func (v *Verdict) Risky() bool {
	return v.Score >= WarningThreshold
}

// Outcome maps the verdict level to the tag recorded in scan history.
func (v *Verdict) Outcome() Outcome {
	switch v.Level {
	case LevelDanger:
		return OutcomeRisky
	case LevelWarning, LevelCaution:
		return OutcomeWarning
	default:
		return OutcomeSafe
	}
}

// Store persists verdicts for the audit trail.
type Store interface {
	Record(ctx context.Context, v *Verdict) error
	ListByIdentifier(ctx context.Context, identifier string, limit int, opts ...ListOption) ([]*Verdict, error)
	CountByLevel(ctx context.Context) (map[Level]int, error)
}
