package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glorin2500/Sentinel-sub000/internal/idgen"
	"github.com/glorin2500/Sentinel-sub000/internal/logging"
	"github.com/glorin2500/Sentinel-sub000/internal/metrics"
	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
	"github.com/glorin2500/Sentinel-sub000/internal/traces"
)

// Confidence parameters. Confidence grows with the number of contributing
// reasons and never claims certainty.
const (
	confidenceBase    = 50
	confidencePerHit  = 10
	confidenceCeiling = 95
)

const trustedReason = "Verified trusted merchant"

const fallbackReason = "No specific threats detected"

// RefProvider supplies the active reference data snapshot. Evaluation reads
// it exactly once per call, so a concurrent reload never tears a verdict.
type RefProvider interface {
	Current() *refdata.Set
}

// Engine runs the risk evaluation pipeline.
type Engine struct {
	ref   RefProvider
	store Store // nil disables the audit trail
}

// NewEngine creates an engine over the given reference data. The audit store
// may be nil.
func NewEngine(ref RefProvider, store Store) *Engine {
	return &Engine{ref: ref, store: store}
}

// Evaluate scores one candidate scan and returns the verdict.
//
// It returns an error only for caller bugs (empty identifier, malformed
// history entries). Suspicious input is never an error; it shows up in the
// score and reasons.
func (e *Engine) Evaluate(ctx context.Context, in *Input) (*Verdict, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ctx, span := traces.StartSpan(ctx, "risk.Evaluate",
		traces.Identifier(in.Identifier))
	defer span.End()
	timer := prometheus.NewTimer(metrics.ScanDuration)
	defer timer.ObserveDuration()

	ref := e.ref.Current()
	identifier := strings.TrimSpace(in.Identifier)

	// Trusted merchants bypass every other signal.
	if ref.IsTrusted(identifier) {
		metrics.TrustedOverridesTotal.Inc()
		v := e.finish(ctx, &Verdict{
			Identifier: identifier,
			Score:      0,
			Level:      LevelSafe,
			Reasons:    []string{trustedReason},
			Confidence: confidenceCeiling,
		})
		span.SetAttributes(traces.VerdictID(v.ID))
		return v, nil
	}

	ts := in.TimestampMillis
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	signals := []Signal{
		evaluatePattern(identifier, ref),
		evaluateFamiliarity(identifier, in.History),
		evaluateAmount(identifier, in.Amount, in.History),
		evaluateTiming(ts, in.UserID, in.History),
		evaluateCarryover(identifier, in.History),
	}

	v := e.finish(ctx, aggregate(identifier, signals))
	span.SetAttributes(traces.RiskScore(v.Score), traces.RiskLevel(string(v.Level)),
		traces.VerdictID(v.ID))
	return v, nil
}

// aggregate sums signal deltas, clamps to [0, 100], classifies, and fills in
// confidence and recommendation. Reasons keep evaluation order; duplicates
// from different evaluators are expected and preserved.
func aggregate(identifier string, signals []Signal) *Verdict {
	total := 0
	var reasons []string
	fraudType := ""
	for _, sig := range signals {
		total += sig.Delta
		reasons = append(reasons, sig.Reasons...)
		if fraudType == "" && sig.FraudType != "" {
			fraudType = sig.FraudType
		}
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	confidence := confidenceBase + confidencePerHit*len(reasons)
	if confidence > confidenceCeiling {
		confidence = confidenceCeiling
	}

	// The fallback reason belongs to the aggregator, never to an individual
	// evaluator: any evaluator staying silent must not mask another's reasons.
	if len(reasons) == 0 {
		reasons = []string{fallbackReason}
	}

	return &Verdict{
		Identifier: identifier,
		Score:      total,
		Level:      Classify(total),
		Reasons:    reasons,
		FraudType:  fraudType,
		Confidence: confidence,
	}
}

// Classify maps a clamped score to the four-level scheme.
func Classify(score int) Level {
	switch {
	case score >= DangerThreshold:
		return LevelDanger
	case score >= WarningThreshold:
		return LevelWarning
	case score >= CautionThreshold:
		return LevelCaution
	default:
		return LevelSafe
	}
}

// finish stamps identity fields and records the verdict asynchronously.
// The audit trail is best-effort; a store failure never fails a scan.
func (e *Engine) finish(ctx context.Context, v *Verdict) *Verdict {
	v.ID = idgen.WithPrefix("scan_")
	v.Recommendation = Recommend(v.Level)
	v.EvaluatedAt = time.Now()

	if e.store != nil {
		stored := *v
		// Detach from the request context so cancellation after the response
		// doesn't abort the write; keep the request's logger for correlation.
		logger := logging.L(ctx)
		go func() {
			if err := e.store.Record(context.Background(), &stored); err != nil {
				logger.Error("failed to record verdict",
					"verdict_id", stored.ID, "identifier", stored.Identifier, "error", err)
			}
		}()
	}
	return v
}

func validateInput(in *Input) error {
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Identifier) == "" {
		return fmt.Errorf("%w: identifier is required", ErrInvalidInput)
	}
	for i, tx := range in.History {
		if strings.TrimSpace(tx.Identifier) == "" {
			return fmt.Errorf("%w: history[%d] missing identifier", ErrInvalidInput, i)
		}
		if tx.TimestampMillis <= 0 {
			return fmt.Errorf("%w: history[%d] missing timestamp", ErrInvalidInput, i)
		}
	}
	return nil
}
