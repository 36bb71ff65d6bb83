package risk

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Historical evaluator tuning.
const (
	firstScanPenalty    = 15
	fewScansPenalty     = 8
	familiarBonus       = -10 // >=10 prior scans, none risky
	familiarMinScans    = 10
	sigma3Penalty       = 20
	sigma2Penalty       = 10
	minAmountSamples    = 5
	veryLargeAmount     = 50000
	largeAmount         = 10000
	veryLargePenalty    = 20
	largePenalty        = 10
	roundAmountPenalty  = 5
	roundAmountFloor    = 5000
	unusualHourPenalty  = 8 // hour of day in [0, 6)
	burstPenalty        = 12
	pairPenalty         = 6
	burstWindow         = 60 * time.Second
	priorRiskyPenalty   = 25
	safeHistoryBonus    = -15
	safeHistoryMinScans = 5
)

// evaluateFamiliarity scores how well the payee is known from prior scans of
// the same identifier. This is the only evaluator besides the safe-history
// carryover allowed to return a negative delta.
func evaluateFamiliarity(identifier string, history []HistoricalTransaction) Signal {
	var sig Signal
	prior := sameIdentifier(identifier, history)

	switch {
	case len(prior) == 0:
		sig.Delta += firstScanPenalty
		sig.Reasons = append(sig.Reasons, "First time scanning this merchant")
	case len(prior) <= 2:
		sig.Delta += fewScansPenalty
		sig.Reasons = append(sig.Reasons, "Only scanned this merchant once or twice before")
	case len(prior) >= familiarMinScans && riskyCount(prior) == 0:
		sig.Delta += familiarBonus
		sig.Reasons = append(sig.Reasons,
			fmt.Sprintf("Trusted merchant (%d previous scans)", len(prior)))
	}
	return sig
}

// evaluateAmount scores the proposed amount against same-identifier history
// and the flat absolute thresholds. All rules are additive.
func evaluateAmount(identifier string, amount *float64, history []HistoricalTransaction) Signal {
	var sig Signal
	if amount == nil {
		return sig
	}
	a := *amount

	// Statistical anomaly needs enough history and a non-degenerate spread.
	var amounts []float64
	for _, tx := range sameIdentifier(identifier, history) {
		if tx.Amount != nil {
			amounts = append(amounts, *tx.Amount)
		}
	}
	if len(amounts) >= minAmountSamples {
		mean, sigma := meanStddev(amounts)
		if sigma > 0 && mean > 0 {
			switch {
			case a > mean+3*sigma:
				sig.Delta += sigma3Penalty
				sig.Reasons = append(sig.Reasons,
					fmt.Sprintf("Amount is %.1fx your average of %.2f for this payee", a/mean, mean))
			case a > mean+2*sigma:
				sig.Delta += sigma2Penalty
				sig.Reasons = append(sig.Reasons,
					fmt.Sprintf("Amount is well above your average of %.2f for this payee", mean))
			}
		}
	}

	// Flat thresholds apply with or without history.
	if a > veryLargeAmount {
		sig.Delta += veryLargePenalty
		sig.Reasons = append(sig.Reasons, "Very large transaction amount")
	} else if a > largeAmount {
		sig.Delta += largePenalty
		sig.Reasons = append(sig.Reasons, "Large transaction amount")
	}

	if a > roundAmountFloor && math.Mod(a, 1000) == 0 {
		sig.Delta += roundAmountPenalty
		sig.Reasons = append(sig.Reasons, "Exact round number, a common scam pattern")
	}

	return sig
}

// evaluateTiming scores the transaction's hour of day and the scan rate in
// the preceding minute. The burst check counts the requesting user's own
// prior scans to any identifier; other users' scans of a popular payee must
// not look like one person scanning in a hurry. Hours are taken in UTC so
// verdicts don't depend on server locale.
func evaluateTiming(tsMillis int64, userID string, history []HistoricalTransaction) Signal {
	var sig Signal
	now := time.UnixMilli(tsMillis).UTC()

	if hour := now.Hour(); hour < 6 {
		sig.Delta += unusualHourPenalty
		sig.Reasons = append(sig.Reasons, "Unusual time (midnight to 6 AM)")
	}

	recent := 0
	for _, tx := range history {
		if tx.UserID != userID {
			continue
		}
		t := time.UnixMilli(tx.TimestampMillis).UTC()
		if t.Before(now) && now.Sub(t) <= burstWindow {
			recent++
		}
	}
	switch {
	case recent >= 3:
		sig.Delta += burstPenalty
		sig.Reasons = append(sig.Reasons, "Multiple scans in quick succession")
	case recent == 2:
		sig.Delta += pairPenalty
		sig.Reasons = append(sig.Reasons, "Repeated scans within a minute")
	}
	return sig
}

// evaluateCarryover scores prior outcomes for this identifier: previous risky
// verdicts weigh heavily, a long clean record earns a bonus.
func evaluateCarryover(identifier string, history []HistoricalTransaction) Signal {
	var sig Signal
	prior := sameIdentifier(identifier, history)
	risky := riskyCount(prior)

	if risky > 0 {
		sig.Delta += priorRiskyPenalty
		sig.Reasons = append(sig.Reasons,
			fmt.Sprintf("Previously flagged as risky (%d times)", risky))
	}
	if len(prior) >= safeHistoryMinScans && risky == 0 {
		sig.Delta += safeHistoryBonus
		sig.Reasons = append(sig.Reasons, "Consistent safe history")
	}
	return sig
}

func sameIdentifier(identifier string, history []HistoricalTransaction) []HistoricalTransaction {
	var out []HistoricalTransaction
	for _, tx := range history {
		if strings.EqualFold(tx.Identifier, identifier) {
			out = append(out, tx)
		}
	}
	return out
}

func riskyCount(txs []HistoricalTransaction) int {
	n := 0
	for _, tx := range txs {
		if tx.Outcome == OutcomeRisky {
			n++
		}
	}
	return n
}

// meanStddev returns the mean and population standard deviation.
func meanStddev(xs []float64) (mean, sigma float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return mean, math.Sqrt(variance)
}
