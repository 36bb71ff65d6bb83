package risk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
)

// Pattern evaluator penalties. All triggered checks accumulate; nothing here
// short-circuits. The final clamp happens in the aggregator.
const (
	blacklistPenalty    = 80
	keywordPenalty      = 15 // per distinct matched keyword
	patternPenalty      = 12 // per matched risky pattern
	formatPenalty       = 8  // per structural violation
	allDigitsPenalty    = 10
	digitDensityPenalty = 8
	digitRunPenalty     = 12
	scamVerbPenalty     = 10
	urgencyPenalty      = 8
)

// Identifier structural limits.
const (
	minIdentifierLen = 5
	maxIdentifierLen = 50
)

// repeatedRunLen is the length at which a run of one repeated character
// counts as a risky pattern.
const repeatedRunLen = 5

var (
	safeCharset   = regexp.MustCompile(`^[a-zA-Z0-9.@_-]+$`)
	allDigitsRE   = regexp.MustCompile(`^[0-9]+$`)
	digitSuffixRE = regexp.MustCompile(`^[a-zA-Z]{1,4}[0-9]{3,}$`)
)

var scamVerbPrefixes = []string{"pay", "send", "collect", "claim", "win"}

var urgencyWords = []string{"now", "asap", "instant"}

// evaluatePattern scores the identifier string in isolation against the
// reference data snapshot. The trusted-set override belongs to the pipeline,
// not here.
func evaluatePattern(identifier string, ref *refdata.Set) Signal {
	var sig Signal
	lower := strings.ToLower(identifier)

	// Blacklist exact match.
	if entry, ok := ref.Lookup(identifier); ok {
		sig.Delta += blacklistPenalty
		sig.FraudType = entry.FraudType
		sig.Reasons = append(sig.Reasons,
			fmt.Sprintf("Blacklisted: %s", entry.Reason),
			fmt.Sprintf("Reported %d times", entry.ReportCount),
		)
	}

	// Keyword scan: penalty scales with the number of distinct matches.
	var matched []string
	for _, kw := range ref.Keywords() {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		sig.Delta += keywordPenalty * len(matched)
		sig.Reasons = append(sig.Reasons,
			fmt.Sprintf("Contains suspicious keywords: %s", strings.Join(matched, ", ")))
	}

	// Risky pattern scan. The reason reports only the count; pattern
	// internals stay internal.
	patternHits := 0
	for _, re := range ref.Patterns() {
		if re.MatchString(lower) {
			patternHits++
		}
	}
	// The repeated-character rule needs a backreference, which RE2 does not
	// support, so it counts as a pattern hit here instead of living in the
	// reference data's pattern list.
	if hasRepeatedRun(lower, repeatedRunLen) {
		patternHits++
	}
	if patternHits > 0 {
		sig.Delta += patternPenalty * patternHits
		sig.Reasons = append(sig.Reasons,
			fmt.Sprintf("Matches %d risky identifier patterns", patternHits))
	}

	// Structural validation. Each violation scores independently.
	switch strings.Count(identifier, "@") {
	case 0:
		sig.Delta += formatPenalty
		sig.Reasons = append(sig.Reasons, "Missing @ separator in UPI ID")
	case 1:
		// well-formed
	default:
		sig.Delta += formatPenalty
		sig.Reasons = append(sig.Reasons, "Multiple @ separators in UPI ID")
	}
	if !safeCharset.MatchString(identifier) {
		sig.Delta += formatPenalty
		sig.Reasons = append(sig.Reasons, "Contains unexpected characters")
	}
	if len(identifier) > maxIdentifierLen {
		sig.Delta += formatPenalty
		sig.Reasons = append(sig.Reasons, "UPI ID is unusually long")
	} else if len(identifier) < minIdentifierLen {
		sig.Delta += formatPenalty
		sig.Reasons = append(sig.Reasons, "UPI ID is unusually short")
	}

	// Local-part heuristics.
	local := lower
	if i := strings.Index(lower, "@"); i >= 0 {
		local = lower[:i]
	}
	if local != "" {
		if allDigitsRE.MatchString(local) {
			sig.Delta += allDigitsPenalty
			sig.Reasons = append(sig.Reasons, "Username is only digits")
		}
		if density := digitDensity(local); density > 0.7 {
			sig.Delta += digitDensityPenalty
			sig.Reasons = append(sig.Reasons, "Username is mostly digits")
		}
		if digitSuffixRE.MatchString(local) {
			sig.Delta += digitRunPenalty
			sig.Reasons = append(sig.Reasons, "Short name followed by a long digit run")
		}
		for _, verb := range scamVerbPrefixes {
			if strings.HasPrefix(local, verb) {
				sig.Delta += scamVerbPenalty
				sig.Reasons = append(sig.Reasons,
					fmt.Sprintf("Username starts with payment verb %q", verb))
				break
			}
		}
		for _, word := range urgencyWords {
			if strings.Contains(local, word) {
				sig.Delta += urgencyPenalty
				sig.Reasons = append(sig.Reasons, "Username suggests urgency")
				break
			}
		}
	}

	return sig
}

// hasRepeatedRun reports whether s contains a run of n identical runes.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func digitDensity(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}
