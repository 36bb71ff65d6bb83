// Package refdata holds the static reference data the risk engine evaluates
// against: the blacklist of known-bad VPAs, the trusted-merchant allow list,
// the suspicious-keyword list, and the risky identifier patterns.
//
// A Set is immutable once built. The engine only ever reads it; updates happen
// by building a new Set (admin reload) and swapping it atomically via Provider.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrEntryNotFound = errors.New("refdata: blacklist entry not found")
	ErrEntryExists   = errors.New("refdata: blacklist entry already exists")
)

// Severity ranks how dangerous a blacklisted VPA is considered.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the total order low < medium < high < critical.
// Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// BlacklistEntry is a curated record of a known-bad payee identifier.
type BlacklistEntry struct {
	Identifier     string    `json:"identifier"`
	Reason         string    `json:"reason"`
	Severity       Severity  `json:"severity"`
	ReportCount    int       `json:"reportCount"`
	LastReportedAt time.Time `json:"lastReportedAt"`
	FraudType      string    `json:"fraudType"`
	Verified       bool      `json:"verified"`
}

// Validate checks structural invariants before an entry is stored.
func (e *BlacklistEntry) Validate() error {
	if strings.TrimSpace(e.Identifier) == "" {
		return fmt.Errorf("refdata: blacklist entry identifier is required")
	}
	if !e.Severity.Valid() {
		return fmt.Errorf("refdata: invalid severity %q", e.Severity)
	}
	if e.ReportCount < 0 {
		return fmt.Errorf("refdata: report count must be non-negative")
	}
	return nil
}

// Set is an immutable snapshot of all reference data.
type Set struct {
	blacklist map[string]*BlacklistEntry
	trusted   map[string]struct{}
	keywords  []string
	patterns  []*regexp.Regexp
}

// NewSet builds a Set from the given data. Identifiers are matched
// case-insensitively. Pattern strings that fail to compile are rejected.
func NewSet(entries []BlacklistEntry, trusted []string, keywords []string, patterns []string) (*Set, error) {
	s := &Set{
		blacklist: make(map[string]*BlacklistEntry, len(entries)),
		trusted:   make(map[string]struct{}, len(trusted)),
		keywords:  make([]string, 0, len(keywords)),
		patterns:  make([]*regexp.Regexp, 0, len(patterns)),
	}
	for i := range entries {
		e := entries[i]
		if err := e.Validate(); err != nil {
			return nil, err
		}
		s.blacklist[strings.ToLower(e.Identifier)] = &e
	}
	for _, t := range trusted {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			s.trusted[t] = struct{}{}
		}
	}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			s.keywords = append(s.keywords, k)
		}
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("refdata: compile pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, re)
	}
	return s, nil
}

// Lookup returns the blacklist entry for a VPA, if any. Matching is exact and
// case-insensitive.
func (s *Set) Lookup(identifier string) (*BlacklistEntry, bool) {
	e, ok := s.blacklist[strings.ToLower(identifier)]
	return e, ok
}

// IsTrusted reports whether the VPA is on the trusted-merchant allow list.
func (s *Set) IsTrusted(identifier string) bool {
	_, ok := s.trusted[strings.ToLower(identifier)]
	return ok
}

// Keywords returns the suspicious keyword list (lowercased).
func (s *Set) Keywords() []string { return s.keywords }

// Patterns returns the compiled risky identifier patterns.
func (s *Set) Patterns() []*regexp.Regexp { return s.patterns }

// BlacklistSize returns the number of blacklisted identifiers.
func (s *Set) BlacklistSize() int { return len(s.blacklist) }

// TrustedSize returns the number of trusted identifiers.
func (s *Set) TrustedSize() int { return len(s.trusted) }

// Store persists curated blacklist entries and trusted identifiers so they
// survive restarts. The engine never talks to a Store directly; Provider
// assembles a Set from it at startup and on admin reload.
type Store interface {
	UpsertEntry(ctx context.Context, e *BlacklistEntry) error
	GetEntry(ctx context.Context, identifier string) (*BlacklistEntry, error)
	ListEntries(ctx context.Context) ([]BlacklistEntry, error)
	AddTrusted(ctx context.Context, identifier string) error
	ListTrusted(ctx context.Context) ([]string, error)
}
