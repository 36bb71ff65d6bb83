// Package reports handles community fraud reports.
//
// Anyone can file a report against a VPA. Reports alone never change a
// verdict: an admin reviews them, and verification promotes the aggregate
// (count, newest timestamp, worst severity) into the blacklist store. That
// keeps the reference data curated while still crowd-sourcing leads.
package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
)

var (
	ErrReportNotFound = errors.New("reports: report not found")
	ErrInvalidReport  = errors.New("reports: invalid report")
)

// Report is one community fraud report against a VPA.
type Report struct {
	ID         string           `json:"id"`
	Identifier string           `json:"identifier"`
	Reason     string           `json:"reason"`
	FraudType  string           `json:"fraudType,omitempty"`
	Severity   refdata.Severity `json:"severity"`
	ReporterID string           `json:"reporterId,omitempty"`
	Verified   bool             `json:"verified"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Validate checks a report before it is filed.
func (r *Report) Validate() error {
	if strings.TrimSpace(r.Identifier) == "" {
		return errors.Join(ErrInvalidReport, errors.New("identifier is required"))
	}
	if strings.TrimSpace(r.Reason) == "" {
		return errors.Join(ErrInvalidReport, errors.New("reason is required"))
	}
	if !r.Severity.Valid() {
		return errors.Join(ErrInvalidReport, errors.New("severity must be low, medium, high, or critical"))
	}
	return nil
}

// Store persists fraud reports.
type Store interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	ListByIdentifier(ctx context.Context, identifier string) ([]Report, error)
	MarkVerified(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// BlacklistWriter is the slice of the reference data store the verification
// flow needs.
type BlacklistWriter interface {
	UpsertEntry(ctx context.Context, e *refdata.BlacklistEntry) error
	GetEntry(ctx context.Context, identifier string) (*refdata.BlacklistEntry, error)
}
