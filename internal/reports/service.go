package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glorin2500/Sentinel-sub000/internal/idgen"
	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
	"github.com/glorin2500/Sentinel-sub000/internal/syncutil"
	"github.com/glorin2500/Sentinel-sub000/internal/traces"
)

// Service files reports and promotes verified ones into the blacklist.
type Service struct {
	store     Store
	blacklist BlacklistWriter // nil when no writable reference store exists

	// Serializes promotions per identifier so concurrent verifications
	// cannot interleave their read-aggregate-write cycles. Context-aware so
	// a cancelled request does not queue behind a slow promotion.
	locks *syncutil.ContextShardedMutex
}

// NewService creates a reports service. The blacklist writer may be nil, in
// which case verification only marks the report.
func NewService(store Store, blacklist BlacklistWriter) *Service {
	return &Service{
		store:     store,
		blacklist: blacklist,
		locks:     syncutil.NewContextShardedMutex(),
	}
}

// File records a new report.
func (s *Service) File(ctx context.Context, r *Report) error {
	r.Identifier = strings.ToLower(strings.TrimSpace(r.Identifier))
	if err := r.Validate(); err != nil {
		return err
	}
	r.ID = idgen.WithPrefix("rpt_")
	r.Verified = false
	r.CreatedAt = time.Now()

	ctx, span := traces.StartSpan(ctx, "reports.File",
		traces.Identifier(r.Identifier), traces.ReportID(r.ID))
	defer span.End()

	return s.store.Create(ctx, r)
}

// ListByIdentifier returns all reports filed against a VPA.
func (s *Service) ListByIdentifier(ctx context.Context, identifier string) ([]Report, error) {
	return s.store.ListByIdentifier(ctx, strings.ToLower(identifier))
}

// Verify marks a report verified and folds the identifier's report aggregate
// into the blacklist: report count, newest report time, and the worst
// severity seen across reports (or any existing entry).
func (s *Service) Verify(ctx context.Context, reportID string) (*refdata.BlacklistEntry, error) {
	ctx, span := traces.StartSpan(ctx, "reports.Verify", traces.ReportID(reportID))
	defer span.End()

	report, err := s.store.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.LockContext(ctx, report.Identifier)
	if err != nil {
		return nil, fmt.Errorf("reports: acquire promotion lock: %w", err)
	}
	defer unlock()

	if err := s.store.MarkVerified(ctx, reportID); err != nil {
		return nil, err
	}

	if s.blacklist == nil {
		return nil, nil
	}

	all, err := s.store.ListByIdentifier(ctx, report.Identifier)
	if err != nil {
		return nil, fmt.Errorf("reports: aggregate for promotion: %w", err)
	}

	entry := &refdata.BlacklistEntry{
		Identifier:     report.Identifier,
		Reason:         report.Reason,
		Severity:       report.Severity,
		ReportCount:    len(all),
		LastReportedAt: report.CreatedAt,
		FraudType:      report.FraudType,
		Verified:       true,
	}
	for _, r := range all {
		if r.Severity.Rank() > entry.Severity.Rank() {
			entry.Severity = r.Severity
		}
		if r.CreatedAt.After(entry.LastReportedAt) {
			entry.LastReportedAt = r.CreatedAt
			entry.Reason = r.Reason
		}
	}

	// Never downgrade an existing curated entry.
	if existing, err := s.blacklist.GetEntry(ctx, report.Identifier); err == nil {
		if existing.Severity.Rank() > entry.Severity.Rank() {
			entry.Severity = existing.Severity
		}
		if existing.ReportCount > entry.ReportCount {
			entry.ReportCount = existing.ReportCount
		}
		if entry.FraudType == "" {
			entry.FraudType = existing.FraudType
		}
	} else if !errors.Is(err, refdata.ErrEntryNotFound) {
		return nil, fmt.Errorf("reports: check existing blacklist entry: %w", err)
	}

	if err := s.blacklist.UpsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("reports: promote to blacklist: %w", err)
	}
	return entry, nil
}

// Count returns the total number of filed reports.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
