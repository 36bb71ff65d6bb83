package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
)

func fileReport(t *testing.T, svc *Service, identifier string, severity refdata.Severity) *Report {
	t.Helper()
	r := &Report{
		Identifier: identifier,
		Reason:     "took money, never shipped",
		FraudType:  "fake_seller",
		Severity:   severity,
		ReporterID: "user_1",
	}
	require.NoError(t, svc.File(context.Background(), r))
	return r
}

func TestService_File(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)

	r := fileReport(t, svc, " Bad@YBL ", refdata.SeverityHigh)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "bad@ybl", r.Identifier)
	assert.False(t, r.Verified)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := svc.ListByIdentifier(context.Background(), "BAD@ybl")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_File_Invalid(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)
	ctx := context.Background()

	err := svc.File(ctx, &Report{Identifier: "", Reason: "x", Severity: refdata.SeverityLow})
	assert.ErrorIs(t, err, ErrInvalidReport)

	err = svc.File(ctx, &Report{Identifier: "bad@ybl", Reason: "  ", Severity: refdata.SeverityLow})
	assert.ErrorIs(t, err, ErrInvalidReport)

	err = svc.File(ctx, &Report{Identifier: "bad@ybl", Reason: "x", Severity: "extreme"})
	assert.ErrorIs(t, err, ErrInvalidReport)
}

func TestService_File_ClientCannotPreVerify(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)

	r := &Report{
		Identifier: "bad@ybl",
		Reason:     "fraud",
		Severity:   refdata.SeverityHigh,
		Verified:   true,
	}
	require.NoError(t, svc.File(context.Background(), r))
	assert.False(t, r.Verified)
}

func TestService_Verify_PromotesToBlacklist(t *testing.T) {
	store := NewMemoryStore()
	blacklist := refdata.NewMemoryStore()
	svc := NewService(store, blacklist)
	ctx := context.Background()

	r := fileReport(t, svc, "bad@ybl", refdata.SeverityHigh)

	entry, err := svc.Verify(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "bad@ybl", entry.Identifier)
	assert.Equal(t, refdata.SeverityHigh, entry.Severity)
	assert.Equal(t, 1, entry.ReportCount)
	assert.Equal(t, "fake_seller", entry.FraudType)
	assert.True(t, entry.Verified)

	stored, err := blacklist.GetEntry(ctx, "bad@ybl")
	require.NoError(t, err)
	assert.Equal(t, refdata.SeverityHigh, stored.Severity)

	marked, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, marked.Verified)
}

func TestService_Verify_AggregatesAllReports(t *testing.T) {
	store := NewMemoryStore()
	blacklist := refdata.NewMemoryStore()
	svc := NewService(store, blacklist)

	fileReport(t, svc, "bad@ybl", refdata.SeverityLow)
	fileReport(t, svc, "bad@ybl", refdata.SeverityCritical)
	r := fileReport(t, svc, "bad@ybl", refdata.SeverityMedium)

	entry, err := svc.Verify(context.Background(), r.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)

	// Count covers every report, severity is the worst seen.
	assert.Equal(t, 3, entry.ReportCount)
	assert.Equal(t, refdata.SeverityCritical, entry.Severity)
}

func TestService_Verify_NeverDowngradesExistingEntry(t *testing.T) {
	store := NewMemoryStore()
	blacklist := refdata.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, blacklist.UpsertEntry(ctx, &refdata.BlacklistEntry{
		Identifier:     "bad@ybl",
		Reason:         "curated",
		Severity:       refdata.SeverityCritical,
		ReportCount:    50,
		LastReportedAt: time.Now().Add(-time.Hour),
		FraudType:      "lottery_scam",
	}))

	svc := NewService(store, blacklist)
	r := fileReport(t, svc, "bad@ybl", refdata.SeverityLow)

	entry, err := svc.Verify(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, refdata.SeverityCritical, entry.Severity)
	assert.Equal(t, 50, entry.ReportCount)
}

func TestService_Verify_WithoutBlacklistWriter(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	r := fileReport(t, svc, "bad@ybl", refdata.SeverityHigh)

	entry, err := svc.Verify(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, entry)

	marked, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, marked.Verified)
}

func TestService_Verify_UnknownReport(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)

	_, err := svc.Verify(context.Background(), "rpt_missing")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestService_Verify_ConcurrentSameIdentifier(t *testing.T) {
	store := NewMemoryStore()
	blacklist := refdata.NewMemoryStore()
	svc := NewService(store, blacklist)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, fileReport(t, svc, "bad@ybl", refdata.SeverityMedium).ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Verify(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	entry, err := blacklist.GetEntry(ctx, "bad@ybl")
	require.NoError(t, err)
	assert.Equal(t, 8, entry.ReportCount)
}

func TestService_Count(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	fileReport(t, svc, "a@ybl", refdata.SeverityLow)
	fileReport(t, svc, "b@ybl", refdata.SeverityLow)

	n, err = svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore_MarkVerifiedUnknown(t *testing.T) {
	store := NewMemoryStore()

	err := store.MarkVerified(context.Background(), "rpt_missing")
	assert.ErrorIs(t, err, ErrReportNotFound)
}
