package refdata

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Zero(t, Severity("bogus").Rank())
}

func TestSeverity_Valid(t *testing.T) {
	assert.True(t, SeverityLow.Valid())
	assert.True(t, SeverityCritical.Valid())
	assert.False(t, Severity("").Valid())
	assert.False(t, Severity("extreme").Valid())
}

func TestBlacklistEntry_Validate(t *testing.T) {
	valid := BlacklistEntry{
		Identifier:  "bad@ybl",
		Reason:      "fraud",
		Severity:    SeverityHigh,
		ReportCount: 3,
	}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.Identifier = "  "
	assert.Error(t, noID.Validate())

	badSev := valid
	badSev.Severity = "extreme"
	assert.Error(t, badSev.Validate())

	negCount := valid
	negCount.ReportCount = -1
	assert.Error(t, negCount.Validate())
}

func TestNewSet(t *testing.T) {
	set, err := NewSet(
		[]BlacklistEntry{{Identifier: "Bad@YBL", Reason: "fraud", Severity: SeverityHigh}},
		[]string{" Trusted@OkAxis ", ""},
		[]string{" SCAM ", ""},
		[]string{`^[0-9]+@`},
	)
	require.NoError(t, err)

	entry, ok := set.Lookup("bad@ybl")
	require.True(t, ok)
	assert.Equal(t, "Bad@YBL", entry.Identifier)

	_, ok = set.Lookup("good@ybl")
	assert.False(t, ok)

	assert.True(t, set.IsTrusted("trusted@okaxis"))
	assert.True(t, set.IsTrusted("TRUSTED@okaxis"))
	assert.False(t, set.IsTrusted("other@okaxis"))

	assert.Equal(t, []string{"scam"}, set.Keywords())
	require.Len(t, set.Patterns(), 1)
	assert.True(t, set.Patterns()[0].MatchString("12345@ybl"))

	assert.Equal(t, 1, set.BlacklistSize())
	assert.Equal(t, 1, set.TrustedSize())
}

func TestNewSet_RejectsInvalidEntry(t *testing.T) {
	_, err := NewSet([]BlacklistEntry{{Identifier: "bad@ybl", Severity: "extreme"}}, nil, nil, nil)
	assert.Error(t, err)
}

func TestNewSet_RejectsBadPattern(t *testing.T) {
	_, err := NewSet(nil, nil, nil, []string{`[unclosed`})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "compile pattern")
}

func TestDefault(t *testing.T) {
	set := Default()

	assert.Greater(t, set.BlacklistSize(), 0)
	assert.Greater(t, set.TrustedSize(), 0)
	assert.NotEmpty(t, set.Keywords())
	assert.NotEmpty(t, set.Patterns())

	entry, ok := set.Lookup("scammer@phonepe")
	require.True(t, ok)
	assert.Equal(t, SeverityCritical, entry.Severity)
	assert.True(t, set.IsTrusted("amazon.pay@axisbank"))
}

// Default panics on an uncompilable built-in, so every shipped pattern must
// be valid RE2.
func TestDefault_BuiltInPatternsCompile(t *testing.T) {
	for _, p := range defaultPatterns {
		_, err := regexp.Compile(p)
		assert.NoError(t, err, "pattern %q", p)
	}
	assert.NotPanics(t, func() { Default() })
}

func TestMemoryStore_EntryLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := &BlacklistEntry{
		Identifier:     "Bad@YBL",
		Reason:         "fraud",
		Severity:       SeverityMedium,
		ReportCount:    1,
		LastReportedAt: time.Now(),
	}
	require.NoError(t, store.UpsertEntry(ctx, entry))

	got, err := store.GetEntry(ctx, "bad@ybl")
	require.NoError(t, err)
	assert.Equal(t, SeverityMedium, got.Severity)

	// Upsert replaces.
	entry.Severity = SeverityCritical
	entry.ReportCount = 5
	require.NoError(t, store.UpsertEntry(ctx, entry))

	got, err = store.GetEntry(ctx, "BAD@ybl")
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, got.Severity)
	assert.Equal(t, 5, got.ReportCount)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryStore_GetEntryNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetEntry(context.Background(), "nobody@ybl")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestMemoryStore_UpsertValidates(t *testing.T) {
	store := NewMemoryStore()

	err := store.UpsertEntry(context.Background(), &BlacklistEntry{Identifier: "x@y", Severity: "extreme"})
	assert.Error(t, err)
}

func TestMemoryStore_Trusted(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AddTrusted(ctx, " Merchant@OkAxis "))
	require.NoError(t, store.AddTrusted(ctx, "merchant@okaxis"))

	trusted, err := store.ListTrusted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"merchant@okaxis"}, trusted)
}
