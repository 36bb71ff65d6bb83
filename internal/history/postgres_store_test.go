//go:build integration

package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorin2500/Sentinel-sub000/internal/testutil"
)

func TestPostgresStore_RecordAndList(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	rec := &Transaction{
		UserID:          "user_1",
		Identifier:      "Shop@YBL",
		Amount:          ptr(499.50),
		TimestampMillis: base.UnixMilli(),
		Outcome:         "safe",
	}
	require.NoError(t, store.Record(ctx, rec))
	assert.NotEmpty(t, rec.ID)

	got, err := store.ListForScan(ctx, "", "shop@ybl", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "shop@ybl", got[0].Identifier)
	assert.Equal(t, 499.50, *got[0].Amount)
	assert.Equal(t, base.UnixMilli(), got[0].TimestampMillis)
}

func TestPostgresStore_RecordNilAmount(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, tx("", "shop@ybl", base)))

	got, err := store.ListForScan(ctx, "", "shop@ybl", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Amount)
}

func TestPostgresStore_ListForScan_UnionOfFilters(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, tx("user_1", "shop@ybl", base)))
	require.NoError(t, store.Record(ctx, tx("user_1", "other@ybl", base.Add(time.Minute))))
	require.NoError(t, store.Record(ctx, tx("user_2", "shop@ybl", base.Add(2*time.Minute))))
	require.NoError(t, store.Record(ctx, tx("user_2", "unrelated@ybl", base.Add(3*time.Minute))))

	got, err := store.ListForScan(ctx, "user_1", "shop@ybl", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "user_2", got[0].UserID)
	assert.Equal(t, "other@ybl", got[1].Identifier)
}

func TestPostgresStore_ListForScan_EmptyFilters(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, tx("user_1", "shop@ybl", base)))

	got, err := store.ListForScan(ctx, "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostgresStore_RejectsUnknownOutcome(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)

	rec := tx("user_1", "shop@ybl", base)
	rec.Outcome = "maybe"
	assert.Error(t, store.Record(context.Background(), rec))
}

func TestPostgresStore_Count(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, tx("user_1", "shop@ybl", base)))
	require.NoError(t, store.Record(ctx, tx("user_2", "other@ybl", base)))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
