package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	id := "scan_abc123"

	encoded := Encode(ts, id)
	assert.NotEmpty(t, encoded)

	cursor, err := Decode(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, ts, cursor.CreatedAt)
	assert.Equal(t, id, cursor.ID)
}

func TestDecode_EmptyMeansNewest(t *testing.T) {
	cursor, err := Decode("")
	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecode_Rejects(t *testing.T) {
	for _, raw := range []string{
		"not-base64!!!",
		"bm9waXBl",     // valid base64, no separator
		"eHh4fGFiYw-x", // corrupted
	} {
		_, err := Decode(raw)
		assert.Error(t, err, "cursor %q", raw)
	}
}

func TestDecode_RejectsNonNumericTimestamp(t *testing.T) {
	_, err := Decode(Encode(time.Time{}, "x"))
	assert.NoError(t, err) // zero time still encodes numerically

	// "abc|id" has a non-numeric timestamp part.
	_, err = Decode("YWJjfGlk")
	assert.Error(t, err)
}

func TestComputePage(t *testing.T) {
	key := func(s string) (time.Time, string) {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), s
	}

	t.Run("under limit", func(t *testing.T) {
		page, cursor, hasMore := ComputePage([]string{"a", "b", "c"}, 5, key)
		assert.Len(t, page, 3)
		assert.Empty(t, cursor)
		assert.False(t, hasMore)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		page, cursor, hasMore := ComputePage([]string{"a", "b", "c"}, 3, key)
		assert.Len(t, page, 3)
		assert.Empty(t, cursor)
		assert.False(t, hasMore)
	})

	t.Run("extra row signals another page", func(t *testing.T) {
		page, cursor, hasMore := ComputePage([]string{"a", "b", "c", "d"}, 3, key)
		assert.Len(t, page, 3)
		assert.True(t, hasMore)

		c, err := Decode(cursor)
		require.NoError(t, err)
		assert.Equal(t, "c", c.ID)
	})
}
