package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/stableops/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := &domain.Cursor{
		Date: time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC),
		ID:   "activity-123",
	}

	token := EncodeCursor(cursor)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.True(t, cursor.Date.Equal(decoded.Date))
	require.Equal(t, cursor.ID, decoded.ID)
}

func TestCursorEmptyAndInvalid(t *testing.T) {
	require.Empty(t, EncodeCursor(nil))

	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	require.Nil(t, decoded)

	_, err = DecodeCursor("not base64!!")
	require.Error(t, err)

	_, err = DecodeCursor("bm8tc2VwYXJhdG9y") // "no-separator"
	require.Error(t, err)
}
