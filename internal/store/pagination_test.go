package store

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(-1, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, size)
}

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cursor, err := DecodeCursor(EncodeCursor(OrderCursor{CreatedAt: ts, ID: 9}))
	require.NoError(t, err)
	assert.Equal(t, int64(9), cursor.ID)
	assert.True(t, ts.Equal(cursor.CreatedAt))

	first, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, firstPage, first)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := DecodeCursor("not base64!")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor(base64.URLEncoding.EncodeToString([]byte("{broken")))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
