package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{
		CreatedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		ID:        "5f3e8a2c",
	}

	s, err := c.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, s)

	got, err := DecodeCursor(s)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, c.ID, got.ID)
}

func TestDecodeCursor_Empty(t *testing.T) {
	got, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, s := range []string{"%%%not-base64%%%", "bm90IGpzb24"} {
		_, err := DecodeCursor(s)
		assert.ErrorIs(t, err, ErrInvalidCursor, "input %q", s)
	}
}
