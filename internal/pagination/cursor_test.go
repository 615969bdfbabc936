package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchflix/internal/pagination"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)

	cursor := pagination.FormatCursor(at)
	parsed, err := pagination.ParseCursor(cursor)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))
}

func TestEmptyCursorIsFirstPage(t *testing.T) {
	parsed, err := pagination.ParseCursor("")
	require.NoError(t, err)
	assert.True(t, parsed.IsZero())
}

func TestInvalidCursorRejected(t *testing.T) {
	_, err := pagination.ParseCursor("yesterday")
	assert.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, pagination.DefaultLimit, pagination.ClampLimit(0))
	assert.Equal(t, pagination.DefaultLimit, pagination.ClampLimit(-5))
	assert.Equal(t, 25, pagination.ClampLimit(25))
	assert.Equal(t, pagination.MaxLimit, pagination.ClampLimit(10000))
}
