package persistence

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsStore_GetMissingKey(t *testing.T) {
	store := NewGormSettingsStore(setupTestDB(t))

	value, exists, err := store.Get(context.Background(), "last_invoice_sequence_2026")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, value)
}

func TestSettingsStore_InsertWhenAbsent(t *testing.T) {
	store := NewGormSettingsStore(setupTestDB(t))
	ctx := context.Background()

	ok, err := store.SetIfCAS(ctx, "last_invoice_sequence_2026", nil, "1")
	require.NoError(t, err)
	assert.True(t, ok)

	value, exists, err := store.Get(ctx, "last_invoice_sequence_2026")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "1", value)
}

func TestSettingsStore_InsertLosesWhenKeyExists(t *testing.T) {
	store := NewGormSettingsStore(setupTestDB(t))
	ctx := context.Background()

	ok, err := store.SetIfCAS(ctx, "k", nil, "1")
	require.NoError(t, err)
	require.True(t, ok)

	// A second blind insert is a lost race, not an error.
	ok, err = store.SetIfCAS(ctx, "k", nil, "9")
	require.NoError(t, err)
	assert.False(t, ok)

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestSettingsStore_UpdateWithMatchingExpected(t *testing.T) {
	store := NewGormSettingsStore(setupTestDB(t))
	ctx := context.Background()

	_, err := store.SetIfCAS(ctx, "k", nil, "5")
	require.NoError(t, err)

	expected := "5"
	ok, err := store.SetIfCAS(ctx, "k", &expected, "6")
	require.NoError(t, err)
	assert.True(t, ok)

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "6", value)
}

func TestSettingsStore_UpdateWithStaleExpected(t *testing.T) {
	store := NewGormSettingsStore(setupTestDB(t))
	ctx := context.Background()

	_, err := store.SetIfCAS(ctx, "k", nil, "5")
	require.NoError(t, err)

	stale := "4"
	ok, err := store.SetIfCAS(ctx, "k", &stale, "6")
	require.NoError(t, err)
	assert.False(t, ok)

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "5", value)
}

func TestSettingsStore_UpdateMissingKey(t *testing.T) {
	store := NewGormSettingsStore(setupTestDB(t))

	expected := "1"
	ok, err := store.SetIfCAS(context.Background(), "missing", &expected, "2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsStore_CompareAndSetLoop(t *testing.T) {
	store := NewGormSettingsStore(setupTestDB(t))
	ctx := context.Background()

	// Drive the counter the way the numbering service does.
	for i := 1; i <= 5; i++ {
		current, exists, err := store.Get(ctx, "seq")
		require.NoError(t, err)

		var expected *string
		if exists {
			expected = &current
		}
		ok, err := store.SetIfCAS(ctx, "seq", expected, strconv.Itoa(i))
		require.NoError(t, err)
		require.True(t, ok, "iteration %d", i)
	}

	value, _, err := store.Get(ctx, "seq")
	require.NoError(t, err)
	assert.Equal(t, "5", value)
}
