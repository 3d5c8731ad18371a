package marker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daykeep/backend/domain"
)

func testDay(d int) domain.Date {
	return domain.Date{Year: 2026, Month: time.June, Day: d}
}

func TestStoreMarkAndSeen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "reminders.db")
	store, err := Open(path, "reminders")
	require.NoError(t, err)
	defer store.Close()

	day := testDay(10)

	seen, err := store.Seen(1, day)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Mark(1, day))

	seen, err = store.Seen(1, day)
	require.NoError(t, err)
	assert.True(t, seen)

	// Another user's marker is independent.
	seen, err = store.Seen(2, day)
	require.NoError(t, err)
	assert.False(t, seen)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.db")

	store, err := Open(path, "")
	require.NoError(t, err)
	require.NoError(t, store.Mark(7, testDay(1)))
	require.NoError(t, store.Close())

	store, err = Open(path, "")
	require.NoError(t, err)
	defer store.Close()

	seen, err := store.Seen(7, testDay(1))
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestStoreCleanup(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "reminders.db"), "reminders")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Mark(1, testDay(3)))
	require.NoError(t, store.Mark(1, testDay(8)))
	require.NoError(t, store.Mark(2, testDay(9)))

	require.NoError(t, store.Cleanup(testDay(8)))

	seen, err := store.Seen(1, testDay(3))
	require.NoError(t, err)
	assert.False(t, seen, "old marker should be gone")

	for _, check := range []struct {
		user int64
		day  domain.Date
	}{{1, testDay(8)}, {2, testDay(9)}} {
		seen, err := store.Seen(check.user, check.day)
		require.NoError(t, err)
		assert.True(t, seen)
	}

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestStoreNilSafe(t *testing.T) {
	var store *Store

	_, err := store.Seen(1, testDay(1))
	assert.Error(t, err)
	assert.Error(t, store.Mark(1, testDay(1)))
	assert.NoError(t, store.Close())
}
