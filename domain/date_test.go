package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 9}, d)
	assert.Equal(t, "2026-03-09", d.String())

	for _, bad := range []string{"", "2026-3-9", "09-03-2026", "2026-03-09T00:00:00Z", "yesterday"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
		assert.True(t, IsDomainError(err, ErrCodeInvalid), bad)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{Year: 2026, Month: time.February, Day: 28}

	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 1}, d.AddDays(1))
	assert.Equal(t, Date{Year: 2026, Month: time.January, Day: 31}, d.AddDays(-28))
	assert.Equal(t, 28, d.DaysSince(Date{Year: 2026, Month: time.January, Day: 31}))
	assert.Equal(t, -1, d.DaysSince(Date{Year: 2026, Month: time.March, Day: 1}))
}

func TestDateOrdering(t *testing.T) {
	a := Date{Year: 2025, Month: time.December, Day: 31}
	b := Date{Year: 2026, Month: time.January, Day: 1}

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.False(t, a.After(a))
	assert.True(t, Date{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestDateJSON(t *testing.T) {
	d := Date{Year: 2026, Month: time.August, Day: 22}

	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-22"`, string(raw))

	var parsed Date
	require.NoError(t, parsed.UnmarshalJSON([]byte(`"2026-08-22"`)))
	assert.Equal(t, d, parsed)

	assert.Error(t, parsed.UnmarshalJSON([]byte(`20260822`)))
	assert.Error(t, parsed.UnmarshalJSON([]byte(`"not-a-date"`)))
}
