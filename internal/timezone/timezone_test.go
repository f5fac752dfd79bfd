package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := ParseTimezone(name)
	require.NoError(t, err)
	return loc
}

func TestParseTimezone(t *testing.T) {
	loc, err := ParseTimezone("")
	require.NoError(t, err)
	assert.Equal(t, UTC, loc)

	loc, err = ParseTimezone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	loc, err = ParseTimezone("Mars/Olympus")
	assert.Error(t, err)
	assert.Equal(t, UTC, loc)
	assert.False(t, IsValidTimezone("Mars/Olympus"))
}

func TestDateKeyUsesLocation(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	tokyo := mustLoad(t, "Asia/Tokyo")

	// 03:30 UTC on Jan 2 is still Jan 1 in New York and already midday Jan 2 in Tokyo.
	instant := time.Date(2024, 1, 2, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-02", DateKey(instant, nil))
	assert.Equal(t, "2024-01-01", DateKey(instant, ny))
	assert.Equal(t, "2024-01-02", DateKey(instant, tokyo))
}

func TestDateKeyAcrossDST(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// US DST began 2024-03-10 at 02:00 local (07:00 UTC); offset moves from -5 to -4.
	beforeMidnight := time.Date(2024, 3, 11, 3, 59, 0, 0, time.UTC) // 23:59 EDT Mar 10
	afterMidnight := time.Date(2024, 3, 11, 4, 1, 0, 0, time.UTC)   // 00:01 EDT Mar 11
	assert.Equal(t, "2024-03-10", DateKey(beforeMidnight, ny))
	assert.Equal(t, "2024-03-11", DateKey(afterMidnight, ny))

	// A fixed -5h offset would get the second instant wrong.
	fixed := time.FixedZone("EST", -5*60*60)
	assert.Equal(t, "2024-03-10", DateKey(afterMidnight, fixed))
}

func TestNextDayAcrossDST(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, ny)

	start := StartOfDay(day, ny)
	next := NextDay(day, ny)
	assert.Equal(t, 23*time.Hour, next.Sub(start))
	assert.Equal(t, "2024-03-11", DateKey(next, ny))
}

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey("2024-01-31", UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateKey("31/01/2024", UTC)
	assert.Error(t, err)
}
