package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/timezone"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := timezone.ParseTimezone(name)
	require.NoError(t, err)
	return loc
}

func TestHashMatchesFNV1a(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
	}{
		{"", 0x811c9dc5},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Hash(tt.input), "Hash(%q)", tt.input)
	}
}

func TestEntryIDIsDeterministic(t *testing.T) {
	c := catalog.Default()
	loc := mustLoad(t, "Europe/London")
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	first, ok := EntryID(loc, c, now)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		got, ok := EntryID(loc, c, now.Add(time.Duration(i)*time.Hour))
		require.True(t, ok)
		assert.Equal(t, first, got)
	}

	want := c.At(int(Hash("2024-06-15") % uint32(c.Len()))).ID
	assert.Equal(t, want, first)
}

func TestEntryIDFollowsTimezoneDate(t *testing.T) {
	c := catalog.Default()
	instant := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	ny := mustLoad(t, "America/New_York")

	got, ok := EntryID(ny, c, instant)
	require.True(t, ok)
	want, _ := EntryIDForKey("2024-01-01", c)
	assert.Equal(t, want, got)
}

func TestEntryIDEmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)

	id, ok := EntryID(time.UTC, empty, time.Now())
	assert.False(t, ok)
	assert.Empty(t, id)

	id, ok = EntryIDForKey("2024-01-01", nil)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestEntryIDCoversCatalog(t *testing.T) {
	c := catalog.Default()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	seen := make(map[string]int)
	for d := 0; d < 365; d++ {
		id, ok := EntryID(time.UTC, c, start.AddDate(0, 0, d))
		require.True(t, ok)
		require.True(t, c.Has(id))
		seen[id]++
	}
	assert.Greater(t, len(seen), 1)
}
