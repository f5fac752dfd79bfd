// Package daily picks the globally shared entry of the day.
//
// The pick is a pure function of the calendar date in a canonical timezone and
// the catalog, so every device computes the same entry without coordination.
package daily

import (
	"hash/fnv"
	"time"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/timezone"
)

// Hash returns the 32-bit FNV-1a hash of key
// (offset basis 0x811c9dc5, prime 0x01000193).
func Hash(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

// DateKey returns the YYYY-MM-DD key of now as observed in loc.
func DateKey(now time.Time, loc *time.Location) string {
	return timezone.DateKey(now, loc)
}

// EntryIDForKey maps a date key onto a catalog entry id.
// The second result is false when the catalog is empty.
func EntryIDForKey(key string, c *catalog.Catalog) (string, bool) {
	n := c.Len()
	if n == 0 {
		return "", false
	}
	return c.At(int(Hash(key) % uint32(n))).ID, true
}

// EntryID returns the daily entry id for now in loc.
// The second result is false when no daily entry is available.
func EntryID(loc *time.Location, c *catalog.Catalog, now time.Time) (string, bool) {
	return EntryIDForKey(DateKey(now, loc), c)
}
