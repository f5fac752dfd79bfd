// Package study implements the sequential study deck: a region-filtered,
// date-seeded shuffle of the catalog that the player walks one entry at a time.
package study

import (
	"math/rand/v2"
	"time"

	"github.com/hrygo/musclequiz/internal/catalog"
)

// NowSeed derives the shuffle seed from the UTC calendar date: year*10000 + month*100 + day.
func NowSeed(now time.Time) uint64 {
	y, m, d := now.UTC().Date()
	return uint64(y*10000 + int(m)*100 + d)
}

// BuildDeck returns the ids of entries in region, shuffled deterministically by seed.
// Every matching id appears exactly once.
func BuildDeck(c *catalog.Catalog, region catalog.Region, seed uint64) []string {
	order := c.IDs(region)
	shuffle(order, seed)
	return order
}

// shuffle is a Fisher-Yates pass from the last index down to 1.
func shuffle(ids []string, seed uint64) {
	r := rand.New(rand.NewPCG(seed, seed))
	for i := len(ids) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
