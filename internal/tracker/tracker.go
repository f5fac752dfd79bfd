// Package tracker keeps the per-day score record for the daily challenge.
package tracker

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/daily"
	"github.com/hrygo/musclequiz/internal/progress"
)

const (
	// StorageKey holds today's record.
	StorageKey = "daily_progress_v1"
	// RecordVersion is written into every record and checked on load.
	RecordVersion = 1
)

// Record is the persisted daily challenge state.
type Record struct {
	Version   int    `json:"version"`
	Date      string `json:"date"`
	ID        string `json:"id"`
	Score     int    `json:"score"`
	Attempts  int    `json:"attempts"`
	Completed bool   `json:"completed"`
}

// Tracker loads and mutates the daily record.
//
// Once a record is completed the caller must stop calling the Record* methods
// for that date. The tracker does not enforce this.
type Tracker struct {
	persister *progress.Persister
}

// New creates a Tracker persisting through p.
func New(p *progress.Persister) *Tracker {
	return &Tracker{persister: p}
}

// EnsureToday returns the record for the current date in loc. A missing, stale,
// malformed or mismatched record is replaced with a fresh zeroed one and persisted.
// The second result is false when the catalog has no daily entry.
func (t *Tracker) EnsureToday(ctx context.Context, loc *time.Location, c *catalog.Catalog, now time.Time) (Record, bool) {
	key := daily.DateKey(now, loc)
	id, ok := daily.EntryIDForKey(key, c)
	if !ok {
		return Record{}, false
	}

	data, out := t.persister.Load(ctx, StorageKey)
	if out.OK() && !out.Missing {
		rec, err := decode(data)
		switch {
		case err != nil:
			t.persister.Discard(StorageKey, err)
		case rec.Date == key && rec.ID == id:
			return rec, true
		}
	}

	rec := Record{Version: RecordVersion, Date: key, ID: id}
	t.persister.Save(ctx, StorageKey, rec)
	return rec, true
}

// RecordAttempt counts one guess.
func (t *Tracker) RecordAttempt(ctx context.Context, rec Record) Record {
	rec.Attempts++
	t.persister.Save(ctx, StorageKey, rec)
	return rec
}

// RecordReveal counts the reveal as an attempt and ends the day's challenge.
func (t *Tracker) RecordReveal(ctx context.Context, rec Record) Record {
	rec.Attempts++
	rec.Completed = true
	t.persister.Save(ctx, StorageKey, rec)
	return rec
}

// RecordCorrect scores the day and ends the challenge. The guess itself must
// already have been counted with RecordAttempt.
func (t *Tracker) RecordCorrect(ctx context.Context, rec Record) Record {
	rec.Score++
	rec.Completed = true
	t.persister.Save(ctx, StorageKey, rec)
	return rec
}

type storedRecord struct {
	Version   *int    `json:"version"`
	Date      *string `json:"date"`
	ID        *string `json:"id"`
	Score     *int    `json:"score"`
	Attempts  *int    `json:"attempts"`
	Completed *bool   `json:"completed"`
}

func decode(data []byte) (Record, error) {
	var raw storedRecord
	if err := progress.DecodeStrict(data, &raw); err != nil {
		return Record{}, err
	}
	if raw.Version == nil || raw.Date == nil || raw.ID == nil || raw.Score == nil || raw.Attempts == nil || raw.Completed == nil {
		return Record{}, errors.New("missing field")
	}
	if *raw.Version != RecordVersion {
		return Record{}, errors.Errorf("unsupported version %d", *raw.Version)
	}
	if *raw.Score < 0 || *raw.Attempts < 0 || *raw.Score > *raw.Attempts {
		return Record{}, errors.Errorf("invalid score %d/%d", *raw.Score, *raw.Attempts)
	}
	return Record{
		Version:   *raw.Version,
		Date:      *raw.Date,
		ID:        *raw.ID,
		Score:     *raw.Score,
		Attempts:  *raw.Attempts,
		Completed: *raw.Completed,
	}, nil
}
