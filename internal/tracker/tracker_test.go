package tracker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/daily"
	"github.com/hrygo/musclequiz/internal/progress"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Entry{
		{ID: "deltoid"},
		{ID: "biceps"},
		{ID: "soleus"},
		{ID: "masseter"},
		{ID: "diaphragm"},
	})
	require.NoError(t, err)
	return c
}

func seed(t *testing.T, store progress.Store, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), StorageKey, data))
}

func TestEnsureTodayCreatesRecord(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	c := testCatalog(t)
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	rec, ok := New(progress.NewPersister(store, nil, nil)).EnsureToday(ctx, time.UTC, c, now)
	require.True(t, ok)

	wantID, _ := daily.EntryIDForKey("2024-01-01", c)
	assert.Equal(t, Record{Version: RecordVersion, Date: "2024-01-01", ID: wantID}, rec)

	data, err := store.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"date":"2024-01-01","id":"`+wantID+`","score":0,"attempts":0,"completed":false}`, string(data))
}

func TestEnsureTodayKeepsSameDayRecord(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	c := testCatalog(t)
	tr := New(progress.NewPersister(store, nil, nil))
	now := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

	rec, _ := tr.EnsureToday(ctx, time.UTC, c, now)
	rec = tr.RecordAttempt(ctx, rec)
	rec = tr.RecordCorrect(ctx, rec)

	again, ok := tr.EnsureToday(ctx, time.UTC, c, now.Add(10*time.Hour))
	require.True(t, ok)
	assert.Equal(t, rec, again)
	assert.Equal(t, 1, again.Score)
	assert.Equal(t, 1, again.Attempts)
	assert.True(t, again.Completed)
}

func TestEnsureTodayRollsOver(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	c := testCatalog(t)
	oldID, _ := daily.EntryIDForKey("2024-01-01", c)
	seed(t, store, Record{Version: 1, Date: "2024-01-01", ID: oldID, Score: 1, Attempts: 3, Completed: true})

	now := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	rec, ok := New(progress.NewPersister(store, nil, nil)).EnsureToday(ctx, time.UTC, c, now)
	require.True(t, ok)

	newID, _ := daily.EntryIDForKey("2024-01-02", c)
	assert.Equal(t, "2024-01-02", rec.Date)
	assert.Equal(t, newID, rec.ID)
	assert.Zero(t, rec.Score)
	assert.Zero(t, rec.Attempts)
	assert.False(t, rec.Completed)
}

func TestEnsureTodayResetsOnIDMismatch(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	c := testCatalog(t)
	seed(t, store, Record{Version: 1, Date: "2024-01-01", ID: "retired-muscle", Score: 1, Attempts: 1, Completed: true})

	now := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	rec, ok := New(progress.NewPersister(store, nil, nil)).EnsureToday(ctx, time.UTC, c, now)
	require.True(t, ok)
	assert.NotEqual(t, "retired-muscle", rec.ID)
	assert.False(t, rec.Completed)
	assert.Zero(t, rec.Attempts)
}

func TestEnsureTodayUsesTimezone(t *testing.T) {
	ctx := context.Background()
	c := testCatalog(t)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:00 UTC on Jan 2 is still Jan 1 in New York.
	now := time.Date(2024, time.January, 2, 3, 0, 0, 0, time.UTC)
	rec, ok := New(progress.NewPersister(progress.NewMemoryStore(), nil, nil)).EnsureToday(ctx, ny, c, now)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", rec.Date)
}

func TestEnsureTodayEmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)
	_, ok := New(progress.NewPersister(progress.NewMemoryStore(), nil, nil)).EnsureToday(context.Background(), time.UTC, empty, time.Now())
	assert.False(t, ok)
}

func TestEnsureTodayDiscardsMalformedRecord(t *testing.T) {
	c := testCatalog(t)
	now := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	id, _ := daily.EntryIDForKey("2024-01-01", c)

	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"date":`},
		{"missing version", `{"date":"2024-01-01","id":"` + id + `","score":0,"attempts":1,"completed":false}`},
		{"future version", `{"version":2,"date":"2024-01-01","id":"` + id + `","score":0,"attempts":1,"completed":false}`},
		{"score above attempts", `{"version":1,"date":"2024-01-01","id":"` + id + `","score":2,"attempts":1,"completed":true}`},
		{"negative attempts", `{"version":1,"date":"2024-01-01","id":"` + id + `","score":0,"attempts":-1,"completed":false}`},
		{"wrong type", `{"version":1,"date":"2024-01-01","id":"` + id + `","score":"0","attempts":1,"completed":false}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := progress.NewMemoryStore()
			require.NoError(t, store.Save(ctx, StorageKey, []byte(tt.data)))

			rec, ok := New(progress.NewPersister(store, nil, nil)).EnsureToday(ctx, time.UTC, c, now)
			require.True(t, ok)
			assert.Equal(t, Record{Version: RecordVersion, Date: "2024-01-01", ID: id}, rec)
		})
	}
}

func TestRecordMutations(t *testing.T) {
	ctx := context.Background()
	tr := New(progress.NewPersister(progress.NewMemoryStore(), nil, nil))
	rec := Record{Version: 1, Date: "2024-01-01", ID: "deltoid"}

	rec = tr.RecordAttempt(ctx, rec)
	assert.Equal(t, 1, rec.Attempts)
	assert.False(t, rec.Completed)

	revealed := tr.RecordReveal(ctx, rec)
	assert.Equal(t, 2, revealed.Attempts)
	assert.Zero(t, revealed.Score)
	assert.True(t, revealed.Completed)

	correct := tr.RecordCorrect(ctx, tr.RecordAttempt(ctx, rec))
	assert.Equal(t, 1, correct.Score)
	assert.Equal(t, 2, correct.Attempts)
	assert.True(t, correct.Completed)
}

func TestTrackerSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	var failures int
	p := progress.NewPersister(nil, nil, progress.ReporterFunc(func(progress.Outcome) { failures++ }))
	tr := New(p)

	rec, ok := tr.EnsureToday(ctx, time.UTC, testCatalog(t), time.Now())
	require.True(t, ok)
	rec = tr.RecordAttempt(ctx, rec)
	assert.Equal(t, 1, rec.Attempts)
	assert.Greater(t, failures, 0)
}
