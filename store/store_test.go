package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/musclequiz/store"
	"github.com/hrygo/musclequiz/store/db/memory"
)

// countingDriver counts ListValues calls so cache hits are observable.
type countingDriver struct {
	*memory.DB
	lists     int
	failWrite bool
}

func (d *countingDriver) ListValues(ctx context.Context, find *store.FindValue) ([]*store.Value, error) {
	d.lists++
	return d.DB.ListValues(ctx, find)
}

func (d *countingDriver) UpsertValue(ctx context.Context, upsert *store.UpsertValue) (*store.Value, error) {
	if d.failWrite {
		return nil, errors.New("disk full")
	}
	return d.DB.UpsertValue(ctx, upsert)
}

func TestStoreGetValueUsesCache(t *testing.T) {
	ctx := context.Background()
	driver := &countingDriver{DB: memory.NewDB()}
	s := store.New(driver)
	defer s.Close()

	key := "daily_progress_v1"
	got, err := s.GetValue(ctx, &store.FindValue{Key: &key})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, driver.lists)

	_, err = s.UpsertValue(ctx, &store.UpsertValue{Key: key, Data: `{"score":1}`})
	require.NoError(t, err)

	got, err = s.GetValue(ctx, &store.FindValue{Key: &key})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"score":1}`, got.Data)
	assert.Equal(t, 1, driver.lists, "upsert should populate the cache")

	// Mutating the returned value must not leak into the cache.
	got.Data = "tampered"
	again, err := s.GetValue(ctx, &store.FindValue{Key: &key})
	require.NoError(t, err)
	assert.Equal(t, `{"score":1}`, again.Data)
}

func TestStoreDeleteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.NewDB())
	defer s.Close()

	key := "study_progress_v2"
	_, err := s.UpsertValue(ctx, &store.UpsertValue{Key: key, Data: "{}"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteValue(ctx, &store.DeleteValue{Key: key}))

	got, err := s.GetValue(ctx, &store.FindValue{Key: &key})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreFailedUpsertDropsCachedValue(t *testing.T) {
	ctx := context.Background()
	driver := &countingDriver{DB: memory.NewDB()}
	s := store.New(driver)
	defer s.Close()

	key := "study_progress_v2"
	_, err := s.UpsertValue(ctx, &store.UpsertValue{Key: key, Data: `{"v":1}`})
	require.NoError(t, err)

	driver.failWrite = true
	_, err = s.UpsertValue(ctx, &store.UpsertValue{Key: key, Data: `{"v":2}`})
	require.Error(t, err)

	got, err := s.GetValue(ctx, &store.FindValue{Key: &key})
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, got.Data)
	assert.Equal(t, 1, driver.lists)
}

func TestStoreCloseDropsCachedValues(t *testing.T) {
	ctx := context.Background()
	driver := &countingDriver{DB: memory.NewDB()}
	s := store.New(driver)

	key := "daily_progress_v1"
	_, err := s.UpsertValue(ctx, &store.UpsertValue{Key: key, Data: "{}"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.GetValue(ctx, &store.FindValue{Key: &key})
	require.NoError(t, err)
	assert.Equal(t, 1, driver.lists, "closed store must read through to the driver")
}

func TestStoreListValuesByPrefix(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.NewDB())
	defer s.Close()

	for _, key := range []string{"study_progress_v1", "study_progress_v2", "daily_progress_v1"} {
		_, err := s.UpsertValue(ctx, &store.UpsertValue{Key: key, Data: "{}"})
		require.NoError(t, err)
	}
	prefix := "study_progress_"
	list, err := s.ListValues(ctx, &store.FindValue{KeyPrefix: &prefix})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "study_progress_v1", list[0].Key)
}

func TestStoreRequiresKey(t *testing.T) {
	s := store.New(memory.NewDB())
	defer s.Close()

	_, err := s.GetValue(context.Background(), &store.FindValue{})
	assert.Error(t, err)
	_, err = s.UpsertValue(context.Background(), &store.UpsertValue{})
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `study\_progress\%`, store.EscapeLike("study_progress%"))
}
