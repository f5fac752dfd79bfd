package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/musclequiz/store/cache"
)

// Store provides access to persisted game state.
type Store struct {
	driver Driver

	// Cache settings
	cacheConfig cache.Config

	valueCache *cache.Cache // cache for values by key
}

// New creates a new instance of Store.
func New(driver Driver) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        256,
		OnEviction:      nil,
	}

	return &Store{
		driver:      driver,
		cacheConfig: cacheConfig,
		valueCache:  cache.New(cacheConfig),
	}
}

// Migrate prepares the driver's schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.driver.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to migrate store")
	}
	return nil
}

// Close drops cached values, stops the cache and closes the driver.
func (s *Store) Close() error {
	s.valueCache.Clear(context.Background())
	// Stop the cache cleanup goroutine
	s.valueCache.Close()

	return s.driver.Close()
}

// GetValue returns the value for find.Key, or nil when the key is absent.
func (s *Store) GetValue(ctx context.Context, find *FindValue) (*Value, error) {
	if find == nil || find.Key == nil {
		return nil, errors.New("key is required")
	}
	if cached, ok := s.valueCache.Get(ctx, *find.Key); ok {
		if value, ok := cached.(*Value); ok {
			return value.clone(), nil
		}
	}

	list, err := s.driver.ListValues(ctx, &FindValue{Key: find.Key})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	value := list[0]
	s.valueCache.Set(ctx, value.Key, value.clone())
	return value, nil
}

// ListValues reads through to the driver; prefix listings are not cached.
func (s *Store) ListValues(ctx context.Context, find *FindValue) ([]*Value, error) {
	return s.driver.ListValues(ctx, find)
}

func (s *Store) UpsertValue(ctx context.Context, upsert *UpsertValue) (*Value, error) {
	if upsert.Key == "" {
		return nil, errors.New("key is required")
	}
	value, err := s.driver.UpsertValue(ctx, upsert)
	if err != nil {
		// The cached copy may no longer match what the driver holds.
		s.valueCache.Delete(ctx, upsert.Key)
		return nil, err
	}
	s.valueCache.Set(ctx, value.Key, value.clone())
	return value, nil
}

func (s *Store) DeleteValue(ctx context.Context, delete *DeleteValue) error {
	s.valueCache.Delete(ctx, delete.Key)
	return s.driver.DeleteValue(ctx, delete)
}
