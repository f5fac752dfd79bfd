package store

import (
	"context"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	Close() error

	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	// Value model related methods.
	UpsertValue(ctx context.Context, upsert *UpsertValue) (*Value, error)
	ListValues(ctx context.Context, find *FindValue) ([]*Value, error)
	DeleteValue(ctx context.Context, delete *DeleteValue) error
}
