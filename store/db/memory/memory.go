// Package memory is a process-local driver. Nothing survives a restart; it
// backs tests and stands in when durable storage cannot be opened.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hrygo/musclequiz/store"
)

type DB struct {
	mu     sync.RWMutex
	values map[string]store.Value
}

// NewDB creates an empty in-memory driver.
func NewDB() *DB {
	return &DB{values: make(map[string]store.Value)}
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) Migrate(_ context.Context) error {
	return nil
}

func (d *DB) UpsertValue(_ context.Context, upsert *store.UpsertValue) (*store.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value := store.Value{Key: upsert.Key, Data: upsert.Data, UpdatedTs: time.Now().Unix()}
	d.values[upsert.Key] = value
	return &value, nil
}

func (d *DB) ListValues(_ context.Context, find *store.FindValue) ([]*store.Value, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := []*store.Value{}
	for key, value := range d.values {
		if find.Key != nil && key != *find.Key {
			continue
		}
		if find.KeyPrefix != nil && !strings.HasPrefix(key, *find.KeyPrefix) {
			continue
		}
		v := value
		list = append(list, &v)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}

func (d *DB) DeleteValue(_ context.Context, del *store.DeleteValue) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, del.Key)
	return nil
}
