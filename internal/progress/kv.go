package progress

import (
	"context"

	"github.com/hrygo/musclequiz/store"
)

// KVStore adapts store.Store to Store.
type KVStore struct {
	store *store.Store
}

// NewKVStore wraps s.
func NewKVStore(s *store.Store) *KVStore {
	return &KVStore{store: s}
}

func (k *KVStore) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := k.store.GetValue(ctx, &store.FindValue{Key: &key})
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, ErrNotFound
	}
	return []byte(value.Data), nil
}

func (k *KVStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := k.store.UpsertValue(ctx, &store.UpsertValue{Key: key, Data: string(data)})
	return err
}

func (k *KVStore) Delete(ctx context.Context, key string) error {
	return k.store.DeleteValue(ctx, &store.DeleteValue{Key: key})
}

func (k *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	list, err := k.store.ListValues(ctx, &store.FindValue{KeyPrefix: &prefix})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(list))
	for _, value := range list {
		keys = append(keys, value.Key)
	}
	return keys, nil
}
