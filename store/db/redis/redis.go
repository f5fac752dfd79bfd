// Package redis stores game state in Redis hashes, one hash per key.
package redis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hrygo/musclequiz/internal/profile"
	"github.com/hrygo/musclequiz/store"
)

// KeyPrefix namespaces every key this driver writes.
const KeyPrefix = "musclequiz:"

const (
	fieldData      = "data"
	fieldUpdatedTs = "updated_ts"
)

type DB struct {
	client *goredis.Client
	prefix string
}

// NewDB connects to the Redis URL in profile.DSN (e.g. redis://localhost:6379/0).
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	opts, err := goredis.ParseURL(profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse redis url")
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to ping redis")
	}
	return NewWithClient(client, KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) *DB {
	return &DB{client: client, prefix: prefix}
}

func (d *DB) Close() error {
	return d.client.Close()
}

// Migrate is a no-op: hashes need no schema.
func (d *DB) Migrate(_ context.Context) error {
	return nil
}

func (d *DB) UpsertValue(ctx context.Context, upsert *store.UpsertValue) (*store.Value, error) {
	now := time.Now().Unix()
	err := d.client.HSet(ctx, d.prefix+upsert.Key,
		fieldData, upsert.Data,
		fieldUpdatedTs, now,
	).Err()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upsert %s", upsert.Key)
	}
	return &store.Value{Key: upsert.Key, Data: upsert.Data, UpdatedTs: now}, nil
}

func (d *DB) ListValues(ctx context.Context, find *store.FindValue) ([]*store.Value, error) {
	if find.Key != nil {
		value, err := d.get(ctx, *find.Key)
		if err != nil || value == nil {
			return []*store.Value{}, err
		}
		if find.KeyPrefix != nil && !strings.HasPrefix(value.Key, *find.KeyPrefix) {
			return []*store.Value{}, nil
		}
		return []*store.Value{value}, nil
	}

	pattern := d.prefix + "*"
	if find.KeyPrefix != nil {
		pattern = d.prefix + escapeGlob(*find.KeyPrefix) + "*"
	}
	list := []*store.Value{}
	iter := d.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		value, err := d.get(ctx, strings.TrimPrefix(iter.Val(), d.prefix))
		if err != nil {
			return nil, err
		}
		if value != nil {
			list = append(list, value)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan keys")
	}
	return list, nil
}

func (d *DB) DeleteValue(ctx context.Context, delete *store.DeleteValue) error {
	if err := d.client.Del(ctx, d.prefix+delete.Key).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete %s", delete.Key)
	}
	return nil
}

func (d *DB) get(ctx context.Context, key string) (*store.Value, error) {
	fields, err := d.client.HGetAll(ctx, d.prefix+key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", key)
	}
	data, ok := fields[fieldData]
	if !ok {
		return nil, nil
	}
	ts, _ := strconv.ParseInt(fields[fieldUpdatedTs], 10, 64)
	return &store.Value{Key: key, Data: data, UpdatedTs: ts}, nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
