package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/musclequiz/store"
)

func (d *DB) UpsertValue(ctx context.Context, upsert *store.UpsertValue) (*store.Value, error) {
	stmt := `INSERT INTO game_state (name, data, updated_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (name) DO UPDATE SET
			data = excluded.data,
			updated_ts = excluded.updated_ts
		RETURNING name, data, updated_ts`

	value := &store.Value{}
	err := d.db.QueryRowContext(ctx, stmt, upsert.Key, upsert.Data, time.Now().Unix()).Scan(
		&value.Key,
		&value.Data,
		&value.UpdatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert game_state: %w", err)
	}
	return value, nil
}

func (d *DB) ListValues(ctx context.Context, find *store.FindValue) ([]*store.Value, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.Key; v != nil {
		where, args = append(where, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.KeyPrefix; v != nil {
		where, args = append(where, "name LIKE "+placeholder(len(args)+1)+` ESCAPE '\'`), append(args, store.EscapeLike(*v)+"%")
	}

	query := `SELECT name, data, updated_ts FROM game_state WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list game_state: %w", err)
	}
	defer rows.Close()

	list := []*store.Value{}
	for rows.Next() {
		value := &store.Value{}
		if err := rows.Scan(&value.Key, &value.Data, &value.UpdatedTs); err != nil {
			return nil, err
		}
		list = append(list, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteValue(ctx context.Context, delete *store.DeleteValue) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM game_state WHERE name = `+placeholder(1), delete.Key); err != nil {
		return fmt.Errorf("failed to delete game_state: %w", err)
	}
	return nil
}
