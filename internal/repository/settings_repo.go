package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetOrCreateBool returns the stored flag, inserting def first if the key is absent.
func (r *SettingsRepo) GetOrCreateBool(ctx context.Context, key string, def bool) (bool, error) {
	q := conn(ctx, r.db)

	insert := `
		INSERT INTO settings (key, bool_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO NOTHING
	`
	if _, err := q.ExecContext(ctx, insert, key, def); err != nil {
		return false, fmt.Errorf("init setting %s: %w", key, err)
	}

	var v bool
	if err := q.QueryRowContext(ctx, `SELECT bool_value FROM settings WHERE key = $1`, key).Scan(&v); err != nil {
		return false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return v, nil
}

func (r *SettingsRepo) SetBool(ctx context.Context, key string, value bool) (bool, error) {
	query := `
		INSERT INTO settings (key, bool_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET bool_value = EXCLUDED.bool_value, updated_at = NOW()
		RETURNING bool_value
	`
	var v bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, key, value).Scan(&v); err != nil {
		return false, fmt.Errorf("write setting %s: %w", key, err)
	}
	return v, nil
}
