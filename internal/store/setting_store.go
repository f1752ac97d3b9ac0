package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SettingStore is a flat key/value table for user preferences.
type SettingStore struct {
	db *sql.DB
}

func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

// All returns every stored setting.
func (s *SettingStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer closeRows(rows)

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return settings, nil
}

// Get returns the value of key and whether it is set.
func (s *SettingStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting: %w", err)
	}
	return value, true, nil
}

// SetMany upserts every pair in values in one transaction.
func (s *SettingStore) SetMany(ctx context.Context, values map[string]string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for key, value := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO settings (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
			`, key, value)
			if err != nil {
				return fmt.Errorf("failed to save setting %q: %w", key, err)
			}
		}
		return nil
	})
}
