package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// SettingsStore persists cog settings.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a new SettingsStore.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value of key. ok is false when the key was never set.
func (s *SettingsStore) Get(ctx context.Context, scope Scope, scopeID, key string) (value string, ok bool, err error) {
	query := `SELECT value FROM settings WHERE scope = ? AND scope_id = ? AND key = ?`
	err = s.db.QueryRowContext(ctx, query, scope, scopeID, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("Get setting %s/%s/%s: %w", scope, scopeID, key, err)
	}
	return value, true, nil
}

// GetBool returns the boolean value of key, or def when unset.
func (s *SettingsStore) GetBool(ctx context.Context, scope Scope, scopeID, key string, def bool) (bool, error) {
	v, ok, err := s.Get(ctx, scope, scopeID, key)
	if err != nil || !ok {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("setting %s is not a bool: %w", key, err)
	}
	return b, nil
}

// Set creates or replaces the value of key.
func (s *SettingsStore) Set(ctx context.Context, scope Scope, scopeID, key, value string) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO settings (scope, scope_id, key, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, scope_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("Set setting prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, scope, scopeID, key, value); err != nil {
		return fmt.Errorf("Set setting exec: %w", err)
	}
	return nil
}

// SetBool stores a boolean value.
func (s *SettingsStore) SetBool(ctx context.Context, scope Scope, scopeID, key string, value bool) error {
	return s.Set(ctx, scope, scopeID, key, strconv.FormatBool(value))
}

// Clear removes key. Clearing an unset key is not an error.
func (s *SettingsStore) Clear(ctx context.Context, scope Scope, scopeID, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE scope = ? AND scope_id = ? AND key = ?`, scope, scopeID, key)
	if err != nil {
		return fmt.Errorf("Clear setting %s: %w", key, err)
	}
	return nil
}

// ClearScope removes every key of one scope entry (for example one guild).
func (s *SettingsStore) ClearScope(ctx context.Context, scope Scope, scopeID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE scope = ? AND scope_id = ?`, scope, scopeID)
	if err != nil {
		return fmt.Errorf("ClearScope %s/%s: %w", scope, scopeID, err)
	}
	return nil
}

// List returns every setting of one scope entry ordered by key.
func (s *SettingsStore) List(ctx context.Context, scope Scope, scopeID string) ([]*Setting, error) {
	query := `SELECT scope, scope_id, key, value, created_at, updated_at FROM settings WHERE scope = ? AND scope_id = ? ORDER BY key`
	rows, err := s.db.QueryContext(ctx, query, scope, scopeID)
	if err != nil {
		return nil, fmt.Errorf("List settings query: %w", err)
	}
	defer rows.Close()

	var settings []*Setting
	for rows.Next() {
		st := &Setting{}
		if err := rows.Scan(&st.Scope, &st.ScopeID, &st.Key, &st.Value, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("List settings scan: %w", err)
		}
		settings = append(settings, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("List settings rows error: %w", err)
	}
	return settings, nil
}
