package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// ThemeKey is the settings key holding the UI theme preference.
const ThemeKey = "theme"

// Setting returns one setting by key, or (zero, false, nil) when unset.
func (s *Store) Setting(ctx context.Context, key string) (Setting, bool, error) {
	var (
		st    Setting
		value string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT key, value FROM settings WHERE key = ?", key).
		Scan(&st.Key, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return Setting{}, false, nil
	}
	if err != nil {
		return Setting{}, false, s.fail("settings.get", err)
	}
	st.Value = json.RawMessage(value)
	return st, true, nil
}

// Settings returns all setting rows.
func (s *Store) Settings(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, s.fail("settings.all", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var (
			st    Setting
			value string
		)
		if err := rows.Scan(&st.Key, &value); err != nil {
			return nil, s.fail("settings.all", err)
		}
		st.Value = json.RawMessage(value)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("settings.all", err)
	}
	return out, nil
}

// PutSetting inserts or replaces a setting by key.
func (s *Store) PutSetting(ctx context.Context, st Setting) error {
	if len(st.Value) == 0 {
		st.Value = json.RawMessage("null")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		st.Key, string(st.Value))
	if err != nil {
		return s.fail("settings.put", err)
	}
	return nil
}

// ClearSettings removes every setting row. Not part of ResetAll; theme
// survives a reset.
func (s *Store) ClearSettings(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return s.fail("settings.clear", err)
	}
	return nil
}

// Theme returns the persisted theme preference, defaulting to "light"
// when unset or when the stored value is not a known theme.
func (s *Store) Theme(ctx context.Context) string {
	st, ok, err := s.Setting(ctx, ThemeKey)
	if err != nil || !ok {
		return "light"
	}
	var theme string
	if err := json.Unmarshal(st.Value, &theme); err != nil {
		return "light"
	}
	if theme != "light" && theme != "dark" {
		return "light"
	}
	return theme
}

// SetTheme persists the theme preference. Unknown values are rejected at
// the API layer; this just stores.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	value, err := json.Marshal(theme)
	if err != nil {
		return s.fail("settings.put", err)
	}
	return s.PutSetting(ctx, Setting{Key: ThemeKey, Value: value})
}
