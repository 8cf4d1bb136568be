// Package settings persists the user-settings subtree of the
// application state to SQLite and rehydrates it at startup. Writes go
// through the reducer before they ever reach this package; the startup
// load is merged into the initial snapshot verbatim, without per-key
// validation, so malformed persisted data degrades a setting instead of
// failing startup.
package settings

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/driveburn/driveburn/pkg/errors"
	_ "modernc.org/sqlite"
)

// Repository stores the settings subtree as flat key/value rows.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the settings database.
func NewRepository(dbPath string) (*Repository, error) {
	slog.Info("settings_db_init", "db_path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("settings_db_open_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to open settings database")
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		slog.Error("settings_db_schema_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to create settings schema")
	}

	slog.Info("settings_db_ready", "db_path", dbPath)
	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Load returns the persisted settings map, or nil when nothing has been
// persisted yet. Rows whose value fails to decode are kept as their raw
// text rather than dropped.
func (r *Repository) Load() (map[string]any, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		slog.Error("settings_load_failed", "error", err)
		return nil, errors.Wrap(err, "failed to load settings")
	}
	defer rows.Close()

	var loaded map[string]any
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			slog.Error("settings_scan_failed", "error", err)
			return nil, errors.Wrap(err, "failed to scan settings row")
		}
		if loaded == nil {
			loaded = make(map[string]any)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			slog.Warn("settings_value_malformed", "key", key, "raw", raw)
			loaded[key] = raw
			continue
		}
		loaded[key] = value
	}
	if err := rows.Err(); err != nil {
		slog.Error("settings_rows_error", "error", err)
		return nil, errors.Wrap(err, "settings rows error")
	}

	slog.Info("settings_loaded", "key_count", len(loaded))
	return loaded, nil
}

// Save replaces the persisted settings with the given map in one
// transaction.
func (r *Repository) Save(values map[string]any) error {
	tx, err := r.db.Begin()
	if err != nil {
		slog.Error("settings_save_begin_failed", "error", err)
		return errors.Wrap(err, "failed to begin settings transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM settings`); err != nil {
		slog.Error("settings_save_clear_failed", "error", err)
		return errors.Wrap(err, "failed to clear settings")
	}

	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			slog.Error("settings_encode_failed", "key", key, "error", err)
			return errors.Wrapf(err, "failed to encode setting %q", key)
		}
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, key, string(raw)); err != nil {
			slog.Error("settings_save_insert_failed", "key", key, "error", err)
			return errors.Wrapf(err, "failed to persist setting %q", key)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("settings_save_commit_failed", "error", err)
		return errors.Wrap(err, "failed to commit settings")
	}

	slog.Info("settings_saved", "key_count", len(values))
	return nil
}

// Reset drops all persisted settings so the next startup begins from
// defaults.
func (r *Repository) Reset() error {
	if _, err := r.db.Exec(`DELETE FROM settings`); err != nil {
		slog.Error("settings_reset_failed", "error", err)
		return errors.Wrap(err, "failed to reset settings")
	}
	slog.Info("settings_reset")
	return nil
}
