package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"nullscape/preset"
)

type Database struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Database, error) {
	if dbPath == "" {
		dbPath = "data/nullscape.db"
	}

	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Infof("Database initialized at %s", dbPath)
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			quality_tags TEXT NOT NULL,
			negative_tags TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_presets_name ON presets(name)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// SetSetting inserts or replaces a setting value.
func (d *Database) SetSetting(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// AllSettings returns every stored setting.
func (d *Database) AllSettings() (map[string]string, error) {
	rows, err := d.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		result[key] = value
	}
	return result, rows.Err()
}

// PresetRecord is a stored preset row including timestamps.
type PresetRecord struct {
	preset.Preset
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPreset returns the preset with id, or nil when it does not exist.
func (d *Database) GetPreset(id string) (*preset.Preset, error) {
	record, err := d.GetPresetRecord(id)
	if err != nil || record == nil {
		return nil, err
	}
	p := record.Preset
	return &p, nil
}

// GetPresetRecord returns the full preset row, or nil when it does not exist.
func (d *Database) GetPresetRecord(id string) (*PresetRecord, error) {
	var r PresetRecord
	var createdAt, updatedAt int64
	err := d.db.QueryRow(
		`SELECT id, name, description, quality_tags, negative_tags, created_at, updated_at
		 FROM presets
		 WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Name, &r.Description, &r.QualityTags, &r.NegativeTags, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preset %s: %w", id, err)
	}
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	r.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &r, nil
}

// ListPresets returns preset summaries ordered by name.
func (d *Database) ListPresets(limit int) ([]preset.Summary, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := d.db.Query(
		`SELECT id, name
		 FROM presets
		 ORDER BY name ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}
	return scanSummaries(rows)
}

// SearchPresets matches query against id and name. Exact id matches come
// first, then id prefix matches, then everything else by name.
func (d *Database) SearchPresets(query string, limit int) ([]preset.Summary, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return d.ListPresets(limit)
	}
	if limit <= 0 {
		limit = 25
	}

	like := "%" + escapeLike(q) + "%"
	prefix := escapeLike(q) + "%"

	rows, err := d.db.Query(
		`SELECT id, name
		 FROM presets
		 WHERE id LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\'
		 ORDER BY
		   CASE WHEN id = ? THEN 0 ELSE 1 END,
		   CASE WHEN id LIKE ? ESCAPE '\' THEN 0 ELSE 1 END,
		   name ASC
		 LIMIT ?`,
		like, like, q, prefix, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search presets: %w", err)
	}
	return scanSummaries(rows)
}

// UpsertPreset inserts a preset or replaces every field of an existing one.
// created_at is kept on update.
func (d *Database) UpsertPreset(p preset.Preset) (*preset.Preset, error) {
	now := time.Now().UTC().UnixMilli()
	_, err := d.db.Exec(
		`INSERT INTO presets (id, name, description, quality_tags, negative_tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   quality_tags = excluded.quality_tags,
		   negative_tags = excluded.negative_tags,
		   updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Description, p.QualityTags, p.NegativeTags, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert preset %s: %w", p.ID, err)
	}

	stored, err := d.GetPreset(p.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("preset %s missing after upsert", p.ID)
	}
	return stored, nil
}

// DeletePreset removes a preset and reports whether a row was deleted.
func (d *Database) DeletePreset(id string) (bool, error) {
	res, err := d.db.Exec(`DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete preset %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}

func scanSummaries(rows *sql.Rows) ([]preset.Summary, error) {
	defer rows.Close()

	var items []preset.Summary
	for rows.Next() {
		var s preset.Summary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan preset row: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
