package database

import (
	"database/sql"
	"fmt"
	"time"
)

const lastRefreshKey = "last_refresh"

type MetaRepo struct {
	db *DB
}

var _ MetaRepository = (*MetaRepo)(nil)

func NewMetaRepository(db *DB) *MetaRepo {
	return &MetaRepo{db: db}
}

func (r *MetaRepo) GetLastRefresh() (*time.Time, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, lastRefreshKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last refresh: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("invalid last refresh value %q: %w", value, err)
	}
	return &t, nil
}

func (r *MetaRepo) SetLastRefresh(t time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastRefreshKey, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set last refresh: %w", err)
	}
	return nil
}

// NeedsRefresh is true when no refresh was recorded or the last one is older
// than interval.
func (r *MetaRepo) NeedsRefresh(interval time.Duration, now time.Time) (bool, error) {
	last, err := r.GetLastRefresh()
	if err != nil {
		return true, err
	}
	if last == nil {
		return true, nil
	}
	return now.Sub(*last) >= interval, nil
}
