package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sw3do/sw3do-browser/internal/shield"
)

// ListStateRepository persists per-list enablement and update times. Rule
// bodies live in the on-disk rule cache, not the database.
type ListStateRepository struct {
	db *sql.DB
}

// NewListStateRepository creates a SQLite-backed list state repository.
func NewListStateRepository(db *sql.DB) *ListStateRepository {
	return &ListStateRepository{db: db}
}

// Upsert stores the state of a list.
func (r *ListStateRepository) Upsert(ctx context.Context, info shield.ListInfo) error {
	const q = `INSERT INTO filter_list_state (name, source_url, enabled, last_updated)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		source_url = excluded.source_url,
		enabled = excluded.enabled,
		last_updated = excluded.last_updated`

	_, err := r.db.ExecContext(ctx, q,
		info.Name, info.SourceURL, boolToInt(info.Enabled), info.LastUpdated.Unix(),
	)
	return err
}

// GetAll returns the state of every known list.
func (r *ListStateRepository) GetAll(ctx context.Context) ([]shield.ListInfo, error) {
	const q = `SELECT name, source_url, enabled, last_updated FROM filter_list_state ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var all []shield.ListInfo
	for rows.Next() {
		var info shield.ListInfo
		var enabled int
		var lastUpdated int64
		if err := rows.Scan(&info.Name, &info.SourceURL, &enabled, &lastUpdated); err != nil {
			return nil, err
		}
		info.Enabled = enabled != 0
		info.LastUpdated = time.Unix(lastUpdated, 0)
		all = append(all, info)
	}
	return all, rows.Err()
}

// Get returns the state of a single list, or (nil, nil) when absent.
func (r *ListStateRepository) Get(ctx context.Context, name string) (*shield.ListInfo, error) {
	const q = `SELECT name, source_url, enabled, last_updated FROM filter_list_state WHERE name = ?`

	var info shield.ListInfo
	var enabled int
	var lastUpdated int64
	err := r.db.QueryRowContext(ctx, q, name).Scan(&info.Name, &info.SourceURL, &enabled, &lastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	info.Enabled = enabled != 0
	info.LastUpdated = time.Unix(lastUpdated, 0)
	return &info, nil
}
