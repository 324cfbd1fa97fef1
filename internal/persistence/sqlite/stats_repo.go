package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sw3do/sw3do-browser/internal/shield"
)

// StatsRepository persists the single global stats row.
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a SQLite-backed stats repository.
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Save stores the global counters.
func (r *StatsRepository) Save(ctx context.Context, stats shield.GlobalStats) error {
	const q = `INSERT INTO global_stats (
		id, total_ads_blocked, total_trackers_blocked, total_scripts_blocked,
		bandwidth_saved, last_reset
	) VALUES (1, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		total_ads_blocked = excluded.total_ads_blocked,
		total_trackers_blocked = excluded.total_trackers_blocked,
		total_scripts_blocked = excluded.total_scripts_blocked,
		bandwidth_saved = excluded.bandwidth_saved,
		last_reset = excluded.last_reset`

	_, err := r.db.ExecContext(ctx, q,
		stats.TotalAdsBlocked, stats.TotalTrackersBlocked, stats.TotalScriptsBlocked,
		stats.BandwidthSaved, stats.LastReset.Unix(),
	)
	return err
}

// Load returns the persisted counters, or zero-value stats when none exist.
func (r *StatsRepository) Load(ctx context.Context) (shield.GlobalStats, error) {
	const q = `SELECT total_ads_blocked, total_trackers_blocked, total_scripts_blocked,
		bandwidth_saved, last_reset
	FROM global_stats WHERE id = 1`

	var stats shield.GlobalStats
	var lastReset int64
	err := r.db.QueryRowContext(ctx, q).Scan(
		&stats.TotalAdsBlocked, &stats.TotalTrackersBlocked, &stats.TotalScriptsBlocked,
		&stats.BandwidthSaved, &lastReset,
	)
	if err == sql.ErrNoRows {
		return shield.GlobalStats{LastReset: time.Now()}, nil
	}
	if err != nil {
		return shield.GlobalStats{}, err
	}

	stats.LastReset = time.Unix(lastReset, 0)
	return stats, nil
}
