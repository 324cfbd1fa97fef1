package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sw3do/sw3do-browser/internal/logging"
	"github.com/sw3do/sw3do-browser/internal/shield"
)

// ShieldRepository persists per-domain SiteShields entries.
type ShieldRepository struct {
	db *sql.DB
}

// NewShieldRepository creates a SQLite-backed shield repository.
func NewShieldRepository(db *sql.DB) *ShieldRepository {
	return &ShieldRepository{db: db}
}

// Upsert stores a shields entry, replacing any previous row for the domain.
func (r *ShieldRepository) Upsert(ctx context.Context, s shield.SiteShields) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("domain", s.Domain).Msg("saving site shields")

	const q = `INSERT INTO site_shields (
		domain, ad_blocking, tracker_blocking, third_party_cookies,
		fingerprinting_protection, https_only,
		scripts_blocked, trackers_blocked, ads_blocked, last_updated
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(domain) DO UPDATE SET
		ad_blocking = excluded.ad_blocking,
		tracker_blocking = excluded.tracker_blocking,
		third_party_cookies = excluded.third_party_cookies,
		fingerprinting_protection = excluded.fingerprinting_protection,
		https_only = excluded.https_only,
		scripts_blocked = excluded.scripts_blocked,
		trackers_blocked = excluded.trackers_blocked,
		ads_blocked = excluded.ads_blocked,
		last_updated = excluded.last_updated`

	_, err := r.db.ExecContext(ctx, q,
		s.Domain,
		boolToInt(s.AdBlocking), boolToInt(s.TrackerBlocking), boolToInt(s.ThirdPartyCookies),
		boolToInt(s.FingerprintingProtection), boolToInt(s.HTTPSOnly),
		s.ScriptsBlocked, s.TrackersBlocked, s.AdsBlocked,
		s.LastUpdated.Unix(),
	)
	return err
}

// Get returns the persisted entry for a domain, or (nil, nil) when absent.
func (r *ShieldRepository) Get(ctx context.Context, domain string) (*shield.SiteShields, error) {
	const q = `SELECT domain, ad_blocking, tracker_blocking, third_party_cookies,
		fingerprinting_protection, https_only,
		scripts_blocked, trackers_blocked, ads_blocked, last_updated
	FROM site_shields WHERE domain = ?`

	s, err := scanShields(r.db.QueryRowContext(ctx, q, domain))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetAll returns every persisted entry.
func (r *ShieldRepository) GetAll(ctx context.Context) ([]shield.SiteShields, error) {
	const q = `SELECT domain, ad_blocking, tracker_blocking, third_party_cookies,
		fingerprinting_protection, https_only,
		scripts_blocked, trackers_blocked, ads_blocked, last_updated
	FROM site_shields ORDER BY domain`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var all []shield.SiteShields
	for rows.Next() {
		s, err := scanShields(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, *s)
	}
	return all, rows.Err()
}

// Delete removes the entry for a domain.
func (r *ShieldRepository) Delete(ctx context.Context, domain string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM site_shields WHERE domain = ?", domain)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShields(row rowScanner) (*shield.SiteShields, error) {
	var s shield.SiteShields
	var adBlocking, trackerBlocking, thirdParty, fingerprinting, httpsOnly int
	var lastUpdated int64

	if err := row.Scan(
		&s.Domain, &adBlocking, &trackerBlocking, &thirdParty,
		&fingerprinting, &httpsOnly,
		&s.ScriptsBlocked, &s.TrackersBlocked, &s.AdsBlocked, &lastUpdated,
	); err != nil {
		return nil, err
	}

	s.AdBlocking = adBlocking != 0
	s.TrackerBlocking = trackerBlocking != 0
	s.ThirdPartyCookies = thirdParty != 0
	s.FingerprintingProtection = fingerprinting != 0
	s.HTTPSOnly = httpsOnly != 0
	s.LastUpdated = time.Unix(lastUpdated, 0)
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
