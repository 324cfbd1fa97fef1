package shield

import "time"

// Block categories accepted by IncrementBlocked.
const (
	CategoryAd      = "ad"
	CategoryTracker = "tracker"
	CategoryScript  = "script"
)

// SiteShields is the per-domain protection configuration and its block
// counters.
type SiteShields struct {
	Domain                   string    `json:"domain"`
	AdBlocking               bool      `json:"ad_blocking"`
	TrackerBlocking          bool      `json:"tracker_blocking"`
	ThirdPartyCookies        bool      `json:"third_party_cookies"`
	FingerprintingProtection bool      `json:"fingerprinting_protection"`
	HTTPSOnly                bool      `json:"https_only"`
	ScriptsBlocked           uint64    `json:"scripts_blocked"`
	TrackersBlocked          uint64    `json:"trackers_blocked"`
	AdsBlocked               uint64    `json:"ads_blocked"`
	LastUpdated              time.Time `json:"last_updated"`
}

// DefaultSiteShields returns the protection defaults synthesized for a domain
// that has no persisted entry.
func DefaultSiteShields(domain string) SiteShields {
	return SiteShields{
		Domain:                   domain,
		AdBlocking:               true,
		TrackerBlocking:          true,
		ThirdPartyCookies:        false,
		FingerprintingProtection: true,
		HTTPSOnly:                true,
		LastUpdated:              time.Now(),
	}
}

// shieldRegistry owns all persisted SiteShields entries. Reads for unknown
// domains synthesize defaults without inserting anything; only an explicit
// update persists an entry. Unsynchronized; the engine facade serializes
// access.
type shieldRegistry struct {
	entries map[string]*SiteShields
}

func newShieldRegistry() *shieldRegistry {
	return &shieldRegistry{entries: make(map[string]*SiteShields)}
}

// lookup returns the persisted entry, if any.
func (r *shieldRegistry) lookup(domain string) (*SiteShields, bool) {
	s, ok := r.entries[domain]
	return s, ok
}

// get returns a copy of the persisted entry, or synthesized defaults. It
// never mutates the registry.
func (r *shieldRegistry) get(domain string) SiteShields {
	if s, ok := r.entries[domain]; ok {
		return *s
	}
	return DefaultSiteShields(domain)
}

// update upserts the entry for a domain, replacing it in full. A zero
// LastUpdated is stamped with the current time; a nonzero one is preserved so
// restored entries keep their original timestamp.
func (r *shieldRegistry) update(domain string, shields SiteShields) {
	shields.Domain = domain
	if shields.LastUpdated.IsZero() {
		shields.LastUpdated = time.Now()
	}
	r.entries[domain] = &shields
}

// increment bumps the counter for a category on an existing entry and the
// matching global counter. A domain with no persisted entry is a silent no-op
// for both counters, keeping per-domain and global stats consistent.
func (r *shieldRegistry) increment(domain, category string, stats *GlobalStats) bool {
	s, ok := r.entries[domain]
	if !ok {
		return false
	}

	switch category {
	case CategoryAd:
		s.AdsBlocked++
		stats.TotalAdsBlocked++
	case CategoryTracker:
		s.TrackersBlocked++
		stats.TotalTrackersBlocked++
	case CategoryScript:
		s.ScriptsBlocked++
		stats.TotalScriptsBlocked++
	default:
		return false
	}

	stats.BandwidthSaved += estimatedBytesPerBlockedRequest
	s.LastUpdated = time.Now()
	return true
}

// all returns copies of every persisted entry, in unspecified order.
func (r *shieldRegistry) all() []SiteShields {
	out := make([]SiteShields, 0, len(r.entries))
	for _, s := range r.entries {
		out = append(out, *s)
	}
	return out
}
