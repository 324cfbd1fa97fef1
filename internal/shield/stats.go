package shield

import "time"

// estimatedBytesPerBlockedRequest is the flat bandwidth credit recorded per
// blocked request. Real transfer sizes are unknown at decision time.
const estimatedBytesPerBlockedRequest = 30 * 1024

// GlobalStats holds the process-wide rolling counters. Counters only move as
// a side effect of a successful per-domain increment and only reset on an
// explicit Reset.
type GlobalStats struct {
	TotalAdsBlocked      uint64    `json:"total_ads_blocked"`
	TotalTrackersBlocked uint64    `json:"total_trackers_blocked"`
	TotalScriptsBlocked  uint64    `json:"total_scripts_blocked"`
	BandwidthSaved       uint64    `json:"bandwidth_saved"`
	LastReset            time.Time `json:"last_reset"`
}

func (s *GlobalStats) reset() {
	*s = GlobalStats{LastReset: time.Now()}
}
