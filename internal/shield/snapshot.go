package shield

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the full engine state as opaque structured data, for an
// external store to persist across restarts.
type Snapshot struct {
	Lists      []FilterList  `json:"lists"`
	Shields    []SiteShields `json:"shields"`
	Stats      GlobalStats   `json:"stats"`
	ExportedAt time.Time     `json:"exported_at"`
}

// Export copies the full aggregate state.
func (e *Engine) Export() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	lists := make([]FilterList, 0, len(e.store.lists))
	for _, l := range e.store.lists {
		copied := *l
		copied.Rules = append([]Rule(nil), l.Rules...)
		lists = append(lists, copied)
	}

	return Snapshot{
		Lists:      lists,
		Shields:    e.shields.all(),
		Stats:      e.stats,
		ExportedAt: time.Now(),
	}
}

// Import replaces the full aggregate state with the snapshot's. List order in
// the snapshot becomes the scan order. The compiled-pattern cache is left
// untouched; it is an optimization layer, not state.
func (e *Engine) Import(snap Snapshot) error {
	store := newRuleStore()
	for i := range snap.Lists {
		l := snap.Lists[i]
		l.Rules = append([]Rule(nil), snap.Lists[i].Rules...)
		if !store.addList(&l) {
			return fmt.Errorf("%w: %s", ErrListExists, l.Name)
		}
	}

	registry := newShieldRegistry()
	for i := range snap.Shields {
		s := snap.Shields[i]
		registry.entries[s.Domain] = &s
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	store.compiled = e.store.compiled
	e.store = store
	e.shields = registry
	e.stats = snap.Stats
	return nil
}

// MarshalSnapshot serializes a snapshot to JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// UnmarshalSnapshot deserializes a snapshot from JSON.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
