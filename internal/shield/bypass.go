package shield

import "sync"

// BypassRegistry tracks one-time URL bypasses that are allowed through the
// engine. In-memory only; cleared on restart.
type BypassRegistry struct {
	mu      sync.Mutex
	allowed map[string]bool
}

// NewBypassRegistry creates a new bypass registry.
func NewBypassRegistry() *BypassRegistry {
	return &BypassRegistry{allowed: make(map[string]bool)}
}

// AllowOnce marks a URL as allowed for a single classification. The next
// consume for this URL returns true and removes the entry.
func (r *BypassRegistry) AllowOnce(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowed[url] = true
}

// consume reports whether the URL has a pending bypass, removing it so the
// bypass is only valid for one classification.
func (r *BypassRegistry) consume(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.allowed[url] {
		delete(r.allowed, url)
		return true
	}
	return false
}

// Clear removes all pending bypasses.
func (r *BypassRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowed = make(map[string]bool)
}

// Count returns the number of pending bypasses.
func (r *BypassRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.allowed)
}
