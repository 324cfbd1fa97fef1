package shield

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Engine is the sole externally visible entry point of the filtering core.
// It composes the rule store, the site shield registry and the global stats
// under one reader-writer lock covering the full aggregate state.
//
// Classification and reads take the shared lock and run concurrently; every
// mutation takes the exclusive lock. IncrementBlocked deliberately takes the
// exclusive lock even though it touches a single entry so that the per-domain
// and global counters move atomically.
type Engine struct {
	mu      sync.RWMutex
	store   *ruleStore
	shields *shieldRegistry
	stats   GlobalStats
	bypass  *BypassRegistry
	log     zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger to the engine. The default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine with the given filter lists registered empty,
// in order. Rules arrive later through refresh, cache load or import.
func NewEngine(sources []ListSource, opts ...Option) *Engine {
	e := &Engine{
		store:   newRuleStore(),
		shields: newShieldRegistry(),
		stats:   GlobalStats{LastReset: time.Now()},
		bypass:  NewBypassRegistry(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, src := range sources {
		e.store.addList(&FilterList{
			Name:        src.Name,
			SourceURL:   src.URL,
			Enabled:     src.Enabled,
			LastUpdated: time.Now(),
		})
	}
	return e
}

// ShouldBlock decides whether an outbound request should be blocked.
//
// Order of evaluation:
//  1. a pending one-shot bypass for the exact URL allows the request
//  2. an unparsable URL fails open (never blocked)
//  3. a persisted shields entry with both ad and tracker blocking disabled
//     short-circuits to allowed, overriding every rule
//  4. with third-party cookie blocking enabled for the origin, any request to
//     a different domain is blocked before rules are consulted
//  5. enabled lists are scanned in insertion order, rules in stored order;
//     the first Block or Allow match decides
//  6. no decision means not blocked
func (e *Engine) ShouldBlock(rawURL, resourceType, originDomain string) bool {
	if e.bypass.consume(rawURL) {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	targetDomain := parsed.Hostname()

	e.mu.RLock()
	defer e.mu.RUnlock()

	if shields, ok := e.shields.lookup(originDomain); ok {
		if !shields.AdBlocking && !shields.TrackerBlocking {
			return false
		}
		if shields.ThirdPartyCookies && targetDomain != originDomain {
			e.log.Debug().Str("url", rawURL).Str("origin", originDomain).
				Msg("blocked third-party request")
			return true
		}
	}

	switch e.store.scan(rawURL, resourceType, originDomain) {
	case verdictBlock:
		e.log.Debug().Str("url", rawURL).Str("type", resourceType).
			Str("origin", originDomain).Msg("blocked by rule")
		return true
	case verdictAllow:
		return false
	}
	return false
}

// AllowOnce registers a one-shot bypass for the exact URL.
func (e *Engine) AllowOnce(rawURL string) {
	e.bypass.AllowOnce(rawURL)
}

// GetShields returns the shields for a domain, synthesizing defaults for
// unknown domains without persisting anything.
func (e *Engine) GetShields(domain string) SiteShields {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shields.get(domain)
}

// UpdateShields upserts the full shields entry for a domain.
func (e *Engine) UpdateShields(domain string, shields SiteShields) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shields.update(domain, shields)
}

// AllShields returns every persisted shields entry. Domains only ever read
// through GetShields are not included.
func (e *Engine) AllShields() []SiteShields {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shields.all()
}

// IncrementBlocked records a blocked request against a domain's counters and
// the matching global counter. For a domain with no persisted shields entry
// the increment is silently dropped on both sides.
func (e *Engine) IncrementBlocked(domain, category string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shields.increment(domain, category, &e.stats)
}

// Stats returns a copy of the global counters.
func (e *Engine) Stats() GlobalStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// ResetStats zeroes all global counters and stamps the reset time.
func (e *Engine) ResetStats() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.reset()
	e.log.Info().Msg("global stats reset")
}

// Lists returns summaries of all registered lists in scan order.
func (e *Engine) Lists() []ListInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.infos()
}

// List returns the summary for a single list.
func (e *Engine) List(name string) (ListInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	l, ok := e.store.get(name)
	if !ok {
		return ListInfo{}, fmt.Errorf("%w: %s", ErrListNotFound, name)
	}
	return l.info(), nil
}

// AddList registers a new, empty list at the end of the scan order.
func (e *Engine) AddList(name, sourceURL string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.addList(&FilterList{
		Name:        name,
		SourceURL:   sourceURL,
		Enabled:     enabled,
		LastUpdated: time.Now(),
	}) {
		return fmt.Errorf("%w: %s", ErrListExists, name)
	}
	return nil
}

// RemoveList unregisters a list.
func (e *Engine) RemoveList(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.removeList(name) {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}
	return nil
}

// SetListEnabled toggles a list in or out of the scan.
func (e *Engine) SetListEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.store.get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}
	l.Enabled = enabled
	return nil
}

// AddRule appends a custom rule to a list. This is the configuration path
// that attaches domain scopes, exceptions and resource flags, which list
// syntax never provides.
func (e *Engine) AddRule(listName string, rule Rule) error {
	if rule.Pattern == "" {
		return ErrEmptyPattern
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.store.get(listName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, listName)
	}
	l.Rules = append(l.Rules, rule)
	l.LastUpdated = time.Now()
	return nil
}

// RemoveRule removes the first rule with the given pattern from a list.
func (e *Engine) RemoveRule(listName, pattern string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.store.get(listName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, listName)
	}
	for i := range l.Rules {
		if l.Rules[i].Pattern == pattern {
			l.Rules = append(l.Rules[:i], l.Rules[i+1:]...)
			l.LastUpdated = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, pattern)
}

// ReplaceRules atomically swaps in a new rule sequence for a list. Readers
// never observe a partially replaced list.
func (e *Engine) ReplaceRules(name string, rules []Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.replaceRules(name, rules, time.Now()) {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}
	return nil
}

// CompilePattern caches a compiled matcher for the exact pattern text.
// Compiled and uncompiled matching must agree; compilation is an optimization
// layer, never a semantic change.
func (e *Engine) CompilePattern(pattern, expr string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.compilePattern(pattern, expr); err != nil {
		return fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return nil
}

// DropCompiledPattern removes a cached matcher, reverting the pattern to
// substring containment.
func (e *Engine) DropCompiledPattern(pattern string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.dropCompiledPattern(pattern)
}

// listSources snapshots the enabled lists for the updater so network fetches
// happen without any lock held.
func (e *Engine) listSources() []ListSource {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sources := make([]ListSource, 0, len(e.store.lists))
	for _, l := range e.store.lists {
		if l.Enabled && l.SourceURL != "" {
			sources = append(sources, ListSource{Name: l.Name, URL: l.SourceURL, Enabled: true})
		}
	}
	return sources
}
