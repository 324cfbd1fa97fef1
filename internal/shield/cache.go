package shield

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	cacheVersion    = 1
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// RuleCache persists parsed rule sequences on disk so a restart does not
// require refetching every list. Writes are atomic (tmp + rename) and reads
// are integrity-checked against a stored hash.
type RuleCache struct {
	dir      string
	metaFile string
}

type cacheMetadata struct {
	Version int                       `json:"version"`
	Entries map[string]cacheListEntry `json:"entries"`
}

type cacheListEntry struct {
	DataHash string    `json:"data_hash"`
	SavedAt  time.Time `json:"saved_at"`
}

// NewRuleCache creates a rule cache rooted at dir, creating it if needed.
func NewRuleCache(dir string) (*RuleCache, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &RuleCache{
		dir:      dir,
		metaFile: filepath.Join(dir, "metadata.json"),
	}, nil
}

// Save writes a list's rules to the cache.
func (c *RuleCache) Save(listName string, rules []Rule) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("serialize rules for %s: %w", listName, err)
	}

	path := c.listFile(listName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("write cache for %s: %w", listName, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move cache for %s: %w", listName, err)
	}

	meta := c.loadMetadata()
	meta.Entries[listName] = cacheListEntry{
		DataHash: fmt.Sprintf("%x", sha256.Sum256(data)),
		SavedAt:  time.Now(),
	}
	return c.saveMetadata(meta)
}

// Load reads a list's cached rules, verifying integrity. A missing entry or
// hash mismatch is an error; stale caches are the caller's policy.
func (c *RuleCache) Load(listName string) ([]Rule, time.Time, error) {
	meta := c.loadMetadata()
	entry, ok := meta.Entries[listName]
	if !ok {
		return nil, time.Time{}, fmt.Errorf("no cache entry for %s", listName)
	}

	data, err := os.ReadFile(c.listFile(listName))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read cache for %s: %w", listName, err)
	}

	if fmt.Sprintf("%x", sha256.Sum256(data)) != entry.DataHash {
		return nil, time.Time{}, fmt.Errorf("cache for %s: %w: hash mismatch", listName, ErrCacheCorrupted)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, time.Time{}, fmt.Errorf("cache for %s: %w: %v", listName, ErrCacheCorrupted, err)
	}
	return rules, entry.SavedAt, nil
}

// Invalidate removes a list's cache entry and data file.
func (c *RuleCache) Invalidate(listName string) error {
	if err := os.Remove(c.listFile(listName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache for %s: %w", listName, err)
	}
	meta := c.loadMetadata()
	delete(meta.Entries, listName)
	return c.saveMetadata(meta)
}

func (c *RuleCache) listFile(listName string) string {
	// List names come from config; keep filenames flat regardless.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, listName)
	return filepath.Join(c.dir, safe+".rules.json")
}

func (c *RuleCache) loadMetadata() *cacheMetadata {
	meta := &cacheMetadata{Version: cacheVersion, Entries: make(map[string]cacheListEntry)}
	data, err := os.ReadFile(c.metaFile)
	if err != nil {
		return meta
	}
	var loaded cacheMetadata
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Version != cacheVersion {
		return meta
	}
	if loaded.Entries == nil {
		loaded.Entries = make(map[string]cacheListEntry)
	}
	return &loaded
}

func (c *RuleCache) saveMetadata(meta *cacheMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	tmp := c.metaFile + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.metaFile); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
