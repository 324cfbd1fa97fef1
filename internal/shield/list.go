package shield

import "time"

// FilterList is a named, sourced, enable-able ordered collection of rules.
// Rules are only ever replaced wholesale; a list is never partially mutated
// while a scan could observe it.
type FilterList struct {
	Name        string    `json:"name"`
	SourceURL   string    `json:"source_url"`
	Enabled     bool      `json:"enabled"`
	LastUpdated time.Time `json:"last_updated"`
	Rules       []Rule    `json:"rules"`
}

// ListSource describes a filter list to register at engine construction.
type ListSource struct {
	Name    string
	URL     string
	Enabled bool
}

// ListInfo is a read-only summary of a registered list.
type ListInfo struct {
	Name        string    `json:"name"`
	SourceURL   string    `json:"source_url"`
	Enabled     bool      `json:"enabled"`
	LastUpdated time.Time `json:"last_updated"`
	RuleCount   int       `json:"rule_count"`
}

func (l *FilterList) info() ListInfo {
	return ListInfo{
		Name:        l.Name,
		SourceURL:   l.SourceURL,
		Enabled:     l.Enabled,
		LastUpdated: l.LastUpdated,
		RuleCount:   len(l.Rules),
	}
}
