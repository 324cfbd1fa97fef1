package shield

import (
	"regexp"
	"time"
)

// ruleStore owns every FilterList and the compiled-pattern cache. Lists are
// kept in insertion order and rules in parse order so that scan precedence is
// deterministic and reproducible. The store does no locking of its own; the
// engine facade serializes access.
type ruleStore struct {
	lists    []*FilterList
	byName   map[string]*FilterList
	compiled map[string]*regexp.Regexp
}

func newRuleStore() *ruleStore {
	return &ruleStore{
		byName:   make(map[string]*FilterList),
		compiled: make(map[string]*regexp.Regexp),
	}
}

func (s *ruleStore) addList(list *FilterList) bool {
	if _, exists := s.byName[list.Name]; exists {
		return false
	}
	s.lists = append(s.lists, list)
	s.byName[list.Name] = list
	return true
}

func (s *ruleStore) removeList(name string) bool {
	if _, exists := s.byName[name]; !exists {
		return false
	}
	delete(s.byName, name)
	for i, l := range s.lists {
		if l.Name == name {
			s.lists = append(s.lists[:i], s.lists[i+1:]...)
			break
		}
	}
	return true
}

func (s *ruleStore) get(name string) (*FilterList, bool) {
	l, ok := s.byName[name]
	return l, ok
}

// replaceRules swaps in a freshly parsed rule sequence for a list. The old
// slice is left untouched so concurrent readers holding a snapshot stay
// consistent.
func (s *ruleStore) replaceRules(name string, rules []Rule, updatedAt time.Time) bool {
	l, ok := s.byName[name]
	if !ok {
		return false
	}
	l.Rules = rules
	l.LastUpdated = updatedAt
	return true
}

// compilePattern caches a compiled matcher keyed by the exact pattern text.
// Absence of a cached entry always falls back to substring containment.
func (s *ruleStore) compilePattern(pattern, expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return err
	}
	s.compiled[pattern] = re
	return nil
}

func (s *ruleStore) dropCompiledPattern(pattern string) {
	delete(s.compiled, pattern)
}

// scanVerdict is the outcome of scanning the enabled lists for a request.
type scanVerdict int

const (
	verdictNone scanVerdict = iota // no decisive rule matched
	verdictBlock
	verdictAllow
)

// scan walks enabled lists in insertion order and rules in stored order. The
// first decisive match (Block or Allow) wins; Hide and Redirect rules are not
// blocking decisions and never stop the scan.
func (s *ruleStore) scan(rawURL, resourceType, originDomain string) scanVerdict {
	for _, list := range s.lists {
		if !list.Enabled {
			continue
		}
		for i := range list.Rules {
			rule := &list.Rules[i]
			if !rule.matches(rawURL, resourceType, originDomain, s.compiled[rule.Pattern]) {
				continue
			}
			switch rule.Kind {
			case RuleBlock:
				return verdictBlock
			case RuleAllow:
				return verdictAllow
			}
		}
	}
	return verdictNone
}

func (s *ruleStore) infos() []ListInfo {
	infos := make([]ListInfo, 0, len(s.lists))
	for _, l := range s.lists {
		infos = append(infos, l.info())
	}
	return infos
}
