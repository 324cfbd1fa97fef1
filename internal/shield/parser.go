package shield

import (
	"bufio"
	"io"
	"strings"
)

// ParseRules parses EasyList-style filter text into an ordered rule sequence.
// The parser is line-oriented:
//   - empty lines, `!` comments and `[...]` section headers are skipped
//   - lines starting with `@@` become Allow rules
//   - lines containing `##` become Hide rules
//   - everything else becomes a Block rule
//
// Pattern text is the line with a leading `@@` stripped and anything from the
// first `$` option separator onward removed. Domain scoping and resource
// flags are never derived from list syntax; every parsed rule carries full
// default flags and no scope.
func ParseRules(r io.Reader) ([]Rule, error) {
	var rules []Rule

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}

		kind := RuleBlock
		switch {
		case strings.HasPrefix(line, "@@"):
			kind = RuleAllow
		case strings.Contains(line, "##"):
			kind = RuleHide
		}

		pattern := strings.TrimPrefix(line, "@@")
		if idx := strings.Index(pattern, "$"); idx >= 0 {
			pattern = pattern[:idx]
		}
		if pattern == "" {
			continue
		}

		rules = append(rules, NewRule(pattern, kind))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ParseRulesString is a convenience wrapper over ParseRules.
func ParseRulesString(text string) ([]Rule, error) {
	return ParseRules(strings.NewReader(text))
}
