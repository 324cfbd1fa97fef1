package config

import (
	"fmt"
	"regexp"
	"strings"
)

// validateConfig performs validation of configuration values.
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateFiltering(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}
	return nil
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		validationErrors = append(validationErrors, "logging.level must be one of trace, debug, info, warn, error")
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		validationErrors = append(validationErrors, "logging.format must be console or json")
	}
	return validationErrors
}

func validateFiltering(config *Config) []string {
	var validationErrors []string

	if config.Filtering.UpdateIntervalHours < 1 {
		validationErrors = append(validationErrors, "filtering.update_interval_hours must be at least 1")
	}

	seen := make(map[string]bool)
	for i, list := range config.Filtering.FilterLists {
		if list.Name == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("filtering.filter_lists[%d].name must not be empty", i))
			continue
		}
		if seen[list.Name] {
			validationErrors = append(validationErrors, fmt.Sprintf("filtering.filter_lists: duplicate name %q", list.Name))
		}
		seen[list.Name] = true
		if list.URL == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("filtering.filter_lists[%d].url must not be empty", i))
		}
	}

	for i, rule := range config.Filtering.CustomRules {
		if rule.Pattern == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("filtering.custom_rules[%d].pattern must not be empty", i))
		}
		switch rule.Kind {
		case "", "block", "allow", "hide", "redirect":
		default:
			validationErrors = append(validationErrors, fmt.Sprintf("filtering.custom_rules[%d].kind must be block, allow, hide or redirect", i))
		}
		for _, res := range rule.Resources {
			switch res {
			case "script", "image", "stylesheet", "xmlhttprequest", "subdocument", "third_party", "popup":
			default:
				validationErrors = append(validationErrors, fmt.Sprintf("filtering.custom_rules[%d]: unknown resource %q", i, res))
			}
		}
	}

	for i, cp := range config.Filtering.CompiledPatterns {
		if cp.Pattern == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("filtering.compiled_patterns[%d].pattern must not be empty", i))
		}
		if _, err := regexp.Compile(cp.Regex); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("filtering.compiled_patterns[%d].regex: %v", i, err))
		}
	}

	return validationErrors
}
