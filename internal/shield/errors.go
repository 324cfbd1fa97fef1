package shield

import "errors"

var (
	// ErrListNotFound indicates an operation referenced an unknown filter list.
	ErrListNotFound = errors.New("filter list not found")

	// ErrListExists indicates a list with the same name is already registered.
	ErrListExists = errors.New("filter list already exists")

	// ErrRuleNotFound indicates a custom rule removal referenced an unknown pattern.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrEmptyPattern indicates a rule was supplied without a pattern.
	ErrEmptyPattern = errors.New("rule pattern is empty")

	// ErrNetwork indicates a network failure while fetching a filter list.
	ErrNetwork = errors.New("network error")

	// ErrParse indicates malformed filter list content.
	ErrParse = errors.New("parse error")

	// ErrCacheCorrupted indicates corrupted on-disk rule cache data.
	ErrCacheCorrupted = errors.New("cache corrupted")
)
