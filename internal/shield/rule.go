// Package shield implements the content-filtering engine: filter list
// management, request classification, per-site shield state and block
// counters.
package shield

import (
	"regexp"
	"strings"
)

// RuleKind classifies what a matching rule means for a request.
type RuleKind string

const (
	RuleBlock    RuleKind = "block"
	RuleAllow    RuleKind = "allow"
	RuleHide     RuleKind = "hide"
	RuleRedirect RuleKind = "redirect"
)

// Resource type strings supplied by the request-interception layer.
const (
	ResourceScript         = "script"
	ResourceImage          = "image"
	ResourceStylesheet     = "stylesheet"
	ResourceXMLHTTPRequest = "xmlhttprequest"
	ResourceSubdocument    = "subdocument"
	ResourceDocument       = "document"
	ResourceOther          = "other"
)

// ResourceFlags gates which resource types a rule applies to.
type ResourceFlags struct {
	Script         bool `json:"script"`
	Image          bool `json:"image"`
	Stylesheet     bool `json:"stylesheet"`
	XMLHTTPRequest bool `json:"xmlhttprequest"`
	Subdocument    bool `json:"subdocument"`
	ThirdParty     bool `json:"third_party"`
	Popup          bool `json:"popup"`
}

// DefaultResourceFlags returns flags with every resource type enabled.
func DefaultResourceFlags() ResourceFlags {
	return ResourceFlags{
		Script:         true,
		Image:          true,
		Stylesheet:     true,
		XMLHTTPRequest: true,
		Subdocument:    true,
		ThirdParty:     true,
		Popup:          true,
	}
}

// ResourceFlagsFor builds flags limited to the named resource types. An empty
// list means no restriction, the same as DefaultResourceFlags.
func ResourceFlagsFor(resources []string) ResourceFlags {
	if len(resources) == 0 {
		return DefaultResourceFlags()
	}
	var f ResourceFlags
	for _, r := range resources {
		switch r {
		case ResourceScript:
			f.Script = true
		case ResourceImage:
			f.Image = true
		case ResourceStylesheet:
			f.Stylesheet = true
		case ResourceXMLHTTPRequest:
			f.XMLHTTPRequest = true
		case ResourceSubdocument:
			f.Subdocument = true
		}
	}
	return f
}

// appliesTo reports whether the flags allow a rule to act on the given
// resource type. Unrecognized types are treated as applicable.
func (f ResourceFlags) appliesTo(resourceType string) bool {
	switch resourceType {
	case ResourceScript:
		return f.Script
	case ResourceImage:
		return f.Image
	case ResourceStylesheet:
		return f.Stylesheet
	case ResourceXMLHTTPRequest:
		return f.XMLHTTPRequest
	case ResourceSubdocument:
		return f.Subdocument
	default:
		return true
	}
}

// Rule is an immutable parsed filter unit. Domains and Exceptions scope the
// rule to (or away from) specific origin domains; nil means unscoped.
type Rule struct {
	Pattern    string        `json:"pattern"`
	Kind       RuleKind      `json:"kind"`
	Domains    []string      `json:"domains,omitempty"`
	Exceptions []string      `json:"exceptions,omitempty"`
	Resources  ResourceFlags `json:"resources"`
}

// NewRule creates a rule of the given kind with full default resource flags.
func NewRule(pattern string, kind RuleKind) Rule {
	return Rule{
		Pattern:   pattern,
		Kind:      kind,
		Resources: DefaultResourceFlags(),
	}
}

// matches reports whether the rule applies to the request. compiled, when
// non-nil, replaces the substring containment test with the cached matcher
// for this rule's pattern; both forms must agree on what a match means.
func (r *Rule) matches(rawURL, resourceType, originDomain string, compiled *regexp.Regexp) bool {
	if compiled != nil {
		if !compiled.MatchString(rawURL) {
			return false
		}
	} else if !strings.Contains(rawURL, r.Pattern) {
		return false
	}

	if r.Domains != nil && !containsDomain(r.Domains, originDomain) {
		return false
	}
	if r.Exceptions != nil && containsDomain(r.Exceptions, originDomain) {
		return false
	}

	return r.Resources.appliesTo(resourceType)
}

func containsDomain(domains []string, domain string) bool {
	for _, d := range domains {
		if d == domain {
			return true
		}
	}
	return false
}
