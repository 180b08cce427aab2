package resolver

import (
	"regexp"
	"strings"
	"sync"

	"github.com/mazznoer/csscolorparser"

	"github.com/muffinresearch/arewedesigntokensyet/internal/config"
)

// ResolutionType records which kind of definitions a declaration's chains
// touched. A chain that touched any externally-imported variable is external;
// everything else, including values with no var() at all and chains ending
// unresolved, is local.
type ResolutionType string

const (
	// ResolutionLocal means no externally-imported variable was involved
	ResolutionLocal ResolutionType = "local"
	// ResolutionExternal means some chain touched an external variable
	ResolutionExternal ResolutionType = "external"
)

// Classification carries the flags derived from a completed trace plus the
// raw literal value text
type Classification struct {
	ContainsDesignToken bool
	IsExcluded          bool
	IsColorLiteral      bool
	ResolutionType      ResolutionType
}

// Classify derives the classification for one declaration. Exclusion is
// evaluated against the literal value text, independent of resolution.
func Classify(trace *Trace, descriptor, rawValue string, rules []config.ExclusionRule) Classification {
	c := Classification{
		ContainsDesignToken: trace.ContainsToken(),
		IsExcluded:          isExcluded(descriptor, rawValue, rules),
		IsColorLiteral:      isColorLiteral(rawValue),
		ResolutionType:      ResolutionLocal,
	}
	if trace.TouchedExternal() {
		c.ResolutionType = ResolutionExternal
	}
	return c
}

// IsIgnored is the aggregation-time flag: excluded values still count as
// token usage when they resolve to a token
func (c Classification) IsIgnored() bool {
	return c.IsExcluded && !c.ContainsDesignToken
}

func isExcluded(descriptor, rawValue string, rules []config.ExclusionRule) bool {
	for _, rule := range rules {
		if rule.DescriptorPattern != "*" && rule.DescriptorPattern != descriptor {
			continue
		}
		for _, matcher := range rule.ValueMatchers {
			if matchesValue(matcher, rawValue) {
				return true
			}
		}
	}
	return false
}

// matcherCache holds compiled wildcard matchers; misconfigured patterns
// compile to nil and simply never match
var matcherCache sync.Map

// matchesValue applies one value matcher: an exact string, or a wildcard
// pattern where * spans any text (e.g. "calc(*)" matches every calc() form)
func matchesValue(matcher, value string) bool {
	if !strings.Contains(matcher, "*") {
		return matcher == value
	}

	if cached, ok := matcherCache.Load(matcher); ok {
		re, _ := cached.(*regexp.Regexp)
		return re != nil && re.MatchString(value)
	}

	parts := strings.Split(matcher, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		re = nil
	}
	matcherCache.Store(matcher, re)
	return re != nil && re.MatchString(value)
}

// isColorLiteral reports whether the raw value is a hard-coded CSS color
// (hex, named, rgb()/hsl()/etc) rather than a variable reference
func isColorLiteral(rawValue string) bool {
	if strings.Contains(rawValue, "var(") {
		return false
	}
	_, err := csscolorparser.Parse(strings.TrimSpace(rawValue))
	return err == nil
}
