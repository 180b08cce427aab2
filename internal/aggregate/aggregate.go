// Package aggregate folds the per-declaration findings of a whole run into
// token-centric and descriptor/value-centric usage summaries with
// deterministic identifier assignment.
package aggregate

import (
	"sort"
	"strconv"
)

// Finding is one flattened per-declaration record from the run
type Finding struct {
	// Path is the normalized file path the declaration came from
	Path string `json:"path"`

	// Descriptor is the CSS property name
	Descriptor string `json:"descriptor"`

	// Value is the literal declaration value
	Value string `json:"value"`

	ContainsToken  bool `json:"containsToken"`
	IsIgnored      bool `json:"isIgnored"`
	IsColorLiteral bool `json:"isColorLiteral,omitempty"`

	// Tokens are the token identifiers the declaration resolved to, one
	// entry per resolved occurrence
	Tokens []string `json:"tokens,omitempty"`
}

// TokenUsage accumulates where one design token is used
type TokenUsage struct {
	Total       int            `json:"total"`
	Descriptors map[string]int `json:"descriptors"`
	Files       map[string]int `json:"files"`
}

// ValueUsage accumulates one (descriptor, value) pair
type ValueUsage struct {
	ID             string         `json:"id"`
	Count          int            `json:"count"`
	ContainsToken  bool           `json:"containsToken"`
	IsIgnored      bool           `json:"isIgnored"`
	IsColorLiteral bool           `json:"isColorLiteral,omitempty"`
	Tokens         []string       `json:"tokens,omitempty"`
	Files          map[string]int `json:"files"`
}

// DescriptorUsage groups the distinct values seen for one descriptor
type DescriptorUsage struct {
	ID     string                 `json:"id"`
	Values map[string]*ValueUsage `json:"values"`
}

// Result is the run-level aggregation output
type Result struct {
	TokenUsage       map[string]*TokenUsage      `json:"tokenUsage"`
	DescriptorValues map[string]*DescriptorUsage `json:"descriptorValues"`
}

// Aggregate folds findings into the two run-level summaries. Counts only ever
// increase; feeding the same findings in any order yields identical output,
// IDs included.
func Aggregate(findings []Finding) *Result {
	result := &Result{
		TokenUsage:       map[string]*TokenUsage{},
		DescriptorValues: map[string]*DescriptorUsage{},
	}

	for _, f := range findings {
		desc, ok := result.DescriptorValues[f.Descriptor]
		if !ok {
			desc = &DescriptorUsage{Values: map[string]*ValueUsage{}}
			result.DescriptorValues[f.Descriptor] = desc
		}

		value, ok := desc.Values[f.Value]
		if !ok {
			value = &ValueUsage{Files: map[string]int{}}
			desc.Values[f.Value] = value
		}
		value.Count++
		value.Files[f.Path]++
		// Sticky flags: once a bucket is ignored (or token-bearing) it
		// stays that way regardless of later occurrences
		value.IsIgnored = value.IsIgnored || f.IsIgnored
		value.ContainsToken = value.ContainsToken || f.ContainsToken
		value.IsColorLiteral = value.IsColorLiteral || f.IsColorLiteral
		if len(value.Tokens) == 0 && len(f.Tokens) > 0 {
			value.Tokens = append([]string(nil), f.Tokens...)
		}

		for _, token := range f.Tokens {
			usage, ok := result.TokenUsage[token]
			if !ok {
				usage = &TokenUsage{Descriptors: map[string]int{}, Files: map[string]int{}}
				result.TokenUsage[token] = usage
			}
			usage.Total++
			usage.Descriptors[f.Descriptor]++
			usage.Files[f.Path]++
		}
	}

	assignIDs(result.DescriptorValues)
	return result
}

// assignIDs walks descriptors in lexicographic order, then each descriptor's
// values in lexicographic order, drawing every ID from one shared counter.
// IDs therefore depend only on the final set of names, never on discovery
// order.
func assignIDs(descriptors map[string]*DescriptorUsage) {
	names := make([]string, 0, len(descriptors))
	for name := range descriptors {
		names = append(names, name)
	}
	sort.Strings(names)

	next := 1
	for _, name := range names {
		desc := descriptors[name]
		desc.ID = strconv.Itoa(next)
		next++

		values := make([]string, 0, len(desc.Values))
		for value := range desc.Values {
			values = append(values, value)
		}
		sort.Strings(values)
		for _, value := range values {
			desc.Values[value].ID = strconv.Itoa(next)
			next++
		}
	}
}
