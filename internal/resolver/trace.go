// Package resolver resolves declaration values through the custom property
// alias graph to terminal design tokens, literals, or unresolved references,
// and classifies the outcome.
package resolver

import (
	"github.com/muffinresearch/arewedesigntokensyet/internal/collections"
	"github.com/muffinresearch/arewedesigntokensyet/internal/scope"
	"github.com/muffinresearch/arewedesigntokensyet/internal/tokens"
)

// TerminalKind classifies how one var() occurrence resolved
type TerminalKind int

const (
	// TerminalToken means the occurrence reached a design token identifier
	TerminalToken TerminalKind = iota
	// TerminalLiteral means the occurrence resolved to a plain value
	TerminalLiteral
	// TerminalUnresolved means a referenced name had no visible definition
	TerminalUnresolved
	// TerminalCycle means a name reappeared in its own resolution chain
	TerminalCycle
)

// String returns the serialized form of the terminal kind
func (k TerminalKind) String() string {
	switch k {
	case TerminalToken:
		return "token"
	case TerminalLiteral:
		return "literal"
	case TerminalUnresolved:
		return "unresolved"
	case TerminalCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// Occurrence is the resolution attempt for one var() occurrence in a value.
// An alias whose definition fans out into several references keeps all of the
// reached leaves on the same occurrence.
type Occurrence struct {
	// Name is the custom property referenced at the occurrence site
	Name string

	// Chain lists every name traversed while resolving, in visit order
	Chain []string

	Terminal TerminalKind

	// Tokens are the design token identifiers reached, duplicates kept
	Tokens []string

	// Unresolved are the names that terminated unresolved or cyclic
	Unresolved []string

	// ResolvedValue is the terminal literal value when one was reached
	ResolvedValue string

	// TouchedExternal/TouchedLocal record whether the chain passed through
	// an externally-imported or locally-defined variable
	TouchedExternal bool
	TouchedLocal    bool

	sawCycle bool
}

// Trace is the ordered collection of occurrence resolutions for one value
type Trace struct {
	Occurrences []*Occurrence
}

// ContainsToken reports whether at least one occurrence reached a token
func (t *Trace) ContainsToken() bool {
	for _, occ := range t.Occurrences {
		if occ.Terminal == TerminalToken {
			return true
		}
	}
	return false
}

// Tokens returns every reached token identifier in occurrence order, one
// entry per occurrence leaf, duplicates preserved
func (t *Trace) Tokens() []string {
	var ids []string
	for _, occ := range t.Occurrences {
		ids = append(ids, occ.Tokens...)
	}
	return ids
}

// UnresolvedNames returns every unresolved or cyclic referenced name in
// occurrence order, duplicates preserved
func (t *Trace) UnresolvedNames() []string {
	var names []string
	for _, occ := range t.Occurrences {
		names = append(names, occ.Unresolved...)
	}
	return names
}

// TouchedExternal reports whether any occurrence's chain passed through an
// externally-imported variable
func (t *Trace) TouchedExternal() bool {
	for _, occ := range t.Occurrences {
		if occ.TouchedExternal {
			return true
		}
	}
	return false
}

// Builder resolves values against one file's scope and the run's token set
type Builder struct {
	scope    scope.Scope
	registry *tokens.Registry
}

// NewBuilder creates a trace builder
func NewBuilder(s scope.Scope, registry *tokens.Registry) *Builder {
	return &Builder{scope: s, registry: registry}
}

// BuildTrace resolves every var() occurrence in value. Two identical
// references yield two independent occurrences.
func (b *Builder) BuildTrace(value string) *Trace {
	trace := &Trace{}
	for _, name := range FindVarNames(value) {
		occ := &Occurrence{Name: name}
		recStack := collections.NewSet[string]()
		b.resolve(name, recStack, occ)
		occ.Terminal = terminalOf(occ)
		trace.Occurrences = append(trace.Occurrences, occ)
	}
	return trace
}

// resolve walks the implicit name graph depth-first. recStack holds the
// names on the current chain; a name already on it is a cycle.
func (b *Builder) resolve(name string, recStack collections.Set[string], occ *Occurrence) {
	occ.Chain = append(occ.Chain, name)

	// Token identifiers are terminal even if a definition exists somewhere
	if b.registry.Has(name) {
		occ.Tokens = append(occ.Tokens, tokens.Normalize(name))
		return
	}

	if recStack.Has(name) {
		occ.Unresolved = append(occ.Unresolved, name)
		occ.sawCycle = true
		return
	}

	def, ok := b.scope[name]
	if !ok {
		occ.Unresolved = append(occ.Unresolved, name)
		return
	}

	if def.IsExternal {
		occ.TouchedExternal = true
	} else {
		occ.TouchedLocal = true
	}

	refs := FindVarNames(def.RawValue)
	if len(refs) == 0 {
		if occ.ResolvedValue == "" {
			occ.ResolvedValue = def.RawValue
		}
		return
	}

	recStack.Add(name)
	for _, ref := range refs {
		b.resolve(ref, recStack, occ)
	}
	recStack.Delete(name)
}

// terminalOf picks the occurrence's terminal classification from its leaves:
// a token anywhere wins, then a cycle, then an unresolved name
func terminalOf(occ *Occurrence) TerminalKind {
	switch {
	case len(occ.Tokens) > 0:
		return TerminalToken
	case occ.sawCycle:
		return TerminalCycle
	case len(occ.Unresolved) > 0:
		return TerminalUnresolved
	default:
		return TerminalLiteral
	}
}
