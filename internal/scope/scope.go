// Package scope collects the custom property definitions visible to one CSS
// file: externally mapped definitions first, then local definitions that are
// either file-global (:root/:host) or consumed within their own rule.
package scope

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/muffinresearch/arewedesigntokensyet/internal/config"
	"github.com/muffinresearch/arewedesigntokensyet/internal/log"
	"github.com/muffinresearch/arewedesigntokensyet/internal/parser/css"
	"github.com/muffinresearch/arewedesigntokensyet/internal/tokens"
)

// VariableDefinition is one custom property definition visible to a file.
// Immutable once inserted into a Scope.
type VariableDefinition struct {
	Name       string    `json:"name"`
	RawValue   string    `json:"rawValue"`
	IsExternal bool      `json:"isExternal"`
	SourceFile string    `json:"sourceFile"`
	Range      css.Range `json:"-"`
}

// Scope maps custom property names to their single visible definition.
// At most one definition per name; first valid insertion wins.
type Scope map[string]*VariableDefinition

// Collector builds scopes against a fixed run configuration and token set
type Collector struct {
	cfg      *config.Config
	registry *tokens.Registry
}

// NewCollector creates a scope collector
func NewCollector(cfg *config.Config, registry *tokens.Registry) *Collector {
	return &Collector{cfg: cfg, registry: registry}
}

// Collect produces the variable scope for filePath given its parsed stylesheet.
// External definitions claim names before local ones; duplicates are logged
// and skipped, never overwritten.
func (c *Collector) Collect(filePath string, sheet *css.Stylesheet) (Scope, error) {
	scope := Scope{}

	if err := c.collectExternal(filePath, scope); err != nil {
		return nil, err
	}
	c.collectLocal(filePath, sheet, scope)
	return scope, nil
}

// collectExternal reads :root/:host definitions from every external file whose
// mapping pattern matches filePath. Patterns are visited in sorted order so
// collisions resolve the same way on every run.
func (c *Collector) collectExternal(filePath string, scope Scope) error {
	if len(c.cfg.ExternalVarMapping) == 0 {
		return nil
	}

	patterns := make([]string, 0, len(c.cfg.ExternalVarMapping))
	for pattern := range c.cfg.ExternalVarMapping {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}

	for _, pattern := range patterns {
		if !c.patternMatches(pattern, absPath) {
			continue
		}
		for _, external := range c.cfg.ExternalVarMapping[pattern] {
			absExternal, err := filepath.Abs(external)
			if err != nil || absExternal == absPath {
				// A file referencing itself adds nothing
				continue
			}
			c.readExternalFile(absExternal, scope)
		}
	}
	return nil
}

// patternMatches matches a mapping glob against the file's slash-normalized
// absolute path, and against its repo-relative path when under the root
func (c *Collector) patternMatches(pattern, absPath string) bool {
	slashed := filepath.ToSlash(absPath)
	if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
		return true
	}
	if rel, err := filepath.Rel(c.cfg.RepoRootPath, absPath); err == nil && !strings.HasPrefix(rel, "..") {
		if ok, err := doublestar.Match(pattern, filepath.ToSlash(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// readExternalFile pulls :root/:host custom properties out of an external
// variable file. An unreadable or unparsable mapping target is a config
// problem, logged and skipped rather than failing the file under analysis.
func (c *Collector) readExternalFile(path string, scope Scope) {
	source, err := os.ReadFile(path)
	if err != nil {
		log.Warn("external variable file %s unreadable: %v", path, err)
		return
	}

	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse(string(source))
	if err != nil {
		log.Warn("external variable file %s unparsable: %v", path, err)
		return
	}

	for _, rule := range sheet.Rules {
		if !css.IsRootScoped(rule.Selector) {
			continue
		}
		for _, decl := range rule.Declarations {
			if !css.IsCustomProperty(decl.Prop) {
				continue
			}
			c.insert(scope, &VariableDefinition{
				Name:       decl.Prop,
				RawValue:   decl.Value,
				IsExternal: true,
				SourceFile: path,
				Range:      decl.Range,
			})
		}
	}
}

// collectLocal walks the analyzed file's own declarations. A local definition
// enters scope only if it is file-global (:root/:host) or its own rule also
// consumes it.
func (c *Collector) collectLocal(filePath string, sheet *css.Stylesheet, scope Scope) {
	for _, rule := range sheet.Rules {
		for _, decl := range rule.Declarations {
			if !css.IsCustomProperty(decl.Prop) {
				continue
			}
			if !css.IsRootScoped(rule.Selector) && !consumesVariable(rule.Text, decl.Prop) {
				log.Debug("rule-scoped definition %s in %s is not self-consumed, not in scope",
					decl.Prop, filePath)
				continue
			}
			c.insert(scope, &VariableDefinition{
				Name:       decl.Prop,
				RawValue:   decl.Value,
				IsExternal: false,
				SourceFile: filePath,
				Range:      decl.Range,
			})
		}
	}
}

// insert applies the collision and token-terminal policies
func (c *Collector) insert(scope Scope, def *VariableDefinition) {
	if c.registry.Has(def.Name) {
		// Token identifiers are terminal by construction; a CSS file
		// redefining one never shadows the token set
		log.Debug("definition of token identifier %s in %s ignored", def.Name, def.SourceFile)
		return
	}
	if existing, ok := scope[def.Name]; ok {
		log.Warn("duplicate definition of %s in %s (kept %s definition from %s)",
			def.Name, def.SourceFile, originKind(existing), existing.SourceFile)
		return
	}
	scope[def.Name] = def
}

func originKind(def *VariableDefinition) string {
	if def.IsExternal {
		return "external"
	}
	return "local"
}

// consumesVariable reports whether ruleText contains a var() reference to
// name. The character after the name must end the reference so that --x
// does not match a reference to --x-wide.
func consumesVariable(ruleText, name string) bool {
	needle := "var(" + name
	for start := 0; ; {
		i := strings.Index(ruleText[start:], needle)
		if i < 0 {
			return false
		}
		after := start + i + len(needle)
		if after >= len(ruleText) {
			return false
		}
		switch ruleText[after] {
		case ')', ',', ' ', '\t', '\n':
			return true
		}
		start = after
	}
}
