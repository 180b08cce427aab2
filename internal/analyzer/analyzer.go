// Package analyzer drives the per-file analysis: it threads one run's
// configuration, token set, findings buffer, and unresolved tracker through
// an explicit RunContext rather than package-level accumulators.
package analyzer

import (
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/muffinresearch/arewedesigntokensyet/internal/aggregate"
	"github.com/muffinresearch/arewedesigntokensyet/internal/collections"
	"github.com/muffinresearch/arewedesigntokensyet/internal/config"
	"github.com/muffinresearch/arewedesigntokensyet/internal/log"
	"github.com/muffinresearch/arewedesigntokensyet/internal/parser/css"
	"github.com/muffinresearch/arewedesigntokensyet/internal/pathutil"
	"github.com/muffinresearch/arewedesigntokensyet/internal/resolver"
	"github.com/muffinresearch/arewedesigntokensyet/internal/scope"
	"github.com/muffinresearch/arewedesigntokensyet/internal/tokens"
)

// NoEligibleDeclarations is the percentage sentinel for files with no
// non-ignored declarations. Distinct from 0, which means eligible
// declarations exist but none uses a token.
const NoEligibleDeclarations = -1

// Declaration is one analyzed property/value pair, augmented with its
// resolution outcome
type Declaration struct {
	Prop  string    `json:"prop"`
	Value string    `json:"value"`
	Range css.Range `json:"-"`

	Trace               *resolver.Trace         `json:"-"`
	ContainsDesignToken bool                    `json:"containsDesignToken"`
	IsExcluded          bool                    `json:"isExcluded"`
	IsColorLiteral      bool                    `json:"isColorLiteral,omitempty"`
	ResolutionType      resolver.ResolutionType `json:"resolutionType"`
	Tokens              []string                `json:"tokens,omitempty"`
	UnresolvedVariables []string                `json:"unresolvedVariables,omitempty"`
}

// FileSummary is the per-file analysis result
type FileSummary struct {
	Path             string         `json:"path"`
	DesignTokenCount int            `json:"designTokenCount"`
	FoundProps       []string       `json:"foundProps"`
	Percentage       float64        `json:"percentage"`
	FoundPropValues  []*Declaration `json:"foundPropValues"`
	FoundVariables   scope.Scope    `json:"foundVariables"`
}

// RunContext carries everything one analysis run accumulates. Create one per
// run and discard it; nothing here is global. Finding and unresolved
// accumulation is serialized so a concurrent driver cannot corrupt counts.
type RunContext struct {
	Config     *config.Config
	Registry   *tokens.Registry
	Unresolved *UnresolvedTracker

	collector   *scope.Collector
	tokenizable collections.Set[string]

	mu       sync.Mutex
	findings []aggregate.Finding
}

// NewRunContext builds the run context: the token registry from inline keys
// plus any configured token files, and a fresh tracker and findings buffer
func NewRunContext(cfg *config.Config) (*RunContext, error) {
	registry := tokens.NewRegistry(cfg.DesignTokenKeys...)
	for _, tf := range cfg.TokenFiles {
		if err := registry.LoadFile(tf.Path, tf.Prefix); err != nil {
			return nil, err
		}
	}
	log.Debug("run context created with %d token identifiers", registry.Count())

	return &RunContext{
		Config:      cfg,
		Registry:    registry,
		Unresolved:  NewUnresolvedTracker(),
		collector:   scope.NewCollector(cfg, registry),
		tokenizable: collections.NewSet(cfg.TokenizableProperties...),
	}, nil
}

// Findings returns a snapshot of the accumulated findings
func (rc *RunContext) Findings() []aggregate.Finding {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]aggregate.Finding(nil), rc.findings...)
}

func (rc *RunContext) addFinding(f aggregate.Finding) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.findings = append(rc.findings, f)
}

// AnalyzeFile analyzes one CSS file. Parse failures and unreadable files are
// errors carrying the file path; unresolved variable references are not
// errors, they are recorded on the tracker.
func (rc *RunContext) AnalyzeFile(path string) (*FileSummary, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	fileScope, err := rc.collector.Collect(path, sheet)
	if err != nil {
		return nil, err
	}

	normalized := pathutil.Normalize(rc.Config.RepoRootPath, path)
	builder := resolver.NewBuilder(fileScope, rc.Registry)

	summary := &FileSummary{
		Path:            normalized,
		FoundProps:      []string{},
		FoundPropValues: []*Declaration{},
		FoundVariables:  fileScope,
	}

	ignored := 0
	for _, parsed := range sheet.Declarations() {
		if !rc.tokenizable.Has(parsed.Prop) {
			continue
		}

		trace := builder.BuildTrace(parsed.Value)
		class := resolver.Classify(trace, parsed.Prop, parsed.Value, rc.Config.ExclusionRules)

		decl := &Declaration{
			Prop:                parsed.Prop,
			Value:               parsed.Value,
			Range:               parsed.Range,
			Trace:               trace,
			ContainsDesignToken: class.ContainsDesignToken,
			IsExcluded:          class.IsExcluded,
			IsColorLiteral:      class.IsColorLiteral,
			ResolutionType:      class.ResolutionType,
			Tokens:              trace.Tokens(),
			UnresolvedVariables: trace.UnresolvedNames(),
		}
		summary.FoundProps = append(summary.FoundProps, decl.Prop)
		summary.FoundPropValues = append(summary.FoundPropValues, decl)

		if decl.ContainsDesignToken {
			summary.DesignTokenCount++
		}
		if class.IsIgnored() {
			ignored++
		}
		for _, name := range decl.UnresolvedVariables {
			rc.Unresolved.Record(name, normalized, decl.Prop, decl.Value)
		}

		rc.addFinding(aggregate.Finding{
			Path:           normalized,
			Descriptor:     decl.Prop,
			Value:          decl.Value,
			ContainsToken:  decl.ContainsDesignToken,
			IsIgnored:      class.IsIgnored(),
			IsColorLiteral: decl.IsColorLiteral,
			Tokens:         decl.Tokens,
		})
	}

	summary.Percentage = percentage(summary.DesignTokenCount, len(summary.FoundPropValues), ignored)
	return summary, nil
}

// percentage computes token adoption for one file, rounded to two decimals.
// Excluded non-token declarations leave the denominator; zero eligible
// declarations yields the -1 sentinel.
func percentage(tokenCount, total, ignored int) float64 {
	eligible := total - ignored
	if eligible <= 0 {
		return NoEligibleDeclarations
	}
	return math.Round(float64(tokenCount)/float64(eligible)*100*100) / 100
}

// RunResult bundles everything a completed run produces
type RunResult struct {
	Files      []*FileSummary
	Usage      *aggregate.Result
	Unresolved *UnresolvedReport
}

// Run analyzes the given files in sorted order and aggregates the outcome.
// A file that fails to read or parse aborts the run with that file's path in
// the error.
func (rc *RunContext) Run(paths []string) (*RunResult, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	result := &RunResult{Files: make([]*FileSummary, 0, len(sorted))}
	for _, path := range sorted {
		summary, err := rc.AnalyzeFile(path)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, summary)
	}

	result.Usage = aggregate.Aggregate(rc.Findings())
	result.Unresolved = rc.Unresolved.ToReport()
	return result, nil
}
