// Package report serializes a run's results into versioned JSON artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/muffinresearch/arewedesigntokensyet/internal/aggregate"
	"github.com/muffinresearch/arewedesigntokensyet/internal/analyzer"
	"github.com/muffinresearch/arewedesigntokensyet/internal/log"
	"github.com/muffinresearch/arewedesigntokensyet/internal/pathutil"
	"github.com/muffinresearch/arewedesigntokensyet/internal/scope"
)

// SchemaVersion identifies the artifact schema for downstream consumers
const SchemaVersion = "1.0"

// Artifact file names written by WriteAll
const (
	UnresolvedFileName       = "unresolved-variables.json"
	TokenUsageFileName       = "token-usage.json"
	DescriptorValuesFileName = "descriptor-values.json"
	FileSummariesFileName    = "file-summaries.json"
)

// Meta heads every artifact
type Meta struct {
	SchemaVersion string    `json:"schemaVersion"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// UnresolvedArtifact is the unresolved-variable report artifact
type UnresolvedArtifact struct {
	Meta
	*analyzer.UnresolvedReport
}

// TokenUsageArtifact is the token-centric usage artifact
type TokenUsageArtifact struct {
	Meta
	TokenUsage map[string]*aggregate.TokenUsage `json:"tokenUsage"`
}

// DescriptorValuesArtifact is the descriptor/value-centric usage artifact
type DescriptorValuesArtifact struct {
	Meta
	DescriptorValues map[string]*aggregate.DescriptorUsage `json:"descriptorValues"`
}

// FileSummariesArtifact collects the per-file summaries
type FileSummariesArtifact struct {
	Meta
	Files []*analyzer.FileSummary `json:"files"`
}

// Writer writes run artifacts under one output directory
type Writer struct {
	OutDir   string
	RepoRoot string

	// now is the clock, replaceable in tests
	now func() time.Time
}

// NewWriter creates an artifact writer
func NewWriter(outDir, repoRoot string) *Writer {
	return &Writer{OutDir: outDir, RepoRoot: repoRoot, now: time.Now}
}

// WriteAll writes the three run-level artifacts plus the per-file summaries
func (w *Writer) WriteAll(result *analyzer.RunResult) error {
	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", w.OutDir, err)
	}

	meta := Meta{SchemaVersion: SchemaVersion, GeneratedAt: w.now().UTC()}
	artifacts := map[string]any{
		UnresolvedFileName: UnresolvedArtifact{meta, result.Unresolved},
		TokenUsageFileName: TokenUsageArtifact{meta, result.Usage.TokenUsage},
		DescriptorValuesFileName: DescriptorValuesArtifact{
			meta, result.Usage.DescriptorValues,
		},
		FileSummariesFileName: FileSummariesArtifact{
			meta, normalizeSummaries(w.RepoRoot, result.Files),
		},
	}

	for name, artifact := range artifacts {
		path := filepath.Join(w.OutDir, name)
		if err := writeJSON(path, artifact); err != nil {
			return err
		}
		log.Debug("wrote %s", path)
	}
	return nil
}

// Render writes the whole run result as one JSON document, for --json output
func (w *Writer) Render(out io.Writer, result *analyzer.RunResult) error {
	meta := Meta{SchemaVersion: SchemaVersion, GeneratedAt: w.now().UTC()}
	document := struct {
		Meta
		Files            []*analyzer.FileSummary               `json:"files"`
		TokenUsage       map[string]*aggregate.TokenUsage      `json:"tokenUsage"`
		DescriptorValues map[string]*aggregate.DescriptorUsage `json:"descriptorValues"`
		Unresolved       *analyzer.UnresolvedReport            `json:"unresolvedVariables"`
	}{
		Meta:             meta,
		Files:            normalizeSummaries(w.RepoRoot, result.Files),
		TokenUsage:       result.Usage.TokenUsage,
		DescriptorValues: result.Usage.DescriptorValues,
		Unresolved:       result.Unresolved,
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(document)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// normalizeSummaries rewrites variable source paths relative to the repo
// root. Summary paths themselves are normalized at analysis time; scope
// definitions keep absolute paths internally so resolution stays exact.
func normalizeSummaries(root string, files []*analyzer.FileSummary) []*analyzer.FileSummary {
	normalized := make([]*analyzer.FileSummary, 0, len(files))
	for _, file := range files {
		clone := *file
		clone.FoundVariables = scope.Scope{}
		for name, def := range file.FoundVariables {
			defClone := *def
			defClone.SourceFile = pathutil.Normalize(root, def.SourceFile)
			clone.FoundVariables[name] = &defClone
		}
		normalized = append(normalized, &clone)
	}
	return normalized
}
