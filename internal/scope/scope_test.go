package scope_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/muffinresearch/arewedesigntokensyet/internal/config"
	"github.com/muffinresearch/arewedesigntokensyet/internal/parser/css"
	"github.com/muffinresearch/arewedesigntokensyet/internal/scope"
	"github.com/muffinresearch/arewedesigntokensyet/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *css.Stylesheet {
	t.Helper()
	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse(source)
	require.NoError(t, err)
	return sheet
}

// TestCollectRootScopedLocals tests that :root and :host definitions enter scope
func TestCollectRootScopedLocals(t *testing.T) {
	sheet := parse(t, `:root {
  --brand: #ff00ff;
}
:host {
  --gap: 8px;
}`)

	collector := scope.NewCollector(config.Default(), tokens.NewRegistry())
	s, err := collector.Collect("/repo/a.css", sheet)
	require.NoError(t, err)

	require.Len(t, s, 2)
	require.Contains(t, s, "--brand")
	assert.Equal(t, "#ff00ff", s["--brand"].RawValue)
	assert.False(t, s["--brand"].IsExternal)
	assert.Equal(t, "/repo/a.css", s["--brand"].SourceFile)
	assert.Contains(t, s, "--gap")
}

// TestSelfConsumedRuleLocal tests the rule-local acceptance condition: a
// definition inside an ordinary rule enters scope only when that same rule
// consumes it
func TestSelfConsumedRuleLocal(t *testing.T) {
	sheet := parse(t, `.card {
  --card-pad: 12px;
  padding: var(--card-pad);
}

.aside {
  --aside-pad: 4px;
}

.other {
  padding: var(--aside-pad);
}`)

	collector := scope.NewCollector(config.Default(), tokens.NewRegistry())
	s, err := collector.Collect("/repo/a.css", sheet)
	require.NoError(t, err)

	assert.Contains(t, s, "--card-pad", "self-consumed definition should be in scope")
	assert.NotContains(t, s, "--aside-pad", "definition consumed only elsewhere stays out of scope")
}

// TestSelfConsumptionNameBoundary tests that a var() of a longer name does not
// admit a shorter prefix definition
func TestSelfConsumptionNameBoundary(t *testing.T) {
	sheet := parse(t, `.card {
  --pad: 12px;
  padding: var(--pad-wide);
}`)

	collector := scope.NewCollector(config.Default(), tokens.NewRegistry())
	s, err := collector.Collect("/repo/a.css", sheet)
	require.NoError(t, err)
	assert.NotContains(t, s, "--pad")
}

// TestExternalDefinitionsPrecedeLocal tests the external-first collision policy
func TestExternalDefinitionsPrecedeLocal(t *testing.T) {
	dir := t.TempDir()
	external := filepath.Join(dir, "vars.css")
	require.NoError(t, os.WriteFile(external, []byte(`:root {
  --brand: blue;
  --shared: 4px;
}
.ignored {
  --not-root: 1px;
}`), 0o644))

	cfg := config.Default()
	cfg.RepoRootPath = dir
	cfg.ExternalVarMapping = map[string][]string{
		"**/*.css": {external},
	}

	current := filepath.Join(dir, "component.css")
	sheet := parse(t, `:root {
  --brand: red;
  --only-local: 2px;
}`)

	collector := scope.NewCollector(cfg, tokens.NewRegistry())
	s, err := collector.Collect(current, sheet)
	require.NoError(t, err)

	require.Contains(t, s, "--brand")
	assert.True(t, s["--brand"].IsExternal, "external definition should win the collision")
	assert.Equal(t, "blue", s["--brand"].RawValue)
	assert.Contains(t, s, "--shared")
	assert.Contains(t, s, "--only-local")
	assert.NotContains(t, s, "--not-root", "non-root external rules are not collected")
}

// TestExternalSelfReferenceSkipped tests that a mapping pointing a file at
// itself contributes nothing
func TestExternalSelfReferenceSkipped(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "vars.css")
	require.NoError(t, os.WriteFile(current, []byte(`:root { --a: 1px; }`), 0o644))

	cfg := config.Default()
	cfg.RepoRootPath = dir
	cfg.ExternalVarMapping = map[string][]string{
		"**/*.css": {current},
	}

	collector := scope.NewCollector(cfg, tokens.NewRegistry())
	s, err := collector.Collect(current, parse(t, `:root { --a: 1px; }`))
	require.NoError(t, err)

	require.Contains(t, s, "--a")
	assert.False(t, s["--a"].IsExternal, "the definition should come from the local pass")
}

// TestMissingExternalFileIsNotFatal tests that a bad mapping target only logs
func TestMissingExternalFileIsNotFatal(t *testing.T) {
	cfg := config.Default()
	cfg.RepoRootPath = "/repo"
	cfg.ExternalVarMapping = map[string][]string{
		"**/*.css": {"/repo/does-not-exist.css"},
	}

	collector := scope.NewCollector(cfg, tokens.NewRegistry())
	s, err := collector.Collect("/repo/a.css", parse(t, `:root { --a: 1px; }`))
	require.NoError(t, err)
	assert.Contains(t, s, "--a")
}

// TestTokenIdentifiersNeverEnterScope tests the token-terminal invariant
func TestTokenIdentifiersNeverEnterScope(t *testing.T) {
	sheet := parse(t, `:root {
  --spacing-100: 99px;
  --plain: 1px;
}`)

	registry := tokens.NewRegistry("--spacing-100")
	collector := scope.NewCollector(config.Default(), registry)
	s, err := collector.Collect("/repo/a.css", sheet)
	require.NoError(t, err)

	assert.NotContains(t, s, "--spacing-100", "token identifiers are terminal, never scoped variables")
	assert.Contains(t, s, "--plain")
}

// TestDuplicateLocalDefinitionSkipped tests first-wins between local definitions
func TestDuplicateLocalDefinitionSkipped(t *testing.T) {
	sheet := parse(t, `:root {
  --dup: first;
}
:host {
  --dup: second;
}`)

	collector := scope.NewCollector(config.Default(), tokens.NewRegistry())
	s, err := collector.Collect("/repo/a.css", sheet)
	require.NoError(t, err)

	require.Contains(t, s, "--dup")
	assert.Equal(t, "first", s["--dup"].RawValue)
}
