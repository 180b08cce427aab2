package tokens_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/muffinresearch/arewedesigntokensyet/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryNormalization tests that identifiers are normalized to custom property form
func TestRegistryNormalization(t *testing.T) {
	r := tokens.NewRegistry("color.primary", "--spacing-100", "font-size-200")

	assert.Equal(t, 3, r.Count())
	assert.True(t, r.Has("--color-primary"))
	assert.True(t, r.Has("color.primary"))
	assert.True(t, r.Has("--spacing-100"))
	assert.True(t, r.Has("--font-size-200"))
	assert.False(t, r.Has("--color-secondary"))
}

// TestRegistryKeysSorted tests that Keys returns a deterministic sorted list
func TestRegistryKeysSorted(t *testing.T) {
	r := tokens.NewRegistry("b", "a", "c")
	assert.Equal(t, []string{"--a", "--b", "--c"}, r.Keys())
}

// TestLoadJSONTokenFile tests flattening a DTCG-style JSON file with comments
func TestLoadJSONTokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	content := `{
  // brand palette
  "color": {
    "primary": { "$value": "#0000ff", "$type": "color" },
    "surface": {
      "raised": { "$value": "#ffffff" }
    }
  },
  "spacing": {
    "100": { "$value": "8px" }
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := tokens.NewRegistry()
	require.NoError(t, r.LoadFile(path, ""))

	assert.Equal(t, 3, r.Count())
	assert.True(t, r.Has("--color-primary"))
	assert.True(t, r.Has("--color-surface-raised"))
	assert.True(t, r.Has("--spacing-100"))
}

// TestLoadYAMLTokenFileWithPrefix tests YAML flattening with a per-file prefix
func TestLoadYAMLTokenFileWithPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.yaml")
	content := `color:
  primary:
    $value: "#0000ff"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := tokens.NewRegistry()
	require.NoError(t, r.LoadFile(path, "ds"))

	assert.True(t, r.Has("--ds-color-primary"))
	assert.False(t, r.Has("--color-primary"))
}

// TestLoadFileErrors tests missing files and unsupported extensions
func TestLoadFileErrors(t *testing.T) {
	r := tokens.NewRegistry()

	err := r.LoadFile(filepath.Join(t.TempDir(), "missing.json"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")

	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	err = r.LoadFile(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported token file extension")
}
