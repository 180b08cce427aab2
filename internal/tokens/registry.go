package tokens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/muffinresearch/arewedesigntokensyet/internal/collections"
)

// Registry holds the fixed set of design token identifiers for a run.
// Identifiers are stored as CSS custom property names (e.g. "--color-primary").
// Membership in the registry is terminal: a name that is a token is never
// treated as an aliasable variable, no matter what a CSS file declares.
type Registry struct {
	keys collections.Set[string]
}

// NewRegistry creates a registry from the given identifiers
func NewRegistry(keys ...string) *Registry {
	r := &Registry{keys: collections.NewSet[string]()}
	r.Add(keys...)
	return r
}

// Add inserts identifiers, normalizing them to custom property form
func (r *Registry) Add(keys ...string) {
	for _, key := range keys {
		r.keys.Add(Normalize(key))
	}
}

// Has reports whether name is a design token identifier
func (r *Registry) Has(name string) bool {
	return r.keys.Has(Normalize(name))
}

// Count returns the number of known token identifiers
func (r *Registry) Count() int {
	return len(r.keys)
}

// Keys returns all token identifiers in sorted order
func (r *Registry) Keys() []string {
	keys := r.keys.Members()
	sort.Strings(keys)
	return keys
}

// Normalize converts a token identifier to CSS custom property form:
// dots become hyphens and a "--" prefix is ensured
func Normalize(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), ".", "-")
	if !strings.HasPrefix(key, "--") {
		key = "--" + key
	}
	return key
}

// LoadFile reads a design token file (DTCG-style JSON, JSONC, or YAML) and
// adds every token it defines to the registry. Nested group names are joined
// with hyphens; a node carrying a $value key is a token. An optional prefix
// is prepended to every identifier from this file.
func (r *Registry) LoadFile(path, prefix string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var raw map[string]interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse token file %s: %w", path, err)
		}
	case ".json", ".jsonc":
		// jsonc strips comments and trailing commas
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return fmt.Errorf("failed to parse token file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported token file extension %q in %s", ext, path)
	}

	r.extract(raw, prefix)
	return nil
}

// extract recursively flattens token groups into hyphen-joined identifiers
func (r *Registry) extract(data map[string]interface{}, path string) {
	for key, value := range data {
		valueMap, isMap := value.(map[string]interface{})
		if !isMap {
			continue
		}

		name := key
		if path != "" {
			name = path + "-" + key
		}

		if _, hasValue := valueMap["$value"]; hasValue {
			r.Add(name)
		} else {
			r.extract(valueMap, name)
		}
	}
}
