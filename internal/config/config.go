package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ExclusionRule marks declaration values that should not count against token
// adoption. DescriptorPattern is "*" or an exact property name; each value
// matcher is an exact string or a wildcard pattern like "calc(*".
type ExclusionRule struct {
	DescriptorPattern string   `json:"descriptorPattern" yaml:"descriptorPattern"`
	ValueMatchers     []string `json:"valueMatchers" yaml:"valueMatchers"`
}

// TokenFileRef points at a design token file to load identifiers from
type TokenFileRef struct {
	Path   string `json:"path" yaml:"path"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Config is the run configuration for one analysis
type Config struct {
	// RepoRootPath is the root all report paths are normalized against
	RepoRootPath string `json:"repoRootPath" yaml:"repoRootPath"`

	// DesignTokenKeys are token identifiers given inline
	DesignTokenKeys []string `json:"designTokenKeys" yaml:"designTokenKeys"`

	// TokenFiles are design token files whose flattened keys join the set
	TokenFiles []TokenFileRef `json:"tokenFiles,omitempty" yaml:"tokenFiles,omitempty"`

	// TokenizableProperties are the CSS properties analyzed for token usage
	TokenizableProperties []string `json:"tokenizableProperties" yaml:"tokenizableProperties"`

	// ExternalVarMapping maps a glob pattern over analyzed file paths to the
	// files whose :root/:host custom properties are in scope for matches
	ExternalVarMapping map[string][]string `json:"externalVarMapping,omitempty" yaml:"externalVarMapping,omitempty"`

	// ExclusionRules mark values exempt from the token adoption denominator
	ExclusionRules []ExclusionRule `json:"exclusionRules,omitempty" yaml:"exclusionRules,omitempty"`

	// IncludeGlobs / ExcludeGlobs select the files to analyze
	IncludeGlobs []string `json:"includeGlobs,omitempty" yaml:"includeGlobs,omitempty"`
	ExcludeGlobs []string `json:"excludeGlobs,omitempty" yaml:"excludeGlobs,omitempty"`
}

// DefaultFileNames are the config file names searched when none is given
var DefaultFileNames = []string{
	".awdty.json",
	".awdty.jsonc",
	".awdty.yaml",
	".awdty.yml",
}

// Default returns the default run configuration
func Default() *Config {
	return &Config{
		TokenizableProperties: []string{
			"background",
			"background-color",
			"border",
			"border-color",
			"border-radius",
			"box-shadow",
			"color",
			"fill",
			"font-family",
			"font-size",
			"font-weight",
			"gap",
			"letter-spacing",
			"line-height",
			"margin",
			"margin-bottom",
			"margin-left",
			"margin-right",
			"margin-top",
			"outline-color",
			"padding",
			"padding-bottom",
			"padding-left",
			"padding-right",
			"padding-top",
			"stroke",
		},
		ExclusionRules: []ExclusionRule{
			{
				DescriptorPattern: "*",
				ValueMatchers: []string{
					"0", "auto", "none", "inherit", "initial", "unset",
					"transparent", "currentColor", "100%",
				},
			},
		},
		IncludeGlobs: []string{"**/*.css"},
		ExcludeGlobs: []string{"**/node_modules/**"},
	}
}

// Load reads a config file (JSON, JSONC, or YAML by extension), layered over
// the defaults. Relative paths inside the file resolve against the file's
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	cfg.resolvePaths(base)
	return cfg, nil
}

// Discover looks for a default-named config file in dir and loads it,
// falling back to the defaults when none exists
func Discover(dir string) (*Config, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	cfg := Default()
	base, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	cfg.RepoRootPath = base
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	if c.RepoRootPath == "" {
		c.RepoRootPath = base
	} else if !filepath.IsAbs(c.RepoRootPath) {
		c.RepoRootPath = filepath.Join(base, c.RepoRootPath)
	}
	for i, tf := range c.TokenFiles {
		if !filepath.IsAbs(tf.Path) {
			c.TokenFiles[i].Path = filepath.Join(base, tf.Path)
		}
	}
	for pattern, files := range c.ExternalVarMapping {
		for i, file := range files {
			if !filepath.IsAbs(file) {
				files[i] = filepath.Join(base, file)
			}
		}
		c.ExternalVarMapping[pattern] = files
	}
}
