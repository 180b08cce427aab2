package css_test

import (
	"testing"

	"github.com/muffinresearch/arewedesigntokensyet/internal/parser/css"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseSimpleRule tests parsing a rule with one custom property declaration
func TestParseSimpleRule(t *testing.T) {
	cssCode := `:root {
  --color-primary: #0000ff;
}`

	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse(cssCode)
	require.NoError(t, err, "Parsing should not error")
	require.NotNil(t, sheet)

	require.Len(t, sheet.Rules, 1, "Should find one rule")
	rule := sheet.Rules[0]
	assert.Equal(t, ":root", rule.Selector)
	assert.Contains(t, rule.Text, "--color-primary: #0000ff;")

	require.Len(t, rule.Declarations, 1)
	decl := rule.Declarations[0]
	assert.Equal(t, "--color-primary", decl.Prop)
	assert.Equal(t, "#0000ff", decl.Value)
	assert.Same(t, rule, decl.Rule)
	assert.Equal(t, uint32(1), decl.Range.Start.Line, "Declaration should be on line 1 (0-indexed)")
}

// TestParseMultipleRules tests that every rule and declaration is collected in order
func TestParseMultipleRules(t *testing.T) {
	cssCode := `:root {
  --spacing-small: 8px;
}

.card {
  margin-top: var(--spacing-small);
  color: red;
}`

	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse(cssCode)
	require.NoError(t, err)

	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, ":root", sheet.Rules[0].Selector)
	assert.Equal(t, ".card", sheet.Rules[1].Selector)

	decls := sheet.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "--spacing-small", decls[0].Prop)
	assert.Equal(t, "margin-top", decls[1].Prop)
	assert.Equal(t, "var(--spacing-small)", decls[1].Value)
	assert.Equal(t, "color", decls[2].Prop)
	assert.Equal(t, "red", decls[2].Value)
}

// TestParseFunctionValues tests that function syntax survives value extraction
func TestParseFunctionValues(t *testing.T) {
	cssCode := `.box {
  width: calc(100% - var(--gutter, 16px));
}`

	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse(cssCode)
	require.NoError(t, err)

	decls := sheet.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, "width", decls[0].Prop)
	assert.Equal(t, "calc(100% - var(--gutter, 16px))", decls[0].Value)
}

// TestParseNestedMediaRule tests that rules inside @media blocks are collected
func TestParseNestedMediaRule(t *testing.T) {
	cssCode := `@media (min-width: 600px) {
  .wide {
    padding: 16px;
  }
}`

	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse(cssCode)
	require.NoError(t, err)

	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, ".wide", sheet.Rules[0].Selector)
	require.Len(t, sheet.Rules[0].Declarations, 1)
	assert.Equal(t, "padding", sheet.Rules[0].Declarations[0].Prop)
	assert.Equal(t, "16px", sheet.Rules[0].Declarations[0].Value)
}

// TestParseEmptySource tests that an empty file yields an empty stylesheet
func TestParseEmptySource(t *testing.T) {
	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	sheet, err := parser.Parse("")
	require.NoError(t, err)
	assert.Empty(t, sheet.Rules)
	assert.Empty(t, sheet.Declarations())
}

// TestIsRootScoped tests selector scope detection
func TestIsRootScoped(t *testing.T) {
	assert.True(t, css.IsRootScoped(":root"))
	assert.True(t, css.IsRootScoped(":host"))
	assert.True(t, css.IsRootScoped(":host(.dark)"))
	assert.True(t, css.IsRootScoped("html:root"))
	assert.False(t, css.IsRootScoped(".card"))
	assert.False(t, css.IsRootScoped("body"))
}

// TestIsCustomProperty tests custom property name detection
func TestIsCustomProperty(t *testing.T) {
	assert.True(t, css.IsCustomProperty("--spacing-100"))
	assert.False(t, css.IsCustomProperty("margin-top"))
}
