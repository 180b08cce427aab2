package css

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses CSS source and extracts rules with their declarations
func (p *Parser) Parse(source string) (*Stylesheet, error) {
	tree := p.parser.Parse([]byte(source), nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	sheet := &Stylesheet{Rules: []*Rule{}}
	p.walkTree(tree.RootNode(), []byte(source), sheet)
	return sheet, nil
}

// walkTree recursively walks the tree collecting rule sets, including
// ones nested inside at-rules like @media
func (p *Parser) walkTree(node *sitter.Node, source []byte, sheet *Stylesheet) {
	if node == nil {
		return
	}

	if node.Kind() == "rule_set" {
		if rule := p.handleRuleSet(node, source); rule != nil {
			sheet.Rules = append(sheet.Rules, rule)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		p.walkTree(node.Child(i), source, sheet)
	}
}

// handleRuleSet extracts the selector and declarations from a rule_set node
func (p *Parser) handleRuleSet(node *sitter.Node, source []byte) *Rule {
	var selectorsNode *sitter.Node
	var blockNode *sitter.Node

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "selectors":
			selectorsNode = child
		case "block":
			blockNode = child
		}
	}

	if selectorsNode == nil || blockNode == nil {
		return nil
	}

	rule := &Rule{
		Selector: strings.TrimSpace(nodeText(selectorsNode, source)),
		Text:     nodeText(node, source),
		Range:    nodeRange(node),
	}

	for i := uint(0); i < blockNode.ChildCount(); i++ {
		child := blockNode.Child(i)
		if child.Kind() != "declaration" {
			continue
		}
		if decl := p.handleDeclaration(child, source); decl != nil {
			decl.Rule = rule
			rule.Declarations = append(rule.Declarations, decl)
		}
	}

	return rule
}

// handleDeclaration extracts the property name and literal value text.
// The value is sliced from the source between the colon and the end of the
// declaration so that spacing and function syntax survive intact.
func (p *Parser) handleDeclaration(node *sitter.Node, source []byte) *Declaration {
	var propertyNode *sitter.Node
	var colonNode *sitter.Node

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_name":
			propertyNode = child
		case ":":
			if colonNode == nil {
				colonNode = child
			}
		}
	}

	if propertyNode == nil || colonNode == nil {
		return nil
	}

	value := string(source[colonNode.EndByte():node.EndByte()])
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))

	return &Declaration{
		Prop:  nodeText(propertyNode, source),
		Value: value,
		Range: nodeRange(node),
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func nodeRange(node *sitter.Node) Range {
	return Range{
		Start: Position{
			Line:      uint32(node.StartPosition().Row),
			Character: uint32(node.StartPosition().Column),
		},
		End: Position{
			Line:      uint32(node.EndPosition().Row),
			Character: uint32(node.EndPosition().Column),
		},
	}
}

// IsRootScoped reports whether a selector targets the file-global scope,
// i.e. contains :root or :host
func IsRootScoped(selector string) bool {
	return strings.Contains(selector, ":root") || strings.Contains(selector, ":host")
}

// IsCustomProperty reports whether a property name declares a CSS custom property
func IsCustomProperty(prop string) bool {
	return strings.HasPrefix(prop, "--")
}
