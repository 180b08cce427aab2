package css

// Position represents a position in a source file
type Position struct {
	Line      uint32
	Character uint32
}

// Range represents a span in a source file
type Range struct {
	Start Position
	End   Position
}

// Declaration represents one property/value pair inside a rule
type Declaration struct {
	// Prop is the property name (e.g. "margin-top" or "--spacing-100")
	Prop string

	// Value is the literal value text, trimmed, without the trailing semicolon
	Value string

	Range Range

	// Rule is the rule this declaration belongs to
	Rule *Rule
}

// Rule represents a rule set (selector plus declaration block)
type Rule struct {
	// Selector is the full selector text (e.g. ":root", ".card > a:hover")
	Selector string

	// Text is the complete source text of the rule including its block,
	// used for rule-local self-consumption checks
	Text string

	Range Range

	Declarations []*Declaration
}

// Stylesheet is the parsed form of one CSS file
type Stylesheet struct {
	Rules []*Rule
}

// Declarations returns every declaration in the stylesheet in source order
func (s *Stylesheet) Declarations() []*Declaration {
	var decls []*Declaration
	for _, rule := range s.Rules {
		decls = append(decls, rule.Declarations...)
	}
	return decls
}
