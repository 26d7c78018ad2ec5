// Package stdlib loads the TOPOS-Xi standard-library manifest format:
// plain-text ".htf" files containing "[TAG: value]" annotation blocks,
// one ExternalEntity record per "[ENTITY: ...]".
package stdlib

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer/stateful"
)

// Manifest is the root grammar node: a flat sequence of tag blocks, one
// per "[NAME: value]" annotation.
type Manifest struct {
	Tags []*Tag `@@*`
}

// Tag is one "[NAME: Value]" annotation. Value is the bracket's raw
// interior text, unparsed — a PROPERTIES block's multi-line bullet list
// gets its own line-oriented parse in loader.go, the same way the
// original loader regex-matches each property field independently
// rather than giving PROPERTIES its own sub-grammar.
type Tag struct {
	Name  string `"[" @Ident ":"`
	Value string `@Value "]"`
}

// buildLexer uses a stateful lexer because the bracket's value text can
// contain characters (spaces, "*", "<", ">", newlines, quotes) that
// would otherwise need their own competing token rules: once a "[NAME:"
// has been seen, everything up to the next "]" is lexed as one opaque
// Value token regardless of its contents.
func buildLexer() *stateful.Definition {
	return stateful.New(stateful.Rules{
		"Root": {
			{Name: "comment", Pattern: `//[^\n]*`},
			{Name: "whitespace", Pattern: `\s+`},
			{Name: "LBracket", Pattern: `\[`, Action: stateful.Push("InTag")},
		},
		"InTag": {
			{Name: "whitespace", Pattern: `\s+`},
			{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
			{Name: "Colon", Pattern: `:`, Action: stateful.Push("InValue")},
			{Name: "RBracket", Pattern: `\]`, Action: stateful.Pop()},
		},
		"InValue": {
			{Name: "Value", Pattern: `[^\]]*`, Action: stateful.Pop()},
		},
	})
}

var parser = participle.MustBuild(&Manifest{},
	participle.Lexer(buildLexer()),
	participle.Elide("whitespace", "comment"),
)

// Parse parses the contents of a single .htf file into its flat tag
// sequence.
func Parse(filename, content string) (*Manifest, error) {
	m := &Manifest{}
	if err := parser.ParseString(filename, content, m); err != nil {
		return nil, err
	}

	return m, nil
}

// TrimmedValue strips the leading/trailing whitespace a Value token
// picks up around "name: value" pairs.
func (t *Tag) TrimmedValue() string {
	return strings.TrimSpace(t.Value)
}
