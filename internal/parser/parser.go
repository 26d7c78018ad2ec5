// Package parser implements the recursive-descent TOPOS-Xi parser: tokens
// in, an ast.Program out.
package parser

import (
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/ast"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/diag"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/token"
)

// Parser consumes a token sequence produced by the lexer.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New creates a Parser over tokens, which must end with an EOF token.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseProgram parses a full source file: a sequence of SpaceDefs until
// EOF.
func ParseProgram(tokens []token.Token) (*ast.Program, error) {
	p := New(tokens)

	var spaces []*ast.SpaceDef
	for p.peek().Kind != token.EOF {
		space, err := p.parseSpace()
		if err != nil {
			return nil, err
		}

		spaces = append(spaces, space)
	}

	return &ast.Program{Spaces: spaces}, nil
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

// anyKind is used with consume to mean "match text regardless of kind".
const anyKind token.Kind = -1

// consume advances past the current token, requiring it to match kind
// (unless kind is anyKind) and text (unless text is empty).
func (p *Parser) consume(kind token.Kind, text string) (token.Token, error) {
	t := p.peek()

	if kind != anyKind && t.Kind != kind {
		return token.Token{}, diag.NewSyntaxError(t.Pos, "Expected %s, got %s", kind, t.Kind)
	}

	if text != "" && t.Text != text {
		return token.Token{}, diag.NewSyntaxError(t.Pos, "Expected %q, got %q", text, t.Text)
	}

	p.pos++

	return t, nil
}

func (p *Parser) consumeKind(kind token.Kind) (token.Token, error) {
	return p.consume(kind, "")
}

func (p *Parser) consumeText(text string) (token.Token, error) {
	return p.consume(anyKind, text)
}

func (p *Parser) at(text string) bool {
	return p.peek().Text == text
}

func (p *Parser) parseSpace() (*ast.SpaceDef, error) {
	kw, err := p.consume(token.KEYWORD, "space")
	if err != nil {
		return nil, err
	}

	name, err := p.consumeKind(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeText("{"); err != nil {
		return nil, err
	}

	var props []*ast.PropertyDef
	if p.at("properties") {
		props, err = p.parseProperties()
		if err != nil {
			return nil, err
		}
	}

	var members []*ast.MappingDef
	for !p.at("}") {
		if p.at("mapping") {
			m, err := p.parseMapping()
			if err != nil {
				return nil, err
			}

			members = append(members, m)
		} else {
			// Unrecognized member keyword (e.g. a bare "shape" placeholder):
			// skip the token, matching the original loader's tolerant scan.
			p.pos++
		}
	}

	if _, err := p.consumeText("}"); err != nil {
		return nil, err
	}

	return &ast.SpaceDef{Name: name.Text, Properties: props, Members: members, Pos: kw.Pos}, nil
}

func (p *Parser) parseProperties() ([]*ast.PropertyDef, error) {
	if _, err := p.consume(token.KEYWORD, "properties"); err != nil {
		return nil, err
	}

	if _, err := p.consumeText("{"); err != nil {
		return nil, err
	}

	var props []*ast.PropertyDef
	for !p.at("}") {
		name, err := p.consumeKind(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}

		if _, err := p.consumeText(":"); err != nil {
			return nil, err
		}

		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}

		var def ast.Arg
		if p.at("=") {
			if _, err := p.consumeText("="); err != nil {
				return nil, err
			}

			def, err = p.parseValueOrCall()
			if err != nil {
				return nil, err
			}
		}

		props = append(props, &ast.PropertyDef{Name: name.Text, Type: typ, Default: def})
	}

	if _, err := p.consumeText("}"); err != nil {
		return nil, err
	}

	return props, nil
}

// parseType parses a right-associative product chain: atom ('*' type)?.
func (p *Parser) parseType() (*ast.TypeExpr, error) {
	left, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}

	if p.at("*") {
		if _, err := p.consumeText("*"); err != nil {
			return nil, err
		}

		right, err := p.parseType()
		if err != nil {
			return nil, err
		}

		return ast.NewProductType(left, right), nil
	}

	return left, nil
}

func (p *Parser) parseTypeAtom() (*ast.TypeExpr, error) {
	if p.at("(") {
		if _, err := p.consumeText("("); err != nil {
			return nil, err
		}

		t, err := p.parseType()
		if err != nil {
			return nil, err
		}

		if _, err := p.consumeText(")"); err != nil {
			return nil, err
		}

		return t, nil
	}

	name := p.peek()
	p.pos++

	var params []*ast.TypeExpr
	if p.at("<") {
		if _, err := p.consumeText("<"); err != nil {
			return nil, err
		}

		for {
			pt, err := p.parseType()
			if err != nil {
				return nil, err
			}

			params = append(params, pt)

			if p.at(">") {
				break
			}

			if _, err := p.consumeText(","); err != nil {
				return nil, err
			}
		}

		if _, err := p.consumeText(">"); err != nil {
			return nil, err
		}
	}

	return ast.NewNamedType(name.Text, params), nil
}

func (p *Parser) parseParams() ([]*ast.Parameter, error) {
	if _, err := p.consumeText("("); err != nil {
		return nil, err
	}

	var params []*ast.Parameter
	for !p.at(")") {
		name, err := p.consumeKind(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}

		if _, err := p.consumeText(":"); err != nil {
			return nil, err
		}

		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}

		params = append(params, &ast.Parameter{Name: name.Text, Type: typ})

		if p.at(",") {
			if _, err := p.consumeText(","); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.consumeText(")"); err != nil {
		return nil, err
	}

	return params, nil
}

// parseValueOrCall parses a literal, identifier, or nested MappingCall.
func (p *Parser) parseValueOrCall() (ast.Arg, error) {
	t := p.peek()

	switch t.Kind {
	case token.IDENTIFIER:
		p.pos++

		if p.at("(") {
			if _, err := p.consumeText("("); err != nil {
				return nil, err
			}

			var args []ast.Arg
			for !p.at(")") {
				arg, err := p.parseValueOrCall()
				if err != nil {
					return nil, err
				}

				args = append(args, arg)

				if p.at(",") {
					if _, err := p.consumeText(","); err != nil {
						return nil, err
					}
				}
			}

			if _, err := p.consumeText(")"); err != nil {
				return nil, err
			}

			return &ast.MappingCall{Name: t.Text, Args: args, Pos: t.Pos}, nil
		}

		return &ast.IdentArg{Name: t.Text, Pos: t.Pos}, nil
	case token.STRING, token.NUMBER:
		p.pos++
		return &ast.Literal{Kind: t.Kind, Text: t.Text, Pos: t.Pos}, nil
	default:
		return nil, diag.NewSyntaxError(t.Pos, "Unexpected token: %s", t)
	}
}

// parsePathStep parses a bare identifier or MappingCall appearing directly
// in a path, as opposed to as a property default or call argument (see
// parseValueOrCall): a bare name becomes an *ast.Ident, a call becomes an
// *ast.MappingCall, which satisfies both ast.Arg and ast.Step.
func (p *Parser) parsePathStep() (ast.Step, error) {
	t := p.peek()

	if t.Kind != token.IDENTIFIER {
		return nil, diag.NewSyntaxError(t.Pos, "Unexpected token: %s", t)
	}

	p.pos++

	if p.at("(") {
		if _, err := p.consumeText("("); err != nil {
			return nil, err
		}

		var args []ast.Arg
		for !p.at(")") {
			arg, err := p.parseValueOrCall()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if p.at(",") {
				if _, err := p.consumeText(","); err != nil {
					return nil, err
				}
			}
		}

		if _, err := p.consumeText(")"); err != nil {
			return nil, err
		}

		return &ast.MappingCall{Name: t.Text, Args: args, Pos: t.Pos}, nil
	}

	return &ast.Ident{Name: t.Text, Pos: t.Pos}, nil
}

// parsePathContent parses the body of a "path { ... }" block into steps.
func (p *Parser) parsePathContent() ([]ast.Step, error) {
	if _, err := p.consume(token.KEYWORD, "path"); err != nil {
		return nil, err
	}

	if _, err := p.consumeText("{"); err != nil {
		return nil, err
	}

	var steps []ast.Step
	for !p.at("}") {
		var step ast.Step
		var err error

		switch {
		case p.at("("):
			step, err = p.parseLambda()
		case p.at("match"):
			step, err = p.parseMatch()
		default:
			step, err = p.parsePathStep()
		}

		if err != nil {
			return nil, err
		}

		steps = append(steps, step)

		if p.at("->") {
			if _, err := p.consumeText("->"); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.consumeText("}"); err != nil {
		return nil, err
	}

	return steps, nil
}

func (p *Parser) parseLambda() (ast.Step, error) {
	pos := p.peek().Pos

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeText("{"); err != nil {
		return nil, err
	}

	path, err := p.parsePathContent()
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeText("}"); err != nil {
		return nil, err
	}

	return &ast.LambdaMapping{Params: params, Path: path, Pos: pos}, nil
}

func (p *Parser) parseMatch() (ast.Step, error) {
	kw, err := p.consume(token.KEYWORD, "match")
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeText("("); err != nil {
		return nil, err
	}

	target, err := p.consumeKind(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeText(")"); err != nil {
		return nil, err
	}

	if _, err := p.consumeText("{"); err != nil {
		return nil, err
	}

	var cases []*ast.MatchCase
	for !p.at("}") {
		// A match-case value token may be any token kind (including the
		// wildcard "_", which lexes as a plain identifier); only its
		// textual value is meaningful.
		value := p.peek()
		p.pos++

		if _, err := p.consumeText("->"); err != nil {
			return nil, err
		}

		if _, err := p.consumeText("{"); err != nil {
			return nil, err
		}

		path, err := p.parsePathContent()
		if err != nil {
			return nil, err
		}

		if _, err := p.consumeText("}"); err != nil {
			return nil, err
		}

		cases = append(cases, &ast.MatchCase{Value: value.Text, Path: path})
	}

	if _, err := p.consumeText("}"); err != nil {
		return nil, err
	}

	return &ast.MatchExpr{Target: target.Text, Cases: cases, Pos: kw.Pos}, nil
}

func (p *Parser) parseMapping() (*ast.MappingDef, error) {
	kw, err := p.consume(token.KEYWORD, "mapping")
	if err != nil {
		return nil, err
	}

	name, err := p.consumeKind(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	var source, target *ast.TypeExpr
	switch {
	case p.at(":"):
		if _, err := p.consumeText(":"); err != nil {
			return nil, err
		}

		source, err = p.parseType()
		if err != nil {
			return nil, err
		}

		if _, err := p.consumeText("->"); err != nil {
			return nil, err
		}

		target, err = p.parseType()
		if err != nil {
			return nil, err
		}
	case p.at("->"):
		if _, err := p.consumeText("->"); err != nil {
			return nil, err
		}

		target, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consumeText("{"); err != nil {
		return nil, err
	}

	var props []*ast.PropertyDef
	if p.at("properties") {
		props, err = p.parseProperties()
		if err != nil {
			return nil, err
		}
	}

	path, err := p.parsePathContent()
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeText("}"); err != nil {
		return nil, err
	}

	return &ast.MappingDef{
		Name:       name.Text,
		Params:     params,
		Source:     source,
		Target:     target,
		Properties: props,
		Path:       path,
		Pos:        kw.Pos,
	}, nil
}
