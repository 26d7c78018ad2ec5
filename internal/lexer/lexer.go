// Package lexer turns TOPOS-Xi source text into an ordered token
// sequence. It tracks line/column the way the teacher's token lexer
// does (incrementing on '\n', resetting the column), but reads from an
// already-materialized string rather than an io.Reader since the whole
// program is handed to the pipeline at once.
package lexer

import (
	"go.uber.org/zap"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/diag"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/token"
)

// Lexer scans a fixed source string into tokens.
type Lexer struct {
	src    []rune
	pos    int
	line   int
	column int
	log    *zap.Logger
}

// New creates a Lexer over source. log may be nil, in which case a no-op
// logger is used.
func New(source string, log *zap.Logger) *Lexer {
	if log == nil {
		log = zap.NewNop()
	}

	return &Lexer{
		src:    []rune(source),
		line:   1,
		column: 1,
		log:    log,
	}
}

// Tokenize scans the entire source and returns its token sequence,
// terminated by an EOF token. It fails on the first unrecognized
// character with a *diag.LexError.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token

	for {
		tok, ok, err := l.next()
		if err != nil {
			return nil, err
		}

		if ok {
			tokens = append(tokens, tok)
		}

		if l.pos >= len(l.src) {
			break
		}
	}

	tokens = append(tokens, token.Token{Kind: token.EOF, Text: "", Pos: token.Position{Line: l.line, Column: 0}})
	l.log.Debug("lexing complete", zap.Int("tokens", len(tokens)))

	return tokens, nil
}

// next scans a single lexeme. ok is false when the rune(s) consumed were
// discarded (comment, whitespace, newline) rather than emitted as a
// token.
func (l *Lexer) next() (token.Token, bool, error) {
	if l.pos >= len(l.src) {
		return token.Token{}, false, nil
	}

	r := l.src[l.pos]
	startLine, startCol := l.line, l.column

	switch {
	case isDigit(r):
		return l.scanNumber(startLine, startCol), true, nil
	case r == '/' && l.peek(1) == '/':
		l.skipComment()
		return token.Token{}, false, nil
	case isIdentStart(r):
		return l.scanIdentifier(startLine, startCol), true, nil
	case r == '-' && l.peek(1) == '>':
		l.advance()
		l.advance()
		return token.Token{Kind: token.OPERATOR, Text: "->", Pos: token.Position{Line: startLine, Column: startCol}}, true, nil
	case isOperatorRune(r):
		l.advance()
		return token.Token{Kind: token.OPERATOR, Text: string(r), Pos: token.Position{Line: startLine, Column: startCol}}, true, nil
	case isDelimiterRune(r):
		l.advance()
		return token.Token{Kind: token.DELIMITER, Text: string(r), Pos: token.Position{Line: startLine, Column: startCol}}, true, nil
	case r == '"':
		return l.scanString(startLine, startCol)
	case r == ' ' || r == '\t':
		l.advance()
		return token.Token{}, false, nil
	case r == '\n':
		l.advance()
		return token.Token{}, false, nil
	default:
		pos := token.Position{Line: startLine, Column: startCol}
		return token.Token{}, false, diag.NewLexError(pos, "Unexpected character %q", r)
	}
}

func (l *Lexer) scanNumber(line, col int) token.Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.advance()
	}

	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.advance()
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance()
		}
	}

	return token.Token{Kind: token.NUMBER, Text: string(l.src[start:l.pos]), Pos: token.Position{Line: line, Column: col}}
}

func (l *Lexer) scanIdentifier(line, col int) token.Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
		l.advance()
	}

	text := string(l.src[start:l.pos])

	kind := token.IDENTIFIER
	if token.Keywords[text] {
		kind = token.KEYWORD
	}

	return token.Token{Kind: kind, Text: text, Pos: token.Position{Line: line, Column: col}}
}

func (l *Lexer) scanString(line, col int) (token.Token, bool, error) {
	l.advance() // opening quote

	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		l.advance()
	}

	if l.pos >= len(l.src) {
		pos := token.Position{Line: line, Column: col}
		return token.Token{}, false, diag.NewLexError(pos, "unterminated string literal")
	}

	text := string(l.src[start:l.pos])
	l.advance() // closing quote

	return token.Token{Kind: token.STRING, Text: text, Pos: token.Position{Line: line, Column: col}}, true, nil
}

func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance()
	}
}

// advance consumes the current rune and updates the line/column tracker.
func (l *Lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	l.pos++
}

// peek looks ahead offset runes without consuming, returning 0 past EOF.
func (l *Lexer) peek(offset int) rune {
	i := l.pos + offset
	if i >= len(l.src) {
		return 0
	}

	return l.src[i]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isOperatorRune(r rune) bool {
	switch r {
	case '=', '<', '>', '+', '-', '*', '/':
		return true
	default:
		return false
	}
}

func isDelimiterRune(r rune) bool {
	switch r {
	case '{', '}', '(', ')', '[', ']', ',', ';', ':':
		return true
	default:
		return false
	}
}
