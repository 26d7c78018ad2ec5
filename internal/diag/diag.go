// Package diag defines the TOPOS-Xi error taxonomy and the diagnostic
// rendering required by the CLI driver. Every pipeline stage returns one
// of these typed errors instead of a bare fmt.Errorf, so a caller can
// switch on Kind without string matching.
package diag

import (
	"errors"
	"fmt"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/token"
)

// Phase names a pipeline stage, used in the "Syntax Error during <Phase>"
// rendering required by the lexer/parser failure modes.
type Phase string

const (
	PhaseLexing  Phase = "Lexing"
	PhaseParsing Phase = "Parsing"
)

// LexError reports an unrecognized character during lexing.
type LexError struct {
	Pos token.Position
	Msg string
}

func NewLexError(pos token.Position, format string, args ...any) *LexError {
	return &LexError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Pos)
}

// SyntaxError reports an unexpected token during parsing.
type SyntaxError struct {
	Pos token.Position
	Msg string
}

func NewSyntaxError(pos token.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Pos)
}

// SemanticKind enumerates the semantic-analysis failure modes of §7.
type SemanticKind string

const (
	TypeMismatch          SemanticKind = "Type Mismatch"
	UnknownType           SemanticKind = "Unknown Type"
	CompositionError      SemanticKind = "Composition Error"
	ProjectionError       SemanticKind = "Projection Error"
	PairError             SemanticKind = "Pair Error"
	MorphismError         SemanticKind = "Morphism Error"
	TopologicalViolation  SemanticKind = "Topological Violation"
	OrientationViolation  SemanticKind = "Orientation Violation"
	HomotopyViolation     SemanticKind = "Homotopy Violation"
	PathEmpty             SemanticKind = "Path Error"
)

// SemanticError is raised by the analyzer and aborts the pipeline.
type SemanticError struct {
	Kind    SemanticKind
	Context string
	Msg     string
}

func NewSemanticError(kind SemanticKind, context, format string, args ...any) *SemanticError {
	return &SemanticError{Kind: kind, Context: context, Msg: fmt.Sprintf(format, args...)}
}

func (e *SemanticError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s in '%s': %s", e.Kind, e.Context, e.Msg)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// RuntimeError reports a fatal interpreter failure: recursion depth
// exceeded, or an unresolved identifier under strict mode.
// Projection/arity mismatches are logged and skipped per §7, never
// returned as a RuntimeError.
type RuntimeError struct {
	Msg string
}

func NewRuntimeError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string {
	return e.Msg
}

// Explain renders err the way the CLI driver prints it on stdout/stderr:
//
//	Syntax Error during Lexing: <message>
//	Syntax Error during Parsing: <message>
//	[FAILURE] <Kind>: <message>
func Explain(err error) string {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return fmt.Sprintf("Syntax Error during %s: %s", PhaseLexing, lexErr.Error())
	}

	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		return fmt.Sprintf("Syntax Error during %s: %s", PhaseParsing, synErr.Error())
	}

	var semErr *SemanticError
	if errors.As(err, &semErr) {
		return fmt.Sprintf("[FAILURE] %s: %s", semErr.Kind, semErr.Msg)
	}

	var runErr *RuntimeError
	if errors.As(err, &runErr) {
		return fmt.Sprintf("[FAILURE] Runtime Error: %s", runErr.Msg)
	}

	return fmt.Sprintf("[FAILURE] Error: %s", err.Error())
}
