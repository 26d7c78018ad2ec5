// Package ast defines the TOPOS-Xi abstract syntax tree. Nodes are built
// once by the parser and are never mutated afterward; the analyzer and
// interpreter both walk the same immutable tree.
package ast

import "github.com/Captain-Panda2024/TOPOS-Xi/internal/token"

// TypeExpr is either a named type carrying an ordered list of type
// parameters (Params may be nil for a plain name), or the distinguished
// binary product of two other TypeExprs. Product is non-nil exactly when
// this node represents "Left * Right"; Name/Params are the zero value in
// that case. The parser's right-recursive parseType and the stdlib's
// signature parser build product chains right-nested: "A * B * C" is
// Product(A, Product(B, C)). The analyzer's pair step builds a product
// from its two inferred argument types as they are, so a product-typed
// first argument yields a left-nested product.
type TypeExpr struct {
	Name    string
	Params  []*TypeExpr
	Product *ProductType
}

// ProductType holds the two operands of a product type.
type ProductType struct {
	Left  *TypeExpr
	Right *TypeExpr
}

// NewNamedType builds an atomic or parameterized named type.
func NewNamedType(name string, params []*TypeExpr) *TypeExpr {
	return &TypeExpr{Name: name, Params: params}
}

// NewProductType builds "left * right".
func NewProductType(left, right *TypeExpr) *TypeExpr {
	return &TypeExpr{Product: &ProductType{Left: left, Right: right}}
}

// IsProduct reports whether t is a product node.
func (t *TypeExpr) IsProduct() bool {
	return t != nil && t.Product != nil
}

// String renders t the way it was written in source.
func (t *TypeExpr) String() string {
	if t == nil {
		return "<none>"
	}

	if t.Product != nil {
		return t.Product.Left.String() + " * " + t.Product.Right.String()
	}

	if len(t.Params) > 0 {
		s := t.Name + "<"
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ">"
	}

	return t.Name
}

// Arg is the value side of the grammar: a literal, a bare identifier, or
// a nested MappingCall. PropertyDef defaults and MappingCall arguments
// are both Args.
type Arg interface {
	isArg()
}

// Literal is a NUMBER or STRING token used as a value. Kind
// distinguishes the two (STRING tokens already have their surrounding
// quotes stripped by the lexer).
type Literal struct {
	Kind token.Kind
	Text string
	Pos  token.Position
}

func (*Literal) isArg() {}

// IdentArg is a bare identifier used as a value (a variable reference or
// a symbol-table name).
type IdentArg struct {
	Name string
	Pos  token.Position
}

func (*IdentArg) isArg() {}

// MappingCall invokes a mapping, external entity, or builtin (pair, fst,
// snd, token, ...) with zero or more arguments. It is both an Arg (as a
// property default or nested call argument) and a Step (as a path
// element).
type MappingCall struct {
	Name string
	Args []Arg
	Pos  token.Position
}

func (*MappingCall) isArg()  {}
func (*MappingCall) isStep() {}

// Parameter is a mapping's formal argument.
type Parameter struct {
	Name string
	Type *TypeExpr
}

// PropertyDef declares a property of a Space or Mapping, with an optional
// default value.
type PropertyDef struct {
	Name    string
	Type    *TypeExpr
	Default Arg // nil if absent
}

// Step is a path element: a bare identifier, a MappingCall, a
// LambdaMapping, or a MatchExpr.
type Step interface {
	isStep()
}

// Ident is a bare-name path step (a variable load, or a zero-arg call by
// convention).
type Ident struct {
	Name string
	Pos  token.Position
}

func (*Ident) isStep() {}

// LambdaMapping is an anonymous mapping literal appearing inline in a
// path: "(params) { path }".
type LambdaMapping struct {
	Params []*Parameter
	Path   []Step
	Pos    token.Position
}

func (*LambdaMapping) isStep() {}

// MatchCase is one arm of a MatchExpr. Value is the case token's text
// (a STRING case arrives with its quotes already stripped by the lexer),
// including the wildcard "_".
type MatchCase struct {
	Value string
	Path  []Step
}

// MatchExpr dispatches on Target's runtime/scope value against each
// case's literal text.
type MatchExpr struct {
	Target string
	Cases  []*MatchCase
	Pos    token.Position
}

func (*MatchExpr) isStep() {}

// MappingDef is a named, optionally-signed mapping.
type MappingDef struct {
	Name       string
	Params     []*Parameter
	Source     *TypeExpr // nil if the mapping declares no source
	Target     *TypeExpr // nil if the mapping declares no target
	Properties []*PropertyDef
	Path       []Step
	Pos        token.Position
}

// SpaceDef is a named space: its declared properties and the mappings it
// contains.
type SpaceDef struct {
	Name       string
	Properties []*PropertyDef
	Members    []*MappingDef
	Pos        token.Position
}

// Program is the root of a parsed source file: a sequence of SpaceDefs.
type Program struct {
	Spaces []*SpaceDef
}
