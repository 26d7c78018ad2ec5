package analyzer

import (
	"errors"
	"testing"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/ast"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/diag"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/lexer"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/parser"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/symbols"
)

func analyze(t *testing.T, src string) error {
	t.Helper()

	toks, err := lexer.New(src, nil).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}

	return New(symbols.New(), nil).Analyze(prog)
}

func TestAnalyzeValidIdentityMapping(t *testing.T) {
	err := analyze(t, `
		space S {
			mapping identity(x: A): A -> A {
				path { x }
			}
		}
	`)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
}

func TestAnalyzeProjectionError(t *testing.T) {
	err := analyze(t, `
		space S {
			mapping bad(x: A): A -> A {
				path { fst }
			}
		}
	`)

	var semErr *diag.SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != diag.ProjectionError {
		t.Fatalf("Analyze() error = %v, want ProjectionError", err)
	}
}

func TestAnalyzeProductProjection(t *testing.T) {
	err := analyze(t, `
		space S {
			mapping split(): A * B -> A {
				path { fst }
			}
		}
	`)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
}

func TestAnalyzePairError(t *testing.T) {
	err := analyze(t, `
		space S {
			mapping bad() -> A {
				path { pair(1) }
			}
		}
	`)

	var semErr *diag.SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != diag.PairError {
		t.Fatalf("Analyze() error = %v, want PairError", err)
	}
}

func TestAnalyzeMorphismError(t *testing.T) {
	err := analyze(t, `
		space S {
			mapping bad() -> A {
				path { pair(1, 2) }
			}
		}
	`)

	var semErr *diag.SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != diag.MorphismError {
		t.Fatalf("Analyze() error = %v, want MorphismError", err)
	}
}

func TestAnalyzeUnknownType(t *testing.T) {
	err := analyze(t, `
		space S {
			properties {
				x: Ghost = 1
			}
		}
	`)

	var semErr *diag.SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != diag.UnknownType {
		t.Fatalf("Analyze() error = %v, want UnknownType", err)
	}
}

func TestAnalyzeBooleanTypeMismatch(t *testing.T) {
	err := analyze(t, `
		space S {
			properties {
				flag: Boolean = maybe
			}
		}
	`)

	var semErr *diag.SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != diag.TypeMismatch {
		t.Fatalf("Analyze() error = %v, want TypeMismatch", err)
	}
}

func TestAnalyzeNumberDefaultOK(t *testing.T) {
	err := analyze(t, `
		space S {
			properties {
				dimension: Number = 2
			}
		}
	`)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
}

func TestAnalyzeEmptyPath(t *testing.T) {
	err := analyze(t, `
		space S {
			mapping bad() -> A {
				path { }
			}
		}
	`)

	var semErr *diag.SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != diag.PathEmpty {
		t.Fatalf("Analyze() error = %v, want PathEmpty", err)
	}
}

func TestResolveTypePropertiesProduct(t *testing.T) {
	a := New(symbols.New(), nil)

	a.table.NewSpace("Circle")
	a.table["Circle"].Properties["dimension"] = 1
	a.table["Circle"].Properties["euler_characteristic"] = 0
	a.table["Circle"].Properties["is_orientable"] = true
	a.table["Circle"].Properties["fundamental_group"] = "Z"

	product := ast.NewProductType(ast.NewNamedType("Circle", nil), ast.NewNamedType("Circle", nil))

	bag := a.resolveTypeProperties(product, nil)

	if !bag.HasDimension || bag.Dimension != 2 {
		t.Errorf("Dimension = %d (has=%v), want 2", bag.Dimension, bag.HasDimension)
	}

	if !bag.HasFundamentalGroup || bag.FundamentalGroup != "Z x Z" {
		t.Errorf("FundamentalGroup = %q, want \"Z x Z\"", bag.FundamentalGroup)
	}
}

func TestAnalyzeTopologicalViolation(t *testing.T) {
	seed := symbols.New()
	seed.NewSpace("Torus")
	seed["Torus"].Properties["euler_characteristic"] = 0
	seed.NewSpace("Sphere")
	seed["Sphere"].Properties["euler_characteristic"] = 2

	toks, err := lexer.New(`
		space S {
			mapping warp(): Torus -> Sphere {
				path { init }
			}
		}
	`, nil).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}

	err = New(seed, nil).Analyze(prog)

	var semErr *diag.SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != diag.TopologicalViolation {
		t.Fatalf("Analyze() error = %v, want TopologicalViolation", err)
	}
}

func TestVerifyAssignmentUnknownTypeDoesNotErrorWhenRegistered(t *testing.T) {
	err := analyze(t, `
		space Knot {
			properties {
				dimension: Number = 1
			}
		}
		space Fiber {
			properties {
				base: Knot = x
			}
		}
	`)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
}
