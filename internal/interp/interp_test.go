package interp

import (
	"testing"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/analyzer"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/lexer"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/parser"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/symbols"
)

// fixedRand is a deterministic RandSource for tests: it always returns
// the same float64.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func run(t *testing.T, src, entry string, rand RandSource) any {
	t.Helper()

	toks, err := lexer.New(src, nil).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}

	a := analyzer.New(symbols.New(), nil)
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	in := New(a.Table(), rand, DefaultMaxDepth, nil, false)

	result, err := in.Run(prog, entry)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	return result
}

func TestPairFst(t *testing.T) {
	result := run(t, `
		space S {
			mapping main() {
				path { pair(1, 2) -> fst }
			}
		}
	`, "main", fixedRand(0.5))

	if result != "1" {
		t.Errorf("result = %v, want %q", result, "1")
	}
}

func TestPairSnd(t *testing.T) {
	result := run(t, `
		space S {
			mapping main() {
				path { pair(1, 2) -> snd }
			}
		}
	`, "main", fixedRand(0.5))

	if result != "2" {
		t.Errorf("result = %v, want %q", result, "2")
	}
}

func TestMappingCallChaining(t *testing.T) {
	result := run(t, `
		space S {
			mapping identity(x: A): A -> A {
				path { x }
			}

			mapping main() -> A {
				path { identity(1) }
			}
		}
	`, "main", fixedRand(0.5))

	if result != "1" {
		t.Errorf("result = %v, want %q", result, "1")
	}
}

func TestMatchExprDispatch(t *testing.T) {
	result := run(t, `
		space S {
			mapping main() -> A {
				properties {
					result: String = "heads"
				}
				path {
					match(result) {
						heads -> { path { pair(1, 1) -> fst } }
						tails -> { path { pair(2, 2) -> snd } }
					}
				}
			}
		}
	`, "main", fixedRand(0.5))

	if result != "1" {
		t.Errorf("result = %v, want %q", result, "1")
	}
}

func TestQuantumStateMeasureDeterministic(t *testing.T) {
	qs := NewQuantumState()

	got := qs.Measure(fixedRand(0.1)) // below |alpha|^2 = 0.5 -> "0"
	if got != "0" {
		t.Errorf("Measure() = %q, want 0", got)
	}

	// Collapsed state is idempotent under further measurement.
	if again := qs.Measure(fixedRand(0.99)); again != "0" {
		t.Errorf("second Measure() = %q, want 0 (collapsed)", again)
	}
}

func TestQuantumStateMeasureOther(t *testing.T) {
	qs := NewQuantumState()

	got := qs.Measure(fixedRand(0.9)) // above |alpha|^2 = 0.5 -> "1"
	if got != "1" {
		t.Errorf("Measure() = %q, want 1", got)
	}
}

func TestAdvancePosDictPosition(t *testing.T) {
	in := New(symbols.New(), fixedRand(0.5), DefaultMaxDepth, nil, false)

	pos := map[string]float64{"line": 1, "column": 0, "offset": 0}
	result := in.advancePos([]any{Pair{Left: pos, Right: "a"}})

	got, ok := result.(map[string]float64)
	if !ok {
		t.Fatalf("advancePos() = %v, not a position map", result)
	}

	if got["column"] != 1 || got["offset"] != 1 || got["line"] != 1 {
		t.Errorf("advancePos() = %+v, want column=1 offset=1 line=1", got)
	}
}

func TestAdvancePosNewline(t *testing.T) {
	in := New(symbols.New(), fixedRand(0.5), DefaultMaxDepth, nil, false)

	pos := map[string]float64{"line": 1, "column": 5, "offset": 5}
	result := in.advancePos([]any{Pair{Left: pos, Right: "\n"}})

	got := result.(map[string]float64)
	if got["line"] != 2 || got["column"] != 0 {
		t.Errorf("advancePos() on newline = %+v, want line=2 column=0", got)
	}
}

func TestAdvancePosLegacyNumber(t *testing.T) {
	in := New(symbols.New(), fixedRand(0.5), DefaultMaxDepth, nil, false)

	result := in.advancePos([]any{Pair{Left: 5.0, Right: "a"}})
	if result != 6.0 {
		t.Errorf("advancePos() = %v, want 6", result)
	}
}

func TestReadChar(t *testing.T) {
	in := New(symbols.New(), fixedRand(0.5), DefaultMaxDepth, nil, false)

	result := in.callBuiltin("read_char", []any{"abc"})

	p, ok := result.(Pair)
	if !ok || p.Left != "bc" || p.Right != "a" {
		t.Errorf("read_char(abc) = %+v, want Pair(bc, a)", result)
	}
}

func TestStrictModeFailsOnUnresolvedIdentifier(t *testing.T) {
	toks, err := lexer.New(`
		space S {
			mapping main() {
				path { pair(ghost, 1) -> fst }
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

	a := analyzer.New(symbols.New(), nil)
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	in := New(a.Table(), fixedRand(0.5), DefaultMaxDepth, nil, true)

	if _, err := in.Run(prog, "main"); err == nil {
		t.Fatal("expected a strict-mode RuntimeError for an unresolved identifier")
	}
}

func TestNonStrictModeFallsBackToIdentifierName(t *testing.T) {
	result := run(t, `
		space S {
			mapping main() {
				path { pair(ghost, 1) -> fst }
			}
		}
	`, "main", fixedRand(0.5))

	if result != "ghost" {
		t.Errorf("result = %v, want %q", result, "ghost")
	}
}

func TestRecursionDepthGuard(t *testing.T) {
	toks, terr := lexer.New(`
		space S {
			mapping loopy() -> A {
				path { loopy() }
			}
		}
	`, nil).Tokenize()
	if terr != nil {
		t.Fatalf("Tokenize() error = %v", terr)
	}

	prog, perr := parser.ParseProgram(toks)
	if perr != nil {
		t.Fatalf("ParseProgram() error = %v", perr)
	}

	a := analyzer.New(symbols.New(), nil)
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	in := New(a.Table(), fixedRand(0.5), DefaultMaxDepth, nil, false)

	if _, err := in.Run(prog, "loopy"); err == nil {
		t.Fatal("expected a recursion-depth RuntimeError")
	}
}
