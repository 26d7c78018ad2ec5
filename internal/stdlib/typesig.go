package stdlib

import (
	"strings"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/ast"
)

// parseTypeSig turns a manifest's INPUT/OUTPUT signature string (e.g.
// "Position * Character") into an *ast.TypeExpr, splitting on "*" into
// a right-associative product.
func parseTypeSig(sig string) *ast.TypeExpr {
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return nil
	}

	if !strings.Contains(sig, "*") {
		return ast.NewNamedType(sig, nil)
	}

	parts := strings.Split(sig, "*")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return buildProductChain(parts)
}

// buildProductChain folds a flat list of factor names into a
// right-associative product chain: [A, B, C] -> A * (B * C).
func buildProductChain(names []string) *ast.TypeExpr {
	if len(names) == 1 {
		return ast.NewNamedType(names[0], nil)
	}

	return ast.NewProductType(ast.NewNamedType(names[0], nil), buildProductChain(names[1:]))
}
