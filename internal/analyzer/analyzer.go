// Package analyzer implements the TOPOS-Xi semantic analyzer: symbol
// table construction, categorical path composition checking, and
// topological invariant verification at path initialization sites.
package analyzer

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/ast"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/diag"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/symbols"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/token"
)

// Analyzer walks a parsed Program, populating and consulting a shared
// symbol table. Construct one with New, seeded with the standard
// library's ExternalEntity table, then call Analyze once per program.
type Analyzer struct {
	table symbols.Table
	log   *zap.Logger
}

// New creates an Analyzer whose symbol table starts out holding stdlib
// (the standard-library ExternalEntity records; may be empty but not
// nil). log may be nil.
func New(stdlib symbols.Table, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}

	table := symbols.New()
	for k, v := range stdlib {
		table[k] = v
	}

	return &Analyzer{table: table, log: log}
}

// Table exposes the accumulated symbol table, e.g. for the interpreter
// to reuse after a successful Analyze.
func (a *Analyzer) Table() symbols.Table {
	return a.table
}

// Analyze type-checks and topology-checks every space in prog in
// source order, returning the first failure encountered.
func (a *Analyzer) Analyze(prog *ast.Program) error {
	for _, space := range prog.Spaces {
		if err := a.analyzeSpace(space); err != nil {
			return err
		}
	}

	return nil
}

func (a *Analyzer) analyzeSpace(node *ast.SpaceDef) error {
	a.log.Debug("analyzing space", zap.String("name", node.Name))

	a.table.NewSpace(node.Name)

	for _, prop := range node.Properties {
		if err := a.analyzeProperty(node.Name, prop); err != nil {
			return err
		}
	}

	for _, member := range node.Members {
		if err := a.analyzeMapping(member); err != nil {
			return err
		}
	}

	return nil
}

func (a *Analyzer) analyzeProperty(ownerName string, node *ast.PropertyDef) error {
	a.table.SetProperty(ownerName, node.Name, node.Type)

	if node.Default != nil {
		return a.verifyAssignment(node.Type, node.Default)
	}

	return nil
}

func (a *Analyzer) analyzeMapping(node *ast.MappingDef) error {
	a.table.NewMapping(node)

	for _, prop := range node.Properties {
		if err := a.analyzeProperty(node.Name, prop); err != nil {
			return err
		}
	}

	scope := make(map[string]*ast.TypeExpr)
	for _, p := range node.Params {
		scope[p.Name] = p.Type
	}

	return a.analyzePath(node.Name, node.Path, node.Source, node.Target, scope)
}

func (a *Analyzer) analyzeLambda(node *ast.LambdaMapping) error {
	scope := make(map[string]*ast.TypeExpr)
	for _, p := range node.Params {
		scope[p.Name] = p.Type
	}

	return a.analyzePath("anonymous", node.Path, nil, nil, scope)
}

// analyzePath implements the per-step categorical composition rules
// (fst/snd projection, pair, init's topology checks, ordinary
// mapping/space/external-entity composition) and the closing
// Morphism-Error / wavefunction-collapse-warning passes.
func (a *Analyzer) analyzePath(contextName string, path []ast.Step, expectedSrc, expectedDst *ast.TypeExpr, scope map[string]*ast.TypeExpr) error {
	if len(path) == 0 {
		return diag.NewSemanticError(diag.PathEmpty, contextName, "Path must have at least one step")
	}

	cursor := expectedSrc

	for _, step := range path {
		switch s := step.(type) {
		case *ast.LambdaMapping:
			if err := a.analyzeLambda(s); err != nil {
				return err
			}

			cursor = nil
			continue
		case *ast.MatchExpr:
			a.log.Debug("analyzing match", zap.String("target", s.Target))

			for _, c := range s.Cases {
				if err := a.analyzePath("case "+c.Value, c.Path, cursor, nil, scope); err != nil {
					return err
				}
			}

			cursor = nil
			continue
		}

		name, call := stepName(step)

		switch name {
		case "fst", "snd":
			resolved := resolveScope(cursor, scope)
			if resolved == nil || !resolved.IsProduct() {
				return diag.NewSemanticError(diag.ProjectionError, contextName, "'%s' requires a Product Type source, got %s", name, cursor.String())
			}

			if name == "fst" {
				cursor = resolved.Product.Left
			} else {
				cursor = resolved.Product.Right
			}

			continue
		case "pair":
			if call == nil || len(call.Args) != 2 {
				return diag.NewSemanticError(diag.PairError, contextName, "'pair' requires 2 arguments")
			}

			cursor = ast.NewProductType(a.inferType(call.Args[0], scope), a.inferType(call.Args[1], scope))
			continue
		}

		entry := a.table[name]

		var stepSrc, stepDst *ast.TypeExpr
		if entry != nil {
			stepSrc, stepDst = entry.Source, entry.Target

			if entry.Kind == symbols.Space || entry.Kind == symbols.ExternalEntity {
				if stepSrc == nil {
					stepSrc = ast.NewNamedType(name, nil)
				}

				if stepDst == nil {
					stepDst = ast.NewNamedType(name, nil)
				}
			}
		}

		if stepSrc != nil && cursor != nil && name != "init" && !a.isEquivalent(cursor, stepSrc, scope) {
			return diag.NewSemanticError(diag.CompositionError, contextName, "Step '%s' expects source %s, but previous output was %s", name, stepSrc.String(), cursor.String())
		}

		switch {
		case stepDst != nil:
			cursor = stepDst
		case name == "init":
			if expectedSrc != nil && expectedDst != nil {
				if err := a.checkTopology(contextName, expectedSrc, expectedDst, scope); err != nil {
					return err
				}
			}

			cursor = expectedDst
		}
	}

	hasInit := false
	for _, step := range path {
		if n, _ := stepName(step); n == "init" {
			hasInit = true
			break
		}
	}

	if expectedDst != nil && cursor != nil && !hasInit && !a.isEquivalent(cursor, expectedDst, scope) {
		return diag.NewSemanticError(diag.MorphismError, contextName, "Expected final target %s, but path ends with %s", expectedDst.String(), cursor.String())
	}

	for _, step := range path {
		switch step.(type) {
		case *ast.LambdaMapping, *ast.MatchExpr:
			continue
		}

		name, _ := stepName(step)
		if entry := a.table[name]; entry != nil && entry.Effect == "Collapse_Wavefunction" {
			a.log.Warn("step causes wavefunction collapse", zap.String("context", contextName), zap.String("step", name))
		}
	}

	return nil
}

// checkTopology verifies Euler characteristic, orientability, and
// fundamental-group compatibility between a path's declared source and
// target at an "init" step, the only place topological invariants are
// enforced.
func (a *Analyzer) checkTopology(contextName string, src, dst *ast.TypeExpr, scope map[string]*ast.TypeExpr) error {
	sp := a.resolveTypeProperties(src, scope)
	dp := a.resolveTypeProperties(dst, scope)

	if sp.HasEuler && dp.HasEuler && sp.EulerCharacteristic != dp.EulerCharacteristic {
		return diag.NewSemanticError(diag.TopologicalViolation, contextName, "%s(X=%d) -> %s(X=%d)", src.String(), sp.EulerCharacteristic, dst.String(), dp.EulerCharacteristic)
	}

	if sp.HasOrientable && dp.HasOrientable && sp.IsOrientable != dp.IsOrientable {
		return diag.NewSemanticError(diag.OrientationViolation, contextName, "%s(Orientable=%t) -> %s(Orientable=%t)", src.String(), sp.IsOrientable, dst.String(), dp.IsOrientable)
	}

	if sp.HasFundamentalGroup && dp.HasFundamentalGroup && sp.FundamentalGroup != "" && dp.FundamentalGroup != "" && sp.FundamentalGroup != dp.FundamentalGroup {
		return diag.NewSemanticError(diag.HomotopyViolation, contextName, "%s(pi1=%s) -> %s(pi1=%s)", src.String(), sp.FundamentalGroup, dst.String(), dp.FundamentalGroup)
	}

	return nil
}

func (a *Analyzer) resolveTypeProperties(t *ast.TypeExpr, scope map[string]*ast.TypeExpr) symbols.TopologyBag {
	if t == nil {
		return symbols.TopologyBag{}
	}

	if t.IsProduct() {
		left := a.resolveTypeProperties(t.Product.Left, scope)
		right := a.resolveTypeProperties(t.Product.Right, scope)

		return symbols.CombineProduct(left, right)
	}

	if sub, ok := scope[t.Name]; ok {
		return a.resolveTypeProperties(sub, scope)
	}

	entry, ok := a.table[t.Name]
	if !ok {
		return symbols.TopologyBag{}
	}

	return symbols.BagFromEntry(entry)
}

func (a *Analyzer) isEquivalent(t1, t2 *ast.TypeExpr, scope map[string]*ast.TypeExpr) bool {
	if t1 == nil && t2 == nil {
		return true
	}

	if t1 == nil || t2 == nil {
		return false
	}

	lhs, rhs := resolveScope(t1, scope), resolveScope(t2, scope)

	if lhs.IsProduct() != rhs.IsProduct() {
		return false
	}

	if lhs.IsProduct() {
		return a.isEquivalent(lhs.Product.Left, rhs.Product.Left, scope) &&
			a.isEquivalent(lhs.Product.Right, rhs.Product.Right, scope)
	}

	if lhs.Name != rhs.Name {
		return false
	}

	if len(lhs.Params) != len(rhs.Params) {
		return false
	}

	for i := range lhs.Params {
		if !a.isEquivalent(lhs.Params[i], rhs.Params[i], scope) {
			return false
		}
	}

	return true
}

// resolveScope substitutes t through scope when t is a bare (non-
// product) name bound there, otherwise returns t unchanged.
func resolveScope(t *ast.TypeExpr, scope map[string]*ast.TypeExpr) *ast.TypeExpr {
	if t == nil || t.IsProduct() {
		return t
	}

	if sub, ok := scope[t.Name]; ok {
		return sub
	}

	return t
}

func (a *Analyzer) inferType(val ast.Arg, scope map[string]*ast.TypeExpr) *ast.TypeExpr {
	switch v := val.(type) {
	case *ast.MappingCall:
		if entry, ok := a.table[v.Name]; ok && entry.Target != nil {
			return entry.Target
		}

		return ast.NewNamedType("Unknown", nil)
	case *ast.IdentArg:
		if t, ok := scope[v.Name]; ok {
			return t
		}

		if _, ok := a.table[v.Name]; ok {
			return ast.NewNamedType(v.Name, nil)
		}

		return ast.NewNamedType("String", nil)
	case *ast.Literal:
		return literalType(v)
	default:
		return ast.NewNamedType("Unknown", nil)
	}
}

func literalType(lit *ast.Literal) *ast.TypeExpr {
	if lit.Kind == token.NUMBER {
		return ast.NewNamedType("Number", nil)
	}

	return ast.NewNamedType("String", nil)
}

// verifyAssignment checks a PropertyDef's literal default against its
// declared type.
func (a *Analyzer) verifyAssignment(target *ast.TypeExpr, value ast.Arg) error {
	tn := target.Name
	text := argText(value)

	switch {
	case tn == "Boolean":
		if text != "true" && text != "false" {
			return diag.NewSemanticError(diag.TypeMismatch, "", "Expected Boolean, got '%s'", text)
		}
	case tn == "Number":
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return diag.NewSemanticError(diag.TypeMismatch, "", "Expected Number, got '%s'", text)
		}
	case tn == "String" || target.IsProduct():
		// any text accepted
	case tn == "Topology" || tn == "Quantum":
		// any text accepted
	default:
		if _, ok := a.table[tn]; ok {
			a.log.Debug("verified type existence", zap.String("type", tn))
			return nil
		}

		return diag.NewSemanticError(diag.UnknownType, "", "'%s'", tn)
	}

	return nil
}

func argText(a ast.Arg) string {
	switch v := a.(type) {
	case *ast.Literal:
		return v.Text
	case *ast.IdentArg:
		return v.Name
	case *ast.MappingCall:
		return v.Name
	default:
		return ""
	}
}

// stepName extracts a path step's symbol-table lookup name, and the
// MappingCall itself when the step is one (nil otherwise).
func stepName(step ast.Step) (string, *ast.MappingCall) {
	switch s := step.(type) {
	case *ast.MappingCall:
		return s.Name, s
	case *ast.Ident:
		return s.Name, nil
	default:
		return "", nil
	}
}
