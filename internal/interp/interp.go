// Package interp implements the TOPOS-Xi tree-walking interpreter: it
// executes an already analyzed Program, evaluating each mapping's path
// against a runtime value and a stack of lexical scopes.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/ast"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/diag"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/symbols"
)

// DefaultMaxDepth is the recursion-depth ceiling applied when no
// override is supplied via Config.
const DefaultMaxDepth = 10

// spaceInstance is one Space's runtime property bag.
type spaceInstance struct {
	properties map[string]any
}

// Interpreter executes a Program's mappings against a resolved symbol
// table.
type Interpreter struct {
	table      symbols.Table
	mappings   map[string]*ast.MappingDef
	spaceOrder []string
	spaces     map[string]*spaceInstance
	maxDepth   int
	scopeStack []map[string]any
	rand       RandSource
	log        *zap.Logger
	strict     bool
	err        error // sticky strict-mode failure; checked when a mapping returns and after space initialization
}

// New creates an Interpreter. table should be the analyzer's final
// symbol table (stdlib entries plus every Space/Mapping). rand drives
// Measurement collapse; maxDepth <= 0 defaults to DefaultMaxDepth. log
// may be nil. When strict is true, an unresolved identifier that would
// otherwise fall back to its own name as a string instead fails the
// run, per spec.md's `--strict` flag.
func New(table symbols.Table, rand RandSource, maxDepth int, log *zap.Logger, strict bool) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}

	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Interpreter{
		table:      table,
		mappings:   make(map[string]*ast.MappingDef),
		spaces:     make(map[string]*spaceInstance),
		maxDepth:   maxDepth,
		scopeStack: []map[string]any{make(map[string]any)},
		rand:       rand,
		log:        log,
		strict:     strict,
	}
}

// failStrict records the first unresolved-identifier failure seen under
// strict mode; later failures don't overwrite it.
func (in *Interpreter) failStrict(name string) {
	if in.strict && in.err == nil {
		in.err = diag.NewRuntimeError("Unresolved identifier: %s", name)
	}
}

// Run registers every mapping declared in prog, executes each space's
// property initialization, then invokes entryPoint (if it names a
// registered mapping) with no arguments.
func (in *Interpreter) Run(prog *ast.Program, entryPoint string) (any, error) {
	for _, space := range prog.Spaces {
		for _, member := range space.Members {
			in.mappings[member.Name] = member
		}
	}

	for _, space := range prog.Spaces {
		if err := in.executeSpace(space); err != nil {
			return nil, err
		}
	}

	if in.err != nil {
		return nil, in.err
	}

	if entryPoint == "" {
		return nil, nil
	}

	mapping, ok := in.mappings[entryPoint]
	if !ok {
		return nil, nil
	}

	in.log.Info("entry point", zap.String("mapping", entryPoint))

	return in.executeMapping(mapping, nil, 0)
}

func (in *Interpreter) executeSpace(node *ast.SpaceDef) error {
	in.log.Debug("entering space", zap.String("name", node.Name))

	inst := &spaceInstance{properties: make(map[string]any)}
	in.spaces[node.Name] = inst
	in.spaceOrder = append(in.spaceOrder, node.Name)

	for _, prop := range node.Properties {
		val, err := in.executeProperty(prop)
		if err != nil {
			return err
		}

		inst.properties[prop.Name] = val
	}

	return nil
}

// executeProperty evaluates a PropertyDef's default, coercing it to the
// runtime representation implied by its declared type (Qubit, Number,
// Boolean, String pass through a type-directed conversion; anything
// else is kept as-is).
func (in *Interpreter) executeProperty(node *ast.PropertyDef) (any, error) {
	var val any
	if node.Default != nil {
		val = in.evaluateArg(node.Default)
	}

	switch node.Type.Name {
	case "Qubit":
		text := fmt.Sprint(val)
		switch strings.Trim(text, `"`) {
		case "0":
			val = NewBasisState("0")
		case "1":
			val = NewBasisState("1")
		default:
			val = NewQuantumState()
		}
	case "Number":
		if f, err := toFloat(val); err == nil {
			val = f
		}
	case "Boolean":
		val = fmt.Sprint(val) == "true"
	case "String":
		val = strings.Trim(fmt.Sprint(val), `"`)
	}

	in.log.Debug("property initialized", zap.String("name", node.Name), zap.Any("value", val))

	return val, nil
}

// executeMapping runs node's path with args bound to its formal
// parameters, at the given recursion depth.
func (in *Interpreter) executeMapping(node *ast.MappingDef, args []any, depth int) (any, error) {
	if depth > in.maxDepth {
		return nil, diag.NewRuntimeError("Recursion depth exceeded: %d", depth)
	}

	ns := make(map[string]any)
	for i, p := range node.Params {
		if i < len(args) {
			ns[p.Name] = args[i]
		}
	}

	in.scopeStack = append(in.scopeStack, ns)

	for _, prop := range node.Properties {
		val, err := in.executeProperty(prop)
		if err != nil {
			in.popScope()
			return nil, err
		}

		ns[prop.Name] = val
	}

	var cv any
	if len(args) > 0 {
		cv = args[0]
	}

	result, err := in.executePath(node.Path, depth, cv)

	in.popScope()

	if err == nil && in.err != nil {
		err = in.err
	}

	return result, err
}

func (in *Interpreter) popScope() {
	in.scopeStack = in.scopeStack[:len(in.scopeStack)-1]
}

// resolveMatchTarget resolves a match expression's scrutinee: an
// ordinary variable reference, or (when unresolved) fst/snd applied to
// the path's current value.
func (in *Interpreter) resolveMatchTarget(target string, cv any) any {
	if val := in.resolveVar(target); val != nil {
		return val
	}

	if p, ok := cv.(Pair); ok {
		switch target {
		case "fst":
			return p.Left
		case "snd":
			return p.Right
		}
	}

	return nil
}

// executePath runs each step of path in order, threading the "current
// value" cv through the chain.
func (in *Interpreter) executePath(path []ast.Step, depth int, cv any) (any, error) {
	for _, step := range path {
		switch s := step.(type) {
		case *ast.LambdaMapping:
			in.scopeStack = append(in.scopeStack, make(map[string]any))

			result, err := in.executePath(s.Path, depth+1, cv)
			in.popScope()

			if err != nil {
				return nil, err
			}

			cv = result
			continue
		case *ast.MatchExpr:
			val := in.resolveMatchTarget(s.Target, cv)
			tv := strings.Trim(fmt.Sprint(val), `"`)

			for _, c := range s.Cases {
				cvStr := strings.Trim(c.Value, `"`)
				if tv == cvStr || cvStr == "_" {
					result, err := in.executePath(c.Path, depth+1, cv)
					if err != nil {
						return nil, err
					}

					cv = result

					break
				}
			}

			continue
		}

		name, call := stepNameCall(step)

		resolvedVar := in.resolveVar(name)

		switch {
		case resolvedVar != nil && call == nil:
			cv = resolvedVar
		case name == "fst":
			if p, ok := cv.(Pair); ok {
				cv = p.Left
			} else {
				in.log.Warn("fst on non-pair value", zap.Any("value", cv))
			}
		case name == "snd":
			if p, ok := cv.(Pair); ok {
				cv = p.Right
			} else {
				in.log.Warn("snd on non-pair value", zap.Any("value", cv))
			}
		case name == "pair" && call != nil && len(call.Args) == 2:
			cv = Pair{Left: in.evaluateArg(call.Args[0]), Right: in.evaluateArg(call.Args[1])}
		case name == "Measurement":
			if qs, ok := cv.(*QuantumState); ok {
				cv = qs.Measure(in.rand)
			} else {
				in.collapseAllQubits()
			}
		default:
			if mapping, ok := in.mappings[name]; ok {
				var callArgs []any

				if call != nil {
					for _, a := range call.Args {
						callArgs = append(callArgs, in.evaluateArg(a))
					}
				} else if cv != nil {
					callArgs = []any{cv}
				}

				result, err := in.executeMapping(mapping, callArgs, depth+1)
				if err != nil {
					return nil, err
				}

				cv = result
			} else if entry, ok := in.table[name]; ok && entry.Kind == symbols.ExternalEntity {
				var callArgs []any

				switch {
				case call != nil:
					for _, a := range call.Args {
						callArgs = append(callArgs, in.evaluateArg(a))
					}
				case cv != nil:
					callArgs = []any{cv}
				}

				cv = in.callBuiltin(name, callArgs)
			}
		}
	}

	return cv, nil
}

// collapseAllQubits measures every QuantumState currently held in any
// space's properties, as a side effect only — the path's current value
// is left unchanged, matching a bare "Measurement" step applied when
// there is no single quantum value in hand.
func (in *Interpreter) collapseAllQubits() {
	for _, name := range in.spaceOrder {
		for _, v := range in.spaces[name].properties {
			if qs, ok := v.(*QuantumState); ok {
				qs.Measure(in.rand)
			}
		}
	}
}

// resolveVar looks up name first in the lexical scope stack
// (innermost first), then falls back to scanning every space's runtime
// properties in declaration order.
func (in *Interpreter) resolveVar(name string) any {
	for i := len(in.scopeStack) - 1; i >= 0; i-- {
		if v, ok := in.scopeStack[i][name]; ok {
			return v
		}
	}

	for _, sname := range in.spaceOrder {
		if v, ok := in.spaces[sname].properties[name]; ok {
			return v
		}
	}

	return nil
}

// evaluateArg evaluates an Arg in expression position (a property
// default, or a MappingCall's argument), resolving builtin external
// entities (pair/fst/snd, and the stdlib morphisms token, init_pos,
// read_char, advance_pos) directly.
func (in *Interpreter) evaluateArg(arg ast.Arg) any {
	switch v := arg.(type) {
	case *ast.MappingCall:
		switch v.Name {
		case "pair":
			if len(v.Args) == 2 {
				return Pair{Left: in.evaluateArg(v.Args[0]), Right: in.evaluateArg(v.Args[1])}
			}
		case "fst":
			if len(v.Args) == 1 {
				if p, ok := in.evaluateArg(v.Args[0]).(Pair); ok {
					return p.Left
				}

				return in.evaluateArg(v.Args[0])
			}
		case "snd":
			if len(v.Args) == 1 {
				if p, ok := in.evaluateArg(v.Args[0]).(Pair); ok {
					return p.Right
				}

				return in.evaluateArg(v.Args[0])
			}
		}

		if entry, ok := in.table[v.Name]; ok && entry.Kind == symbols.ExternalEntity {
			callArgs := make([]any, len(v.Args))
			for i, a := range v.Args {
				callArgs[i] = in.evaluateArg(a)
			}

			return in.callBuiltin(v.Name, callArgs)
		}

		if mapping, ok := in.mappings[v.Name]; ok {
			callArgs := make([]any, len(v.Args))
			for i, a := range v.Args {
				callArgs[i] = in.evaluateArg(a)
			}

			// The original evaluates nested mapping calls at depth 0,
			// outside the caller's own recursion count.
			result, err := in.executeMapping(mapping, callArgs, 0)
			if err != nil {
				in.log.Warn("nested mapping call failed", zap.String("name", v.Name), zap.Error(err))
				return nil
			}

			return result
		}

		in.failStrict(v.Name)
		return v.Name
	case *ast.IdentArg:
		if res := in.resolveVar(v.Name); res != nil {
			return res
		}

		in.failStrict(v.Name)
		return v.Name
	case *ast.Literal:
		return v.Text
	default:
		return nil
	}
}

// callBuiltin implements the hand-registered standard-library external
// entities whose runtime behavior isn't expressible as a pure manifest
// declaration: token, init_pos, read_char, advance_pos. Any other
// ExternalEntity name echoes its first argument (or its own name with
// no arguments), matching the original's generic fallback.
func (in *Interpreter) callBuiltin(name string, args []any) any {
	switch name {
	case "token":
		if len(args) == 2 {
			return fmt.Sprintf("TOKEN(%v: %v)", args[0], args[1])
		}

		if len(args) == 1 {
			return fmt.Sprintf("TOKEN(%v)", args[0])
		}

		return "TOKEN()"
	case "init_pos":
		if len(args) >= 3 {
			line, _ := toFloat(args[0])
			col, _ := toFloat(args[1])
			off, _ := toFloat(args[2])

			return map[string]float64{"line": line, "column": col, "offset": off}
		}

		return map[string]float64{"line": 1, "column": 0, "offset": 0}
	case "read_char":
		s := ""
		if len(args) > 0 {
			s = fmt.Sprint(args[0])
		}

		if r := []rune(s); len(r) > 0 {
			return Pair{Left: string(r[1:]), Right: string(r[0:1])}
		}

		return Pair{Left: "", Right: ""}
	case "advance_pos":
		return in.advancePos(args)
	default:
		if len(args) > 0 {
			return args[0]
		}

		return name
	}
}

// advancePos implements the Position * String -> Position morphism,
// supporting both a proper Space-instance Position (a dict-shaped
// map[string]float64 with line/column/offset) and the legacy bare-
// Number position used by earlier stdlib drafts.
func (in *Interpreter) advancePos(args []any) any {
	if len(args) == 0 {
		return 0.0
	}

	p, ok := args[0].(Pair)
	if !ok {
		return 0.0
	}

	char := strings.Trim(fmt.Sprint(p.Right), `"`)

	if pos, ok := p.Left.(map[string]float64); ok {
		newPos := make(map[string]float64, len(pos))
		for k, v := range pos {
			newPos[k] = v
		}

		newPos["offset"] = pos["offset"] + 1

		if char == "\\n" || char == "\n" {
			newPos["line"] = pos["line"] + 1
			newPos["column"] = 0
		} else {
			newPos["column"] = pos["column"] + 1
		}

		return newPos
	}

	if f, err := toFloat(p.Left); err == nil {
		return f + 1
	}

	return 0.0
}

func stepNameCall(step ast.Step) (string, *ast.MappingCall) {
	switch s := step.(type) {
	case *ast.MappingCall:
		return s.Name, s
	case *ast.Ident:
		return s.Name, nil
	default:
		return "", nil
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.Trim(x, `"`), 64)
	default:
		return strconv.ParseFloat(fmt.Sprint(v), 64)
	}
}
