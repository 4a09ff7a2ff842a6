// Package sema lowers the THSL AST into ir's intermediate
// representation: type/name resolution, implicit conversions, and
// synthesis of the single entry-point function's Input/Output
// interface from the source's `in`/`out`/builtin declarations.
package sema

import (
	"fmt"

	"github.com/thsl-lang/thslc/ast"
	"github.com/thsl-lang/thslc/diag"
	"github.com/thsl-lang/thslc/ir"
)

// Options configures lowering for one compilation unit.
type Options struct {
	Stage                   ir.ShaderStage
	ImplicitConversions     bool // -moIMP inverts this
	DefaultFloatIsFP64      bool // -deffp64
}

// ioVar is one `in`/`out` declaration (plain or builtin-bound),
// gathered before main is lowered so its Arguments/Result can be
// synthesized.
type ioVar struct {
	name    string
	typ     ir.TypeHandle
	binding ir.Binding
}

// analyzer holds lowering state for one module.
type analyzer struct {
	opts Options
	sink diag.Sink

	module   *ir.Module
	registry *ir.TypeRegistry
	types    map[string]ir.TypeHandle

	globals         map[string]ir.GlobalVariableHandle
	uniformMembers  map[string]uniformMember // member name -> owning block
	moduleConsts    map[string]ir.ConstantHandle
	functions       map[string]ir.FunctionHandle

	inputs  []ioVar
	outputs []ioVar

	// Per-function state, reset at the start of each lowerFunction call.
	currentFunc    *ir.Function
	currentExprIdx ir.ExpressionHandle
	locals         map[string]localBinding
}

type uniformMember struct {
	variable ir.GlobalVariableHandle
	index    uint32
	typ      ir.TypeHandle
}

// localBinding records how a name resolves inside the function being
// lowered: a function argument (read-only value), a local variable
// (addressable, built from ExprLocalVariable), or nothing (the name
// must be looked up as a global/uniform/constant instead).
type localBinding struct {
	isArg    bool
	argIndex uint32
	isLocal  bool
	local    uint32
}

// Analyze lowers a parsed THSL module into IR, reporting diagnostics
// to sink. It returns an error (in addition to any reported
// diagnostics) if lowering cannot proceed further.
func Analyze(mod *ast.Module, opts Options, sink diag.Sink) (*ir.Module, error) {
	a := &analyzer{
		opts:           opts,
		sink:           sink,
		module:         &ir.Module{},
		registry:       ir.NewTypeRegistry(),
		types:          make(map[string]ir.TypeHandle, 16),
		globals:        make(map[string]ir.GlobalVariableHandle, 8),
		uniformMembers: make(map[string]uniformMember, 8),
		moduleConsts:   make(map[string]ir.ConstantHandle, 8),
		functions:      make(map[string]ir.FunctionHandle, len(mod.Functions)),
	}
	a.registerBuiltinTypes()

	for _, s := range mod.Structs {
		if err := a.lowerStruct(s); err != nil {
			a.errorAt(s.Position, "%v", err)
		}
	}
	for _, l := range mod.Layouts {
		a.lowerLayout(l)
	}
	for _, b := range mod.Builtins {
		a.lowerBuiltinDecl(b)
	}
	for _, g := range mod.Globals {
		if err := a.lowerGlobalVar(g); err != nil {
			a.errorAt(g.Position, "%v", err)
		}
	}

	for i, f := range mod.Functions {
		a.functions[f.Name] = ir.FunctionHandle(i)
	}

	sawMain := false
	defined := make(map[string]bool, len(mod.Functions))
	for _, f := range mod.Functions {
		if f.Name == "main" {
			sawMain = true
		}
		if f.Body != nil {
			if defined[f.Name] {
				a.errorAt(f.Position, "function %q redefined", f.Name)
				continue
			}
			defined[f.Name] = true
		}
		if err := a.lowerFunction(f); err != nil {
			a.errorAt(f.Position, "%v", err)
		}
	}
	if !sawMain {
		a.err("no entry point named \"main\" was found")
	}

	a.module.Types = a.registry.GetTypes()

	if sink.HasErrors() {
		return nil, fmt.Errorf("semantic analysis failed")
	}
	return a.module, nil
}

func (a *analyzer) err(format string, args ...any) {
	diag.Reportf(a.sink, diag.Error, "", 0, 0, format, args...)
}

func (a *analyzer) errorAt(pos ast.Position, format string, args ...any) {
	diag.Reportf(a.sink, diag.Error, pos.File, pos.Line, pos.Column, format, args...)
}

func (a *analyzer) warnAt(pos ast.Position, format string, args ...any) {
	diag.Reportf(a.sink, diag.Warning, pos.File, pos.Line, pos.Column, format, args...)
}

// registerBuiltinTypes pre-registers THSL's built-in scalar types so
// literals and casts can always resolve them without a source decl.
func (a *analyzer) registerBuiltinTypes() {
	a.registerType("bool", ir.ScalarType{Kind: ir.ScalarBool, Width: 1})
	a.registerType("int", ir.ScalarType{Kind: ir.ScalarSint, Width: 4})
	a.registerType("uint", ir.ScalarType{Kind: ir.ScalarUint, Width: 4})
	a.registerType("float", ir.ScalarType{Kind: ir.ScalarFloat, Width: 4})
	a.registerType("double", ir.ScalarType{Kind: ir.ScalarFloat, Width: 8})
}

func (a *analyzer) registerType(name string, inner ir.TypeInner) ir.TypeHandle {
	handle := a.registry.GetOrCreate(name, inner)
	if name != "" {
		a.types[name] = handle
	}
	a.module.Types = a.registry.GetTypes()
	return handle
}
