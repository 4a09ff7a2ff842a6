package sema

import (
	"fmt"

	"github.com/thsl-lang/thslc/ast"
	"github.com/thsl-lang/thslc/ir"
)

// lowerFunction converts one function declaration. `main` is special:
// its declared `void` return type is ignored and its Arguments/Result
// are instead synthesized from the module's collected `in`/`out`
// declarations (see analyzer.inputs/outputs).
func (a *analyzer) lowerFunction(f *ast.FunctionDecl) error {
	if f.Body == nil {
		return nil // forward declaration; nothing to lower yet
	}

	a.locals = make(map[string]localBinding, 16)
	a.currentExprIdx = 0

	fn := &ir.Function{
		Name:      f.Name,
		LocalVars: make([]ir.LocalVariable, 0, 4),
	}
	a.currentFunc = fn

	isMain := f.Name == "main"

	var outLocalIdx []uint32
	if isMain {
		for i, p := range a.inputs {
			fn.Arguments = append(fn.Arguments, ir.FunctionArgument{
				Name: p.name, Type: p.typ, Binding: bindingPtr(p.binding),
			})
			a.locals[p.name] = localBinding{isArg: true, argIndex: uint32(i)}
		}
		outLocalIdx = make([]uint32, len(a.outputs))
		for i, o := range a.outputs {
			idx := uint32(len(fn.LocalVars))
			fn.LocalVars = append(fn.LocalVars, ir.LocalVariable{Name: o.name, Type: o.typ})
			outLocalIdx[i] = idx
			a.locals[o.name] = localBinding{isLocal: true, local: idx}
		}
	} else {
		for i, p := range f.Params {
			typeHandle, err := a.resolveType(p.Type)
			if err != nil {
				return fmt.Errorf("function %s param %s: %w", f.Name, p.Name, err)
			}
			fn.Arguments = append(fn.Arguments, ir.FunctionArgument{Name: p.Name, Type: typeHandle})
			a.locals[p.Name] = localBinding{isArg: true, argIndex: uint32(i)}
		}
		if f.ReturnType != nil && !isVoid(f.ReturnType) {
			typeHandle, err := a.resolveType(f.ReturnType)
			if err != nil {
				return fmt.Errorf("function %s return type: %w", f.Name, err)
			}
			fn.Result = &ir.FunctionResult{Type: typeHandle}
		}
	}

	if err := a.lowerBlock(f.Body, &fn.Body); err != nil {
		return fmt.Errorf("function %s body: %w", f.Name, err)
	}

	if isMain {
		if err := a.synthesizeEntryReturn(fn, outLocalIdx); err != nil {
			return err
		}
	}

	handle := ir.FunctionHandle(len(a.module.Functions))
	a.module.Functions = append(a.module.Functions, *fn)
	a.functions[f.Name] = handle

	if isMain {
		a.module.EntryPoints = append(a.module.EntryPoints, ir.EntryPoint{
			Name: "main", Stage: a.opts.Stage, Function: handle,
		})
	}
	return nil
}

// synthesizeEntryReturn appends the implicit `return <outputs>;` every
// THSL entry point ends with: THSL declares main as `void`, but the
// SPIR-V function must return whatever was written to its `out`
// variables, since this IR carries stage outputs on Function.Result.
func (a *analyzer) synthesizeEntryReturn(fn *ir.Function, outLocalIdx []uint32) error {
	if len(a.outputs) == 0 {
		fn.Body = append(fn.Body, ir.Statement{Kind: ir.StmtReturn{}})
		return nil
	}

	loaded := make([]ir.ExpressionHandle, len(a.outputs))
	for i, idx := range outLocalIdx {
		ptr := a.addExpression(ir.Expression{Kind: ir.ExprLocalVariable{Variable: idx}})
		loaded[i] = a.addExpression(ir.Expression{Kind: ir.ExprLoad{Pointer: ptr}})
	}

	if len(a.outputs) == 1 {
		fn.Result = &ir.FunctionResult{Type: a.outputs[0].typ, Binding: bindingPtr(a.outputs[0].binding)}
		fn.Body = append(fn.Body, ir.Statement{Kind: ir.StmtReturn{Value: &loaded[0]}})
		return nil
	}

	members := make([]ir.StructMember, len(a.outputs))
	for i, o := range a.outputs {
		b := o.binding
		members[i] = ir.StructMember{Name: o.name, Type: o.typ, Binding: &b, Offset: 0}
	}
	structHandle := a.registerType("main_output", ir.StructType{Members: members})
	resultHandle := a.addExpression(ir.Expression{Kind: ir.ExprCompose{Type: structHandle, Components: loaded}})
	fn.Result = &ir.FunctionResult{Type: structHandle}
	fn.Body = append(fn.Body, ir.Statement{Kind: ir.StmtReturn{Value: &resultHandle}})
	return nil
}

func bindingPtr(b ir.Binding) *ir.Binding {
	if b == nil {
		return nil
	}
	return &b
}

func (a *analyzer) lowerBlock(block *ast.BlockStmt, target *[]ir.Statement) error {
	for _, stmt := range block.Stmts {
		if err := a.lowerStatement(stmt, target); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) lowerStatement(stmt ast.Stmt, target *[]ir.Statement) error {
	switch s := stmt.(type) {
	case *ast.LocalVarStmt:
		return a.lowerLocalVar(s, target)
	case *ast.ExprStmt:
		_, err := a.lowerExpression(s.X, target)
		return err
	case *ast.ReturnStmt:
		return a.lowerReturn(s, target)
	case *ast.IfStmt:
		return a.lowerIf(s, target)
	case *ast.BlockStmt:
		var body []ir.Statement
		if err := a.lowerBlock(s, &body); err != nil {
			return err
		}
		*target = append(*target, ir.Statement{Kind: ir.StmtBlock{Block: body}})
		return nil
	case *ast.ForStmt, *ast.WhileStmt, *ast.SwitchStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return fmt.Errorf("unimplemented construct: %T is reserved but not yet lowered", stmt)
	default:
		return fmt.Errorf("unsupported statement type %T", stmt)
	}
}

func (a *analyzer) lowerLocalVar(v *ast.LocalVarStmt, target *[]ir.Statement) error {
	var initHandle *ir.ExpressionHandle
	if v.Init != nil {
		h, err := a.lowerExpression(v.Init, target)
		if err != nil {
			return err
		}
		initHandle = &h
	}

	var typeHandle ir.TypeHandle
	if v.Type != nil {
		var err error
		typeHandle, err = a.resolveType(v.Type)
		if err != nil {
			return fmt.Errorf("local %s: %w", v.Name, err)
		}
	} else if initHandle != nil {
		res, err := ir.ResolveExpressionType(a.module, a.currentFunc, *initHandle)
		if err != nil {
			return fmt.Errorf("local %s: type inference: %w", v.Name, err)
		}
		if res.Handle == nil {
			return fmt.Errorf("local %s: cannot infer a named type from this initializer", v.Name)
		}
		typeHandle = *res.Handle
	} else {
		return fmt.Errorf("local %s: type required without initializer", v.Name)
	}

	idx := uint32(len(a.currentFunc.LocalVars))
	a.currentFunc.LocalVars = append(a.currentFunc.LocalVars, ir.LocalVariable{
		Name: v.Name, Type: typeHandle, Init: initHandle,
	})
	a.locals[v.Name] = localBinding{isLocal: true, local: idx}
	return nil
}

func (a *analyzer) lowerReturn(ret *ast.ReturnStmt, target *[]ir.Statement) error {
	var valueHandle *ir.ExpressionHandle
	if ret.Value != nil {
		h, err := a.lowerExpression(ret.Value, target)
		if err != nil {
			return err
		}
		valueHandle = &h
	}
	*target = append(*target, ir.Statement{Kind: ir.StmtReturn{Value: valueHandle}})
	return nil
}

func (a *analyzer) lowerIf(ifStmt *ast.IfStmt, target *[]ir.Statement) error {
	cond, err := a.coerceToBool(ifStmt.Cond, target)
	if err != nil {
		return err
	}
	var accept, reject []ir.Statement
	if err := a.lowerStatement(ifStmt.Then, &accept); err != nil {
		return err
	}
	if ifStmt.Else != nil {
		if err := a.lowerStatement(ifStmt.Else, &reject); err != nil {
			return err
		}
	}
	*target = append(*target, ir.Statement{Kind: ir.StmtIf{Condition: cond, Accept: accept, Reject: reject}})
	return nil
}

func (a *analyzer) addExpression(expr ir.Expression) ir.ExpressionHandle {
	handle := a.currentExprIdx
	a.currentExprIdx++
	a.currentFunc.Expressions = append(a.currentFunc.Expressions, expr)

	exprType, err := ir.ResolveExpressionType(a.module, a.currentFunc, handle)
	if err != nil {
		exprType = ir.TypeResolution{}
	}
	a.currentFunc.ExpressionTypes = append(a.currentFunc.ExpressionTypes, exprType)
	return handle
}
