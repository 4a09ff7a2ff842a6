package sema

import (
	"fmt"

	"github.com/thsl-lang/thslc/ast"
	"github.com/thsl-lang/thslc/ir"
)

func (a *analyzer) lowerExpression(expr ast.Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return a.resolveIdentifier(e.Name)
	case *ast.IntLit:
		return a.lowerIntLit(e), nil
	case *ast.FloatLit:
		return a.lowerFloatLit(e), nil
	case *ast.BoolLit:
		return a.addExpression(ir.Expression{Kind: ir.Literal{Value: ir.LiteralBool(e.Value)}}), nil
	case *ast.UnaryExpr:
		return a.lowerUnary(e, target)
	case *ast.PostfixExpr:
		return a.lowerPostfix(e, target)
	case *ast.CastExpr:
		return a.lowerCast(e, target)
	case *ast.BinaryExpr:
		return a.lowerBinary(e, target)
	case *ast.CondExpr:
		return 0, fmt.Errorf("the ternary operator is reserved and not implemented")
	case *ast.AssignExpr:
		return a.lowerAssign(e, target)
	case *ast.CallExpr:
		return a.lowerCall(e, target)
	case *ast.ConstructExpr:
		return a.lowerConstruct(e, target)
	case *ast.IndexExpr:
		return a.lowerIndex(e, target)
	case *ast.MemberExpr:
		return a.lowerMember(e, target)
	default:
		return 0, fmt.Errorf("unsupported expression type %T", expr)
	}
}

func (a *analyzer) lowerIntLit(lit *ast.IntLit) ir.ExpressionHandle {
	var value ir.LiteralValue
	if lit.Signed {
		value = ir.LiteralI32(int32(lit.Value))
	} else {
		value = ir.LiteralU32(uint32(lit.Value))
	}
	return a.addExpression(ir.Expression{Kind: ir.Literal{Value: value}})
}

func (a *analyzer) lowerFloatLit(lit *ast.FloatLit) ir.ExpressionHandle {
	if a.opts.DefaultFloatIsFP64 {
		return a.addExpression(ir.Expression{Kind: ir.Literal{Value: ir.LiteralF64(lit.Value)}})
	}
	return a.addExpression(ir.Expression{Kind: ir.Literal{Value: ir.LiteralF32(float32(lit.Value))}})
}

// resolveIdentifier looks up a name, in priority order: function
// locals/arguments, private globals, uniform-block members, then
// module constants. For locals/globals/uniform members this returns
// a pointer expression (ExprLocalVariable/ExprGlobalVariable/
// ExprAccessIndex) — callers that need the value must add an
// ExprLoad themselves, matching how compound assignment and the
// entry-point return synthesis already do this.
func (a *analyzer) resolveIdentifier(name string) (ir.ExpressionHandle, error) {
	if lb, ok := a.locals[name]; ok {
		if lb.isArg {
			return a.addExpression(ir.Expression{Kind: ir.ExprFunctionArgument{Index: lb.argIndex}}), nil
		}
		return a.addExpression(ir.Expression{Kind: ir.ExprLocalVariable{Variable: lb.local}}), nil
	}
	if handle, ok := a.globals[name]; ok {
		return a.addExpression(ir.Expression{Kind: ir.ExprGlobalVariable{Variable: handle}}), nil
	}
	if um, ok := a.uniformMembers[name]; ok {
		base := a.addExpression(ir.Expression{Kind: ir.ExprGlobalVariable{Variable: um.variable}})
		return a.addExpression(ir.Expression{Kind: ir.ExprAccessIndex{Base: base, Index: um.index}}), nil
	}
	if handle, ok := a.moduleConsts[name]; ok {
		return a.addExpression(ir.Expression{Kind: ir.ExprConstant{Constant: handle}}), nil
	}
	return 0, fmt.Errorf("unresolved identifier %q", name)
}

// coerceToBool loads condExpr's value and, if it isn't already bool,
// desugars THSL's "any scalar is truthy" rule into an explicit
// `value != 0` comparison. Disabled by -moIMP, matching every other
// implicit scalar conversion.
func (a *analyzer) coerceToBool(condExpr ast.Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	ptr, err := a.lowerExpression(condExpr, target)
	if err != nil {
		return 0, err
	}
	value := a.loadValue(ptr, a.exprIsPointer(condExpr))

	res, err := ir.ResolveExpressionType(a.module, a.currentFunc, value)
	if err != nil {
		return 0, fmt.Errorf("condition: %w", err)
	}
	kind, ok := scalarKindOf(typeInnerOf(a.module, res))
	if !ok {
		return 0, fmt.Errorf("condition must be a scalar or bool expression")
	}
	if kind == ir.ScalarBool {
		return value, nil
	}
	if !a.opts.ImplicitConversions {
		return 0, fmt.Errorf("condition is not bool and implicit conversions are disabled (-moIMP)")
	}

	var zero ir.ExpressionHandle
	switch kind {
	case ir.ScalarSint:
		zero = a.addExpression(ir.Expression{Kind: ir.Literal{Value: ir.LiteralI32(0)}})
	case ir.ScalarUint:
		zero = a.addExpression(ir.Expression{Kind: ir.Literal{Value: ir.LiteralU32(0)}})
	case ir.ScalarFloat:
		zero = a.addExpression(ir.Expression{Kind: ir.Literal{Value: ir.LiteralF32(0)}})
	default:
		return 0, fmt.Errorf("condition has unsupported scalar kind")
	}
	return a.addExpression(ir.Expression{Kind: ir.ExprBinary{Op: ir.BinaryNotEqual, Left: value, Right: zero}}), nil
}

// loadValue wraps a pointer expression in an ExprLoad, unless it is
// already a value-producing expression (function arguments are values,
// not pointers — this IR has no Input address space for them).
func (a *analyzer) loadValue(handle ir.ExpressionHandle, isPointer bool) ir.ExpressionHandle {
	if !isPointer {
		return handle
	}
	return a.addExpression(ir.Expression{Kind: ir.ExprLoad{Pointer: handle}})
}

// exprIsPointer reports whether an expression denotes an addressable
// location (local/global/uniform-member access) rather than a value,
// mirroring which resolveIdentifier/lowerMember/lowerIndex results can
// legally be the target of a store.
func (a *analyzer) exprIsPointer(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		if lb, ok := a.locals[e.Name]; ok {
			return !lb.isArg
		}
		if _, ok := a.globals[e.Name]; ok {
			return true
		}
		if _, ok := a.uniformMembers[e.Name]; ok {
			return true
		}
		return false
	case *ast.MemberExpr:
		return a.exprIsPointer(e.Base)
	case *ast.IndexExpr:
		return a.exprIsPointer(e.Base)
	default:
		return false
	}
}

var unaryOpTable = map[ast.UnaryOp]ir.UnaryOperator{
	ast.UnaryNeg:    ir.UnaryNegate,
	ast.UnaryNot:    ir.UnaryLogicalNot,
	ast.UnaryBitNot: ir.UnaryBitwiseNot,
}

func (a *analyzer) lowerUnary(un *ast.UnaryExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if un.Op == ast.UnaryPreInc || un.Op == ast.UnaryPreDec {
		return a.lowerIncDec(un.X, un.Op, target, false)
	}

	operandPtr, err := a.lowerExpression(un.X, target)
	if err != nil {
		return 0, err
	}
	operand := a.loadValue(operandPtr, a.exprIsPointer(un.X))
	op, ok := unaryOpTable[un.Op]
	if !ok {
		return 0, fmt.Errorf("unsupported unary operator %v", un.Op)
	}
	return a.addExpression(ir.Expression{Kind: ir.ExprUnary{Op: op, Expr: operand}}), nil
}

func (a *analyzer) lowerPostfix(p *ast.PostfixExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	return a.lowerIncDec(p.X, p.Op, target, true)
}

// lowerIncDec lowers ++/-- in either prefix or postfix position: both
// load, apply +/-1, and store back; they differ in which value (old or
// new) becomes the expression's result.
func (a *analyzer) lowerIncDec(operand ast.Expr, op ast.UnaryOp, target *[]ir.Statement, postfix bool) (ir.ExpressionHandle, error) {
	ptr, err := a.lowerExpression(operand, target)
	if err != nil {
		return 0, err
	}
	old := a.addExpression(ir.Expression{Kind: ir.ExprLoad{Pointer: ptr}})

	one := a.addExpression(ir.Expression{Kind: ir.Literal{Value: ir.LiteralI32(1)}})
	binOp := ir.BinaryAdd
	if op == ast.UnaryPreDec {
		binOp = ir.BinarySubtract
	}
	updated := a.addExpression(ir.Expression{Kind: ir.ExprBinary{Op: binOp, Left: old, Right: one}})
	*target = append(*target, ir.Statement{Kind: ir.StmtStore{Pointer: ptr, Value: updated}})

	if postfix {
		return old, nil
	}
	return updated, nil
}

func (a *analyzer) lowerCast(c *ast.CastExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	srcPtr, err := a.lowerExpression(c.X, target)
	if err != nil {
		return 0, err
	}
	src := a.loadValue(srcPtr, a.exprIsPointer(c.X))

	typeHandle, err := a.resolveType(c.Type)
	if err != nil {
		return 0, fmt.Errorf("cast target type: %w", err)
	}
	inner := a.module.Types[typeHandle].Inner
	kind, ok := scalarKindOf(inner)
	if !ok {
		return 0, fmt.Errorf("cast target must be scalar, vector, or matrix")
	}
	var width uint8
	switch sc := inner.(type) {
	case ir.ScalarType:
		width = sc.Width
	case ir.VectorType:
		width = sc.Scalar.Width
	case ir.MatrixType:
		width = sc.Scalar.Width
	}
	return a.addExpression(ir.Expression{Kind: ir.ExprAs{Expr: src, Kind: kind, Convert: &width}}), nil
}

var binaryOpTable = map[ast.BinaryOp]ir.BinaryOperator{
	ast.OpMul:        ir.BinaryMultiply,
	ast.OpDiv:        ir.BinaryDivide,
	ast.OpAdd:        ir.BinaryAdd,
	ast.OpSub:        ir.BinarySubtract,
	ast.OpShl:        ir.BinaryShiftLeft,
	ast.OpShr:        ir.BinaryShiftRight,
	ast.OpLt:         ir.BinaryLess,
	ast.OpLe:         ir.BinaryLessEqual,
	ast.OpGt:         ir.BinaryGreater,
	ast.OpGe:         ir.BinaryGreaterEqual,
	ast.OpEq:         ir.BinaryEqual,
	ast.OpNe:         ir.BinaryNotEqual,
	ast.OpBitAnd:     ir.BinaryAnd,
	ast.OpBitXor:     ir.BinaryExclusiveOr,
	ast.OpBitOr:      ir.BinaryInclusiveOr,
	ast.OpLogicalAnd: ir.BinaryLogicalAnd,
	ast.OpLogicalOr:  ir.BinaryLogicalOr,
}

func (a *analyzer) lowerBinary(bin *ast.BinaryExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	leftPtr, err := a.lowerExpression(bin.Left, target)
	if err != nil {
		return 0, err
	}
	left := a.loadValue(leftPtr, a.exprIsPointer(bin.Left))

	rightPtr, err := a.lowerExpression(bin.Right, target)
	if err != nil {
		return 0, err
	}
	right := a.loadValue(rightPtr, a.exprIsPointer(bin.Right))

	op, ok := binaryOpTable[bin.Op]
	if !ok {
		return 0, fmt.Errorf("unsupported binary operator %v", bin.Op)
	}
	return a.addExpression(ir.Expression{Kind: ir.ExprBinary{Op: op, Left: left, Right: right}}), nil
}

var assignOpTable = map[ast.AssignOp]ir.BinaryOperator{
	ast.AssignAdd: ir.BinaryAdd,
	ast.AssignSub: ir.BinarySubtract,
	ast.AssignMul: ir.BinaryMultiply,
	ast.AssignDiv: ir.BinaryDivide,
}

func (a *analyzer) lowerAssign(assign *ast.AssignExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if mem, ok := assign.Target.(*ast.MemberExpr); ok {
		if swizzled, handled, err := a.lowerSwizzleAssign(mem, assign, target); handled {
			return swizzled, err
		}
	}

	ptr, err := a.lowerExpression(assign.Target, target)
	if err != nil {
		return 0, err
	}
	valuePtr, err := a.lowerExpression(assign.Value, target)
	if err != nil {
		return 0, err
	}
	value := a.loadValue(valuePtr, a.exprIsPointer(assign.Value))

	if assign.Op != ast.AssignSet {
		old := a.addExpression(ir.Expression{Kind: ir.ExprLoad{Pointer: ptr}})
		value = a.addExpression(ir.Expression{Kind: ir.ExprBinary{Op: assignOpTable[assign.Op], Left: old, Right: value}})
	}
	*target = append(*target, ir.Statement{Kind: ir.StmtStore{Pointer: ptr, Value: value}})
	return value, nil
}

// lowerSwizzleAssign handles `base.x = value` and `base.xy = value`
// and similar swizzle writes. None of these are themselves
// addressable (lowerMember always loads the base to produce a
// swizzle's value): a single-lane write becomes an OpCompositeInsert
// over the loaded base, a multi-lane write becomes a single
// OpVectorShuffle combining the loaded base with the right-hand
// value, writing the assigned lanes and leaving the rest unchanged.
func (a *analyzer) lowerSwizzleAssign(mem *ast.MemberExpr, assign *ast.AssignExpr, target *[]ir.Statement) (ir.ExpressionHandle, bool, error) {
	if len(mem.Name) < 1 || len(mem.Name) > 4 {
		return 0, false, nil
	}

	basePtr, err := a.lowerExpression(mem.Base, target)
	if err != nil {
		return 0, true, err
	}
	baseType, err := ir.ResolveExpressionType(a.module, a.currentFunc, basePtr)
	if err != nil {
		return 0, true, fmt.Errorf("swizzle assignment base type: %w", err)
	}
	inner := typeInnerOf(a.module, baseType)
	vec, ok := inner.(ir.VectorType)
	if !ok {
		return 0, false, nil
	}

	pattern, err := swizzlePattern(mem.Name, vec.Size)
	if err != nil {
		return 0, true, err
	}

	valuePtr, err := a.lowerExpression(assign.Value, target)
	if err != nil {
		return 0, true, err
	}
	rhs := a.loadValue(valuePtr, a.exprIsPointer(assign.Value))

	baseLoad := a.addExpression(ir.Expression{Kind: ir.ExprLoad{Pointer: basePtr}})

	// value is sized to len(mem.Name): the right-hand side directly
	// for a plain assignment, or the componentwise combination of the
	// written base lanes with it for a compound assignment (+=, ...).
	value := rhs
	if assign.Op != ast.AssignSet {
		combined := make([]ir.ExpressionHandle, len(mem.Name))
		for slot, comp := range pattern[:len(mem.Name)] {
			baseComponent := a.addExpression(ir.Expression{Kind: ir.ExprAccessIndex{Base: baseLoad, Index: uint32(comp)}})
			rhsComponent := rhs
			if len(mem.Name) > 1 {
				rhsComponent = a.addExpression(ir.Expression{Kind: ir.ExprAccessIndex{Base: rhs, Index: uint32(slot)}})
			}
			combined[slot] = a.addExpression(ir.Expression{Kind: ir.ExprBinary{
				Op: assignOpTable[assign.Op], Left: baseComponent, Right: rhsComponent,
			}})
		}
		if len(mem.Name) == 1 {
			value = combined[0]
		} else {
			combinedType := a.registerType("", ir.VectorType{Size: ir.VectorSize(len(mem.Name)), Scalar: vec.Scalar})
			value = a.addExpression(ir.Expression{Kind: ir.ExprCompose{Type: combinedType, Components: combined}})
		}
	}

	var result ir.ExpressionHandle
	if len(mem.Name) == 1 {
		result = a.addExpression(ir.Expression{Kind: ir.ExprCompositeInsert{
			Composite: baseLoad, Object: value, Index: uint32(pattern[0]),
		}})
	} else {
		// write[i] holds which swizzle-pattern slot (if any) supplies
		// destination lane i; a lane not written is preserved from
		// the base by indexing it directly, a written lane is taken
		// from value at vec.Size+slot (the concatenated-operand index
		// space OpVectorShuffle expects).
		write := make([]int, int(vec.Size))
		for i := range write {
			write[i] = -1
		}
		for slot, comp := range pattern[:len(mem.Name)] {
			write[int(comp)] = slot
		}
		var indices [4]uint32
		for i := range write {
			if write[i] == -1 {
				indices[i] = uint32(i)
			} else {
				indices[i] = uint32(int(vec.Size) + write[i])
			}
		}
		result = a.addExpression(ir.Expression{Kind: ir.ExprVectorShuffle{
			Size: vec.Size, Vector1: baseLoad, Vector2: value, Indices: indices,
		}})
	}

	*target = append(*target, ir.Statement{Kind: ir.StmtStore{Pointer: basePtr, Value: result}})
	return result, true, nil
}

func (a *analyzer) lowerCall(call *ast.CallExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if entry, ok := thslIntrinsics[call.Callee]; ok {
		if len(call.Args) != entry.arity {
			return 0, fmt.Errorf("%s expects %d argument(s), got %d", call.Callee, entry.arity, len(call.Args))
		}
		args := make([]ir.ExpressionHandle, len(call.Args))
		for i, arg := range call.Args {
			ptr, err := a.lowerExpression(arg, target)
			if err != nil {
				return 0, err
			}
			args[i] = a.loadValue(ptr, a.exprIsPointer(arg))
		}
		return a.lowerIntrinsicCall(entry, args)
	}

	funcHandle, ok := a.functions[call.Callee]
	if !ok {
		return 0, fmt.Errorf("unknown function %q", call.Callee)
	}
	args := make([]ir.ExpressionHandle, len(call.Args))
	for i, arg := range call.Args {
		ptr, err := a.lowerExpression(arg, target)
		if err != nil {
			return 0, err
		}
		args[i] = a.loadValue(ptr, a.exprIsPointer(arg))
	}
	result := a.addExpression(ir.Expression{Kind: ir.ExprCallResult{Function: funcHandle}})
	*target = append(*target, ir.Statement{Kind: ir.StmtCall{Function: funcHandle, Arguments: args, Result: &result}})
	return result, nil
}

// lowerConstruct lowers `TYPE(args...)`: a vector type with a single
// argument splats it, and every other form composes the arguments
// directly as components. Argument counts and component types are not
// checked here, and a single argument of another type is not converted.
func (a *analyzer) lowerConstruct(cons *ast.ConstructExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	typeHandle, err := a.resolveType(cons.Type)
	if err != nil {
		return 0, fmt.Errorf("constructor type: %w", err)
	}

	args := make([]ir.ExpressionHandle, len(cons.Args))
	for i, argExpr := range cons.Args {
		ptr, err := a.lowerExpression(argExpr, target)
		if err != nil {
			return 0, err
		}
		args[i] = a.loadValue(ptr, a.exprIsPointer(argExpr))
	}

	inner := a.module.Types[typeHandle].Inner
	if vec, ok := inner.(ir.VectorType); ok && len(args) == 1 {
		return a.addExpression(ir.Expression{Kind: ir.ExprSplat{Size: vec.Size, Value: args[0]}}), nil
	}

	return a.addExpression(ir.Expression{Kind: ir.ExprCompose{Type: typeHandle, Components: args}}), nil
}

func (a *analyzer) lowerIndex(idx *ast.IndexExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	basePtr, err := a.lowerExpression(idx.Base, target)
	if err != nil {
		return 0, err
	}
	indexPtr, err := a.lowerExpression(idx.Index, target)
	if err != nil {
		return 0, err
	}
	index := a.loadValue(indexPtr, a.exprIsPointer(idx.Index))
	return a.addExpression(ir.Expression{Kind: ir.ExprAccess{Base: basePtr, Index: index}}), nil
}

// lowerMember disambiguates `base.name` between a struct field access
// and a vector swizzle by resolving base's type.
func (a *analyzer) lowerMember(mem *ast.MemberExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	basePtr, err := a.lowerExpression(mem.Base, target)
	if err != nil {
		return 0, err
	}

	baseType, err := ir.ResolveExpressionType(a.module, a.currentFunc, basePtr)
	if err != nil {
		return 0, fmt.Errorf("member access base type: %w", err)
	}
	inner := typeInnerOf(a.module, baseType)

	if st, ok := inner.(ir.StructType); ok {
		for i, m := range st.Members {
			if m.Name == mem.Name {
				return a.addExpression(ir.Expression{Kind: ir.ExprAccessIndex{Base: basePtr, Index: uint32(i)}}), nil
			}
		}
		return 0, fmt.Errorf("struct has no member %q", mem.Name)
	}

	vec, ok := inner.(ir.VectorType)
	if !ok {
		return 0, fmt.Errorf("cannot access member %q of non-struct, non-vector type", mem.Name)
	}

	if len(mem.Name) == 1 {
		comp, ok := swizzleComponent(mem.Name[0])
		if !ok || uint8(comp) >= uint8(vec.Size) {
			return 0, fmt.Errorf("invalid swizzle component %q", mem.Name)
		}
		base := a.loadValue(basePtr, a.exprIsPointer(mem.Base))
		return a.addExpression(ir.Expression{Kind: ir.ExprAccessIndex{Base: base, Index: uint32(comp)}}), nil
	}

	pattern, err := swizzlePattern(mem.Name, vec.Size)
	if err != nil {
		return 0, err
	}
	size := ir.VectorSize(len(mem.Name))
	base := a.loadValue(basePtr, a.exprIsPointer(mem.Base))
	return a.addExpression(ir.Expression{Kind: ir.ExprSwizzle{Size: size, Vector: base, Pattern: pattern}}), nil
}

func swizzleComponent(c byte) (ir.SwizzleComponent, bool) {
	switch c {
	case 'x', 'r':
		return ir.SwizzleX, true
	case 'y', 'g':
		return ir.SwizzleY, true
	case 'z', 'b':
		return ir.SwizzleZ, true
	case 'w', 'a':
		return ir.SwizzleW, true
	default:
		return 0, false
	}
}

func swizzlePattern(member string, vecSize ir.VectorSize) ([4]ir.SwizzleComponent, error) {
	var pattern [4]ir.SwizzleComponent
	for i := 0; i < len(member); i++ {
		comp, ok := swizzleComponent(member[i])
		if !ok {
			return pattern, fmt.Errorf("invalid swizzle component %q", member)
		}
		if uint8(comp) >= uint8(vecSize) {
			return pattern, fmt.Errorf("swizzle component %q out of range for vec%v", member, vecSize)
		}
		pattern[i] = comp
	}
	return pattern, nil
}
