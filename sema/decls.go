package sema

import (
	"fmt"
	"math"

	"github.com/thsl-lang/thslc/ast"
	"github.com/thsl-lang/thslc/ir"
)

// lowerStruct converts a `struct NAME { ... };` declaration, computing
// std140-ish member offsets the way a uniform-block layout requires.
func (a *analyzer) lowerStruct(s *ast.StructDecl) error {
	members := make([]ir.StructMember, len(s.Members))
	var offset, maxAlign uint32 = 0, 1
	for i, m := range s.Members {
		typeHandle, err := a.resolveType(m.Type)
		if err != nil {
			return fmt.Errorf("struct %s member %s: %w", s.Name, m.Name, err)
		}
		align, size := a.typeAlignmentAndSize(typeHandle)
		if align > maxAlign {
			maxAlign = align
		}
		offset = (offset + align - 1) &^ (align - 1)
		members[i] = ir.StructMember{Name: m.Name, Type: typeHandle, Offset: offset}
		offset += size
	}
	span := (offset + maxAlign - 1) &^ (maxAlign - 1)
	a.registerType(s.Name, ir.StructType{Members: members, Span: span})
	return nil
}

// typeAlignmentAndSize returns std140-style alignment and size for a
// type, used to place uniform-block members.
func (a *analyzer) typeAlignmentAndSize(handle ir.TypeHandle) (align, size uint32) {
	typ := a.module.Types[handle]
	switch t := typ.Inner.(type) {
	case ir.ScalarType:
		return 4, 4
	case ir.VectorType:
		switch t.Size {
		case ir.Vec2:
			return 8, 8
		case ir.Vec3:
			return 16, 12
		case ir.Vec4:
			return 16, 16
		}
	case ir.MatrixType:
		_, colSize := a.vectorAlignmentAndSize(uint8(t.Rows))
		return 16, colSize * uint32(t.Columns)
	case ir.StructType:
		var maxAlign uint32 = 1
		for _, m := range t.Members {
			memberAlign, _ := a.typeAlignmentAndSize(m.Type)
			if memberAlign > maxAlign {
				maxAlign = memberAlign
			}
		}
		return maxAlign, t.Span
	}
	return 4, 4
}

func (a *analyzer) vectorAlignmentAndSize(rows uint8) (align, size uint32) {
	switch rows {
	case 2:
		return 8, 8
	case 3:
		return 16, 12
	case 4:
		return 16, 16
	default:
		return 4, 4
	}
}

// lowerLayout handles `layout(...) {in|out|uniform} ...;` declarations.
// `in`/`out` are queued as ioVars for main's Arguments/Result; `uniform`
// blocks become a struct-typed global in the Uniform address space with
// its members made visible for unqualified name resolution.
func (a *analyzer) lowerLayout(l *ast.LayoutDecl) {
	switch l.Direction {
	case ast.LayoutIn, ast.LayoutOut:
		typeHandle, err := a.resolveType(l.VarType)
		if err != nil {
			a.errorAt(l.Position, "%v", err)
			return
		}
		binding := a.locationBinding(l)
		v := ioVar{name: l.Name, typ: typeHandle, binding: binding}
		if l.Direction == ast.LayoutIn {
			a.inputs = append(a.inputs, v)
		} else {
			a.outputs = append(a.outputs, v)
		}

	case ast.LayoutUniform:
		members := make([]ir.StructMember, len(l.Members))
		var offset, maxAlign uint32 = 0, 1
		for i, m := range l.Members {
			typeHandle, err := a.resolveType(m.Type)
			if err != nil {
				a.errorAt(m.Position, "%v", err)
				return
			}
			align, size := a.typeAlignmentAndSize(typeHandle)
			if align > maxAlign {
				maxAlign = align
			}
			offset = (offset + align - 1) &^ (align - 1)
			members[i] = ir.StructMember{Name: m.Name, Type: typeHandle, Offset: offset}
			offset += size
		}
		span := (offset + maxAlign - 1) &^ (maxAlign - 1)
		structHandle := a.registerType(l.Name+"_uniform_type", ir.StructType{Members: members, Span: span})

		group, binding := a.groupAndBinding(l)
		varHandle := ir.GlobalVariableHandle(len(a.module.GlobalVariables))
		a.module.GlobalVariables = append(a.module.GlobalVariables, ir.GlobalVariable{
			Space:   ir.SpaceUniform,
			Binding: &ir.ResourceBinding{Group: group, Binding: binding},
			Type:    structHandle,
		})
		for i, m := range members {
			a.uniformMembers[m.Name] = uniformMember{variable: varHandle, index: uint32(i), typ: m.Type}
		}
	}
}

func (a *analyzer) locationBinding(l *ast.LayoutDecl) ir.Binding {
	for _, q := range l.Qualifiers {
		if q.Name == "location" {
			return ir.LocationBinding{Location: q.Value}
		}
	}
	return nil
}

func (a *analyzer) groupAndBinding(l *ast.LayoutDecl) (group, binding uint32) {
	for _, q := range l.Qualifiers {
		switch q.Name {
		case "set":
			group = q.Value
		case "binding":
			binding = q.Value
		}
	}
	return group, binding
}

// thslBuiltins maps the THSL_* stage-builtin names from spec.md §4.4
// to their IR builtin value.
var thslBuiltins = map[string]ir.BuiltinValue{
	"THSL_Position":    ir.BuiltinPosition,
	"THSL_VertexId":    ir.BuiltinVertexIndex,
	"THSL_InstanceId":  ir.BuiltinInstanceIndex,
	"THSL_FrontFacing": ir.BuiltinFrontFacing,
	"THSL_FragDepth":   ir.BuiltinFragDepth,
	"THSL_FragCoord":   ir.BuiltinFragCoord,
	"THSL_PointSize":   ir.BuiltinPointSize,
	"THSL_PointCoord":  ir.BuiltinPointCoord,
}

// lowerBuiltinDecl handles `{in|out} TYPE NAME = THSL_Xyz;`.
func (a *analyzer) lowerBuiltinDecl(b *ast.BuiltinDecl) {
	typeHandle, err := a.resolveType(b.VarType)
	if err != nil {
		a.errorAt(b.Position, "%v", err)
		return
	}
	builtin, ok := thslBuiltins[b.Builtin]
	if !ok {
		a.errorAt(b.Position, "unknown stage builtin %q", b.Builtin)
		return
	}
	v := ioVar{name: b.Name, typ: typeHandle, binding: ir.BuiltinBinding{Builtin: builtin}}
	if b.Direction == ast.LayoutIn {
		a.inputs = append(a.inputs, v)
	} else {
		a.outputs = append(a.outputs, v)
	}
}

// lowerGlobalVar converts a module-scope `[const] TYPE NAME [= EXPR];`
// declaration. A const with an integer or float literal initializer
// becomes an IR Constant, and a const with any other initializer is an
// error; a non-const declaration becomes a Private global variable.
func (a *analyzer) lowerGlobalVar(v *ast.GlobalVarDecl) error {
	typeHandle, err := a.resolveType(v.Type)
	if err != nil {
		return fmt.Errorf("global %s: %w", v.Name, err)
	}

	if v.Const {
		if intLit, ok := v.Init.(*ast.IntLit); ok {
			kind := ir.ScalarUint
			if intLit.Signed {
				kind = ir.ScalarSint
			}
			handle := ir.ConstantHandle(len(a.module.Constants))
			a.module.Constants = append(a.module.Constants, ir.Constant{
				Name: v.Name, Type: typeHandle,
				Value: ir.ScalarValue{Bits: intLit.Value, Kind: kind},
			})
			a.moduleConsts[v.Name] = handle
			return nil
		}
		if floatLit, ok := v.Init.(*ast.FloatLit); ok {
			bits := uint64(math.Float32bits(float32(floatLit.Value)))
			handle := ir.ConstantHandle(len(a.module.Constants))
			a.module.Constants = append(a.module.Constants, ir.Constant{
				Name: v.Name, Type: typeHandle,
				Value: ir.ScalarValue{Bits: bits, Kind: ir.ScalarFloat},
			})
			a.moduleConsts[v.Name] = handle
			return nil
		}
		return fmt.Errorf("const %s: only literal initializers are supported", v.Name)
	}

	handle := ir.GlobalVariableHandle(len(a.module.GlobalVariables))
	a.module.GlobalVariables = append(a.module.GlobalVariables, ir.GlobalVariable{
		Name:  v.Name,
		Space: ir.SpacePrivate,
		Type:  typeHandle,
	})
	a.globals[v.Name] = handle
	return nil
}
