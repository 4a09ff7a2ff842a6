package sema

import (
	"fmt"

	"github.com/thsl-lang/thslc/ast"
	"github.com/thsl-lang/thslc/ir"
)

// isVoid reports whether t is the THSL `void` type.
func isVoid(t ast.Type) bool {
	s, ok := t.(*ast.ScalarType)
	return ok && s.Name == "void"
}

// resolveType converts a source type-spec into an interned IR type.
func (a *analyzer) resolveType(t ast.Type) (ir.TypeHandle, error) {
	switch ty := t.(type) {
	case *ast.ScalarType:
		return a.resolveScalarType(ty)
	case *ast.NamedType:
		handle, ok := a.types[ty.Name]
		if !ok {
			return 0, fmt.Errorf("unknown type %q", ty.Name)
		}
		return handle, nil
	default:
		return 0, fmt.Errorf("unsupported type spec %T", t)
	}
}

func (a *analyzer) resolveScalarType(ty *ast.ScalarType) (ir.TypeHandle, error) {
	switch ty.Name {
	case "void":
		return 0, fmt.Errorf("void may not be used as a value type")
	case "bool", "int", "uint", "float", "double":
		return a.types[ty.Name], nil
	}
	// vecN / matCxR: Columns > 0 distinguishes matrix from vector.
	scalar := ir.ScalarType{Kind: ir.ScalarFloat, Width: ty.Bits / 8}
	if ty.Columns > 0 {
		return a.registerType("", ir.MatrixType{
			Columns: ir.VectorSize(ty.Columns),
			Rows:    ir.VectorSize(ty.Rows),
			Scalar:  scalar,
		}), nil
	}
	if ty.Rows > 0 {
		return a.registerType("", ir.VectorType{
			Size:   ir.VectorSize(ty.Rows),
			Scalar: scalar,
		}), nil
	}
	return 0, fmt.Errorf("unrecognized scalar type %q", ty.Name)
}

// typeInnerOf dereferences a TypeResolution to its structural type,
// looking it up in the module's type arena when it is a handle.
func typeInnerOf(module *ir.Module, res ir.TypeResolution) ir.TypeInner {
	if res.Handle != nil {
		return module.Types[*res.Handle].Inner
	}
	return res.Value
}

// scalarKindOf returns the scalar kind backing a type, unwrapping
// vectors and matrices to their element type.
func scalarKindOf(inner ir.TypeInner) (ir.ScalarKind, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return t.Kind, true
	case ir.VectorType:
		return t.Scalar.Kind, true
	case ir.MatrixType:
		return t.Scalar.Kind, true
	}
	return 0, false
}
