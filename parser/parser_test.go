package parser

import (
	"testing"

	"github.com/thsl-lang/thslc/ast"
	"github.com/thsl-lang/thslc/diag"
	"github.com/thsl-lang/thslc/token"
)

func parse(t *testing.T, src string) (*ast.Module, *diag.CollectingSink) {
	t.Helper()
	sink := &diag.CollectingSink{}
	toks := token.NewLexer("t.thsl", src, sink).Tokenize()
	mod := New(toks, sink).Parse()
	return mod, sink
}

func TestParseLayoutInOut(t *testing.T) {
	mod, sink := parse(t, `layout(location=0) in vec4 pos;`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diags)
	}
	if len(mod.Layouts) != 1 {
		t.Fatalf("expected 1 layout decl, got %d", len(mod.Layouts))
	}
	l := mod.Layouts[0]
	if l.Direction != ast.LayoutIn || l.Name != "pos" || len(l.Qualifiers) != 1 {
		t.Fatalf("layout decl parsed wrong: %+v", l)
	}
}

func TestParseUniformBlock(t *testing.T) {
	mod, sink := parse(t, `layout(binding=0, set=0) uniform struct { mat4 mvp; };`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diags)
	}
	l := mod.Layouts[0]
	if l.Direction != ast.LayoutUniform || len(l.Members) != 1 || l.Members[0].Name != "mvp" {
		t.Fatalf("uniform block parsed wrong: %+v", l)
	}
}

func TestParseFunctionAndIfElse(t *testing.T) {
	src := `
void main() {
	int y;
	if (x) y = 1; else y = 2;
}`
	mod, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diags)
	}
	if len(mod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Functions))
	}
	fn := mod.Functions[0]
	if fn.Body == nil || len(fn.Body.Stmts) != 2 {
		t.Fatalf("expected 2 body statements, got %+v", fn.Body)
	}
	ifStmt, ok := fn.Body.Stmts[1].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected second statement to be an if, got %T", fn.Body.Stmts[1])
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected else clause to be parsed")
	}
}

func TestParseSwizzleAssignment(t *testing.T) {
	mod, sink := parse(t, `void main() { vec4 a; vec2 b; a.xy = b; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diags)
	}
	fn := mod.Functions[0]
	exprStmt, ok := fn.Body.Stmts[2].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected expr stmt, got %T", fn.Body.Stmts[2])
	}
	assign, ok := exprStmt.X.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected assignment, got %T", exprStmt.X)
	}
	member, ok := assign.Target.(*ast.MemberExpr)
	if !ok || member.Name != "xy" {
		t.Fatalf("expected swizzle target .xy, got %+v", assign.Target)
	}
}

func TestParseReservedForWhileSwitch(t *testing.T) {
	src := `void main() {
		for (int i = 0; i < 1; i += 1) { break; }
		while (true) { continue; }
		switch (1) { case 1: return; default: return; }
	}`
	_, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("reserved control-flow grammar must still parse: %v", sink.Diags)
	}
}
