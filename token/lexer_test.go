package token

import (
	"strings"
	"testing"

	"github.com/thsl-lang/thslc/diag"
)

func lex(t *testing.T, src string) ([]Token, *diag.CollectingSink) {
	t.Helper()
	sink := &diag.CollectingSink{}
	toks := NewLexer("t.thsl", src, sink).Tokenize()
	return toks, sink
}

func TestKeywordsAndShapes(t *testing.T) {
	toks, sink := lex(t, "vec4 pos; mat4 m; uniform struct")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diags)
	}
	if toks[0].Kind != KwVec || toks[0].Rows != 4 {
		t.Fatalf("vec4 not recognized: %+v", toks[0])
	}
	if toks[3].Kind != KwMat || toks[3].Rows != 4 || toks[3].Columns != 4 {
		t.Fatalf("mat4 not recognized: %+v", toks[3])
	}
}

func TestNumericLiterals(t *testing.T) {
	toks, sink := lex(t, "0xFFFFFFFFu 3.14 10")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diags)
	}
	if toks[0].Kind != Value || toks[0].IntValue != 0xFFFFFFFF || toks[0].Signed {
		t.Fatalf("hex literal wrong: %+v", toks[0])
	}
	if toks[1].Kind != Value || toks[1].NumKind != NumFloat {
		t.Fatalf("float literal wrong: %+v", toks[1])
	}
}

func TestUnaryMinusContext(t *testing.T) {
	toks, _ := lex(t, "a - -1")
	// indices: a(0) -(1) -(2) 1(3) EOF(4)
	if IsUnaryContext(toks, 1) {
		t.Fatalf("binary minus misclassified as unary")
	}
	if !IsUnaryContext(toks, 2) {
		t.Fatalf("unary minus misclassified as binary")
	}
}

func TestTokenizationRoundTrip(t *testing.T) {
	src := "int x = 1 + 2 ;"
	toks, sink := lex(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diags)
	}
	var lexemes []string
	for _, tk := range toks {
		if tk.Kind == EOF {
			continue
		}
		lexemes = append(lexemes, tk.Lexeme)
	}
	rejoined := strings.Join(lexemes, " ")
	toks2, sink2 := lex(t, rejoined)
	if sink2.HasErrors() {
		t.Fatalf("unexpected errors reparsing: %v", sink2.Diags)
	}
	if len(toks) != len(toks2) {
		t.Fatalf("round-trip token count mismatch: %d vs %d", len(toks), len(toks2))
	}
	for i := range toks {
		if toks[i].Kind != toks2[i].Kind {
			t.Fatalf("round-trip kind mismatch at %d: %v vs %v", i, toks[i].Kind, toks2[i].Kind)
		}
	}
}
