package thslc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thsl-lang/thslc/diag"
	"github.com/thsl-lang/thslc/ir"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shader.thsl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing temp source: %v", err)
	}
	return path
}

func TestCompileVertexPassThroughProducesSPIRV(t *testing.T) {
	path := writeSource(t, `
layout(location=0) in vec4 pos;
out vec4 outPos = THSL_Position;

void main() {
	outPos = pos;
}`)
	sink := &diag.CollectingSink{}
	result, err := Compile(path, Options{Stage: ir.StageVertex}, sink)
	if err != nil {
		t.Fatalf("Compile: %v (diags: %v)", err, sink.Diags)
	}
	if len(result.SPIRV) == 0 {
		t.Fatal("expected non-empty SPIR-V binary")
	}
	// SPIR-V modules open with the fixed magic number 0x07230203.
	magic := uint32(result.SPIRV[0]) | uint32(result.SPIRV[1])<<8 | uint32(result.SPIRV[2])<<16 | uint32(result.SPIRV[3])<<24
	if magic != 0x07230203 {
		t.Fatalf("expected SPIR-V magic number, got %#x", magic)
	}
}

func TestCompilePreprocessorOnlyStopsBeforeCodegen(t *testing.T) {
	path := writeSource(t, `
#define WIDTH 4
int size = WIDTH;

void main() {
}`)
	sink := &diag.CollectingSink{}
	result, err := Compile(path, Options{Stage: ir.StageVertex, PreprocessorOnly: true}, sink)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(result.SPIRV) != 0 {
		t.Fatal("expected no SPIR-V output with -pp")
	}
	if result.PreprocessedSource == "" {
		t.Fatal("expected non-empty preprocessed source")
	}
}

func TestCompileMissingMainIsFatal(t *testing.T) {
	path := writeSource(t, `
void helper() {
}`)
	sink := &diag.CollectingSink{}
	_, err := Compile(path, Options{Stage: ir.StageVertex}, sink)
	if err == nil {
		t.Fatal("expected an error for a module with no main")
	}
}

func TestCompileUnknownFilePropagatesLoadError(t *testing.T) {
	sink := &diag.CollectingSink{}
	_, err := Compile(filepath.Join(t.TempDir(), "missing.thsl"), Options{Stage: ir.StageVertex}, sink)
	if err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}
