// Package thslc implements a single-pass, ahead-of-time compiler for
// THSL, a C-like shading language, targeting binary SPIR-V. See
// SPEC_FULL.md for the full language and CLI surface.
package thslc

import (
	"fmt"

	"github.com/thsl-lang/thslc/diag"
	"github.com/thsl-lang/thslc/ir"
	"github.com/thsl-lang/thslc/parser"
	"github.com/thsl-lang/thslc/pp"
	"github.com/thsl-lang/thslc/sema"
	"github.com/thsl-lang/thslc/source"
	"github.com/thsl-lang/thslc/spirv"
	"github.com/thsl-lang/thslc/token"
)

// Options configures one compilation run.
type Options struct {
	// Stage selects the entry point's execution model (vertex XOR
	// fragment); required.
	Stage ir.ShaderStage

	IncludePaths        []string
	Defines             []pp.Define
	PreprocessorOnly    bool // -pp: stop after macro expansion
	StopOnError         bool // -soE: abort tokenizing at the first lexical error
	DebugInfo           bool // -eDI
	DefaultFloatIsFP64  bool // -deffp64
	DisableImplicitConv bool // -moIMP
}

// Result holds the outcome of a compilation run.
type Result struct {
	// PreprocessedSource is populated only when Options.PreprocessorOnly
	// is set; SPIRV is empty in that case.
	PreprocessedSource string
	SPIRV              []byte
}

// Compile runs the full pipeline — preprocessor, tokenizer, parser,
// semantic analysis, SPIR-V generation — over the file at path.
func Compile(path string, opts Options, sink diag.Sink) (Result, error) {
	lines, err := source.Load(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}

	expanded := pp.Process(lines, pp.Options{
		IncludePaths: opts.IncludePaths,
		Predefined:   opts.Defines,
	}, sink)
	if sink.HasErrors() {
		return Result{}, fmt.Errorf("preprocessing failed")
	}

	if opts.PreprocessorOnly {
		return Result{PreprocessedSource: source.Join(expanded)}, nil
	}

	lexer := token.NewLexer(path, source.Join(expanded), sink).StopOnError(opts.StopOnError)
	tokens := lexer.Tokenize()
	if sink.HasErrors() {
		return Result{}, fmt.Errorf("tokenizing failed")
	}

	p := parser.New(tokens, sink)
	mod := p.Parse()
	if sink.HasErrors() {
		return Result{}, fmt.Errorf("parsing failed")
	}

	irModule, err := sema.Analyze(mod, sema.Options{
		Stage:               opts.Stage,
		ImplicitConversions: !opts.DisableImplicitConv,
		DefaultFloatIsFP64:  opts.DefaultFloatIsFP64,
	}, sink)
	if err != nil {
		return Result{}, err
	}

	if validationErrs, err := ir.Validate(irModule); err != nil {
		return Result{}, fmt.Errorf("internal error: validating generated IR: %w", err)
	} else if len(validationErrs) > 0 {
		return Result{}, fmt.Errorf("internal error: generated IR failed validation: %v", validationErrs[0])
	}

	backend := spirv.NewBackend(spirv.Options{
		Version: spirv.Version1_3,
		Debug:   opts.DebugInfo,
	})
	bytes, err := backend.Compile(irModule)
	if err != nil {
		return Result{}, fmt.Errorf("SPIR-V generation failed: %w", err)
	}

	return Result{SPIRV: bytes}, nil
}
