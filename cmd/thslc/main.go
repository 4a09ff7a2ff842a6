// Command thslc is the THSL shader compiler CLI: it reads a single
// vertex- or fragment-stage source file and writes a binary SPIR-V
// module.
//
// Usage:
//
//	thslc -vertex -out=shader.spv shader.thsl
//	thslc -fragment -D=MAX_LIGHTS=4 -I=include shader.thsl
//	thslc -pp shader.thsl
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	thslc "github.com/thsl-lang/thslc"
	"github.com/thsl-lang/thslc/diag"
	"github.com/thsl-lang/thslc/ir"
	"github.com/thsl-lang/thslc/pp"
)

var (
	flagNoWarnings   bool
	flagStopOnError  bool
	flagDebugMsgs    bool
	flagDebugInfo    bool
	flagPPOnly       bool
	flagDefaultFP64  bool
	flagNoImplicit   bool
	flagVertex       bool
	flagFragment     bool
	flagDefines      string
	flagIncludePaths string
	flagOut          string
)

func main() {
	os.Args = normalizeSingleDashLongFlags(os.Args)
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// normalizeSingleDashLongFlags rewrites spec.md's single-dash long
// flags (-noW, -D=FOO, -out=PATH, ...) into the double-dash form
// pflag requires, leaving the program name and bare positional
// arguments untouched.
func normalizeSingleDashLongFlags(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if i == 0 || !strings.HasPrefix(a, "-") || strings.HasPrefix(a, "--") {
			out[i] = a
			continue
		}
		name := strings.TrimPrefix(a, "-")
		if len(name) <= 1 {
			out[i] = a
			continue
		}
		out[i] = "--" + name
	}
	return out
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thslc [flags] <input>",
		Short: "Compile a THSL shader to binary SPIR-V",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}

	fs := cmd.Flags()
	fs.BoolVar(&flagNoWarnings, "noW", false, "suppress warning diagnostics")
	fs.BoolVar(&flagStopOnError, "soE", false, "stop tokenizing at the first lexical error instead of collecting them all")
	fs.BoolVar(&flagDebugMsgs, "eD", false, "emit debug messages")
	fs.BoolVar(&flagDebugInfo, "eDI", false, "embed debug info in the SPIR-V module")
	fs.BoolVar(&flagPPOnly, "pp", false, "preprocess only; write expanded source to <out>.pp and stop")
	fs.BoolVar(&flagDefaultFP64, "deffp64", false, "default untyped floats to 64-bit")
	fs.BoolVar(&flagNoImplicit, "moIMP", false, "disable implicit scalar conversions")
	fs.BoolVar(&flagVertex, "vertex", false, "compile main() as a vertex stage entry point")
	fs.BoolVar(&flagFragment, "fragment", false, "compile main() as a fragment stage entry point")
	fs.StringVar(&flagDefines, "D", "", "comma-separated NAME or NAME=VALUE macro definitions")
	fs.StringVar(&flagIncludePaths, "I", "", "comma-separated include search directories")
	fs.StringVar(&flagOut, "out", "", "output SPIR-V path (default: stdout)")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	if flagVertex == flagFragment {
		return fmt.Errorf("exactly one of -vertex or -fragment must be given")
	}
	stage := ir.StageVertex
	if flagFragment {
		stage = ir.StageFragment
	}

	logger := buildLogger()
	defer logger.Sync() //nolint:errcheck
	sink := diag.NewZapSink(logger)

	opts := thslc.Options{
		Stage:               stage,
		IncludePaths:        splitList(flagIncludePaths),
		Defines:             parseDefines(flagDefines),
		PreprocessorOnly:    flagPPOnly,
		StopOnError:         flagStopOnError,
		DebugInfo:           flagDebugInfo,
		DefaultFloatIsFP64:  flagDefaultFP64,
		DisableImplicitConv: flagNoImplicit,
	}

	result, err := thslc.Compile(args[0], opts, sink)
	if err != nil {
		return err
	}

	if flagPPOnly {
		out := flagOut
		if out == "" {
			out = args[0]
		}
		return os.WriteFile(out+".pp", []byte(result.PreprocessedSource), 0o644)
	}

	if flagOut == "" {
		_, err := os.Stdout.Write(result.SPIRV)
		return err
	}
	return os.WriteFile(flagOut, result.SPIRV, 0o644)
}

func buildLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if flagNoWarnings {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	} else if !flagDebugMsgs {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseDefines(s string) []pp.Define {
	names := splitList(s)
	defines := make([]pp.Define, 0, len(names))
	for _, n := range names {
		if name, value, ok := strings.Cut(n, "="); ok {
			defines = append(defines, pp.Define{Name: name, Value: value})
		} else {
			defines = append(defines, pp.Define{Name: n})
		}
	}
	return defines
}
