// Package pp implements the THSL preprocessor: comment stripping,
// #include/#define/#undef/#if family directives, #message/#error, and
// object-like macro expansion to a fixed point.
package pp

import (
	"path/filepath"
	"strings"

	"github.com/thsl-lang/thslc/diag"
	"github.com/thsl-lang/thslc/source"
)

// Define is a predefined macro supplied from the command line (-D=NAME
// or -D=NAME=VALUE).
type Define struct {
	Name  string
	Value string
}

// Options configures one preprocessing run.
type Options struct {
	IncludePaths []string
	Predefined   []Define
	ReadFile     func(path string) (string, error) // overridable for tests
}

// Process expands includes and macros and resolves conditionals,
// returning the directive-free Lines equivalent to the module, per
// spec.md §4.2. It reports fatal diagnostics on sink and returns early
// (possibly with a partial result) once sink.HasErrors().
func Process(lines []source.Line, opts Options, sink diag.Sink) []source.Line {
	p := &processor{
		opts:    opts,
		sink:    sink,
		macros:  newMacroTable(),
		visited: make(map[string]bool),
	}
	for _, d := range opts.Predefined {
		p.macros.Define(d.Name, d.Value)
	}
	return p.run(stripComments(lines, sink))
}

type processor struct {
	opts    Options
	sink    diag.Sink
	macros  *macroTable
	visited map[string]bool // absolute paths already #included
}

// stripComments removes /* ... */ and // ... comments per spec.md §4.2:
// a block comment's span is replaced by as many newlines as it
// contained (to preserve line numbers), and an unterminated block
// comment is fatal. Grounded on TheHolyCompiler's
// PreProcessor::RemoveComments.
func stripComments(lines []source.Line, sink diag.Sink) []source.Line {
	text := source.Join(lines)
	file := ""
	if len(lines) > 0 {
		file = lines[0].File
	}

	var out strings.Builder
	i := 0
	for i < len(text) {
		if i+1 < len(text) && text[i] == '/' && text[i+1] == '*' {
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				line, col := lineColAt(text, i)
				diag.Reportf(sink, diag.Error, file, line, col, "unterminated block comment")
				break
			}
			span := text[i : i+2+end+2]
			out.WriteString(strings.Repeat("\n", strings.Count(span, "\n")))
			i += 2 + end + 2
			continue
		}
		if i+1 < len(text) && text[i] == '/' && text[i+1] == '/' {
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				i = len(text)
				continue
			}
			i += end
			continue
		}
		out.WriteByte(text[i])
		i++
	}
	return source.FromString(out.String(), file)
}

func lineColAt(text string, idx int) (line, col int) {
	line = 1
	lastNL := -1
	for i := 0; i < idx && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			lastNL = i
		}
	}
	col = idx - lastNL
	return
}

func (p *processor) err(l source.Line, col int, format string, args ...any) {
	diag.Reportf(p.sink, diag.Error, l.File, int(l.Num), col, format, args...)
}

func (p *processor) warn(l source.Line, col int, format string, args ...any) {
	diag.Reportf(p.sink, diag.Warning, l.File, int(l.Num), col, format, args...)
}

func (p *processor) run(lines []source.Line) []source.Line {
	i := 0
	for i < len(lines) && !p.sink.HasErrors() {
		l := lines[i]
		trimmed := strings.TrimSpace(l.Text)
		switch {
		case strings.HasPrefix(trimmed, "#include"):
			lines = p.processInclude(lines, i)
			continue // re-examine index i, now the first included line (or next line)
		case strings.HasPrefix(trimmed, "#define"):
			p.processDefine(l)
			lines = removeAt(lines, i)
			continue
		case strings.HasPrefix(trimmed, "#undef"):
			p.processUndef(l)
			lines = removeAt(lines, i)
			continue
		case strings.HasPrefix(trimmed, "#ifdef"):
			lines = p.processIf(lines, i, true)
			continue
		case strings.HasPrefix(trimmed, "#if"):
			lines = p.processIf(lines, i, false)
			continue
		case strings.HasPrefix(trimmed, "#message"):
			p.processMessage(l, false)
			lines = removeAt(lines, i)
			continue
		case strings.HasPrefix(trimmed, "#error"):
			p.processMessage(l, true)
			lines = removeAt(lines, i)
			continue
		case strings.HasPrefix(trimmed, "#elif"), strings.HasPrefix(trimmed, "#else"), strings.HasPrefix(trimmed, "#endif"):
			// Orphaned: processIf always consumes these together with
			// the #if/#ifdef that opened them. Reaching one here means
			// it was never opened.
			p.err(l, 1, "%s without matching #if", strings.Fields(trimmed)[0])
			lines = removeAt(lines, i)
			continue
		}
		lines[i].Text = p.expandMacros(l.Text)
		i++
	}
	return lines
}

func removeAt(lines []source.Line, i int) []source.Line {
	return append(lines[:i], lines[i+1:]...)
}

func removeRange(lines []source.Line, from, to int) []source.Line {
	// inclusive [from, to]
	return append(lines[:from], lines[to+1:]...)
}

func directiveArg(text, directive string) string {
	idx := strings.Index(text, directive)
	rest := text[idx+len(directive):]
	return strings.TrimSpace(rest)
}

func (p *processor) processInclude(lines []source.Line, i int) []source.Line {
	l := lines[i]
	arg := directiveArg(l.Text, "#include")
	start := strings.IndexByte(arg, '<')
	end := strings.IndexByte(arg, '>')
	if start < 0 || end < 0 || end < start {
		start = strings.IndexByte(arg, '"')
		end = strings.LastIndexByte(arg, '"')
	}
	if start < 0 || end < 0 || end <= start {
		p.err(l, 1, "malformed #include directive")
		return removeAt(lines, i)
	}
	path := arg[start+1 : end]

	resolved, found := p.resolveInclude(path, l.File)
	if !found {
		p.err(l, 1, "include file %q not found", path)
		return removeAt(lines, i)
	}
	if p.visited[resolved] {
		diag.Reportf(p.sink, diag.Debug, l.File, int(l.Num), 1, "include %q already included, skipping", path)
		return removeAt(lines, i)
	}
	p.visited[resolved] = true

	text, err := p.readFile(resolved)
	if err != nil {
		p.err(l, 1, "include file %q not found", path)
		return removeAt(lines, i)
	}
	included := stripComments(source.FromString(text, resolved), p.sink)

	out := make([]source.Line, 0, len(lines)-1+len(included))
	out = append(out, lines[:i]...)
	out = append(out, included...)
	out = append(out, lines[i+1:]...)
	return out
}

func (p *processor) readFile(path string) (string, error) {
	if p.opts.ReadFile != nil {
		return p.opts.ReadFile(path)
	}
	ls, err := source.Load(path)
	if err != nil {
		return "", err
	}
	return source.Join(ls), nil
}

func (p *processor) resolveInclude(path, includingFile string) (resolved string, found bool) {
	candidates := []string{filepath.Join(filepath.Dir(includingFile), path)}
	for _, dir := range p.opts.IncludePaths {
		candidates = append(candidates, filepath.Join(dir, path))
	}
	for _, c := range candidates {
		if _, err := p.readFile(c); err == nil {
			return c, true
		}
	}
	return "", false
}

func (p *processor) processDefine(l source.Line) {
	arg := directiveArg(l.Text, "#define")
	sp := strings.IndexAny(arg, " \t")
	var name, value string
	if sp < 0 {
		name = arg
	} else {
		name = arg[:sp]
		value = strings.TrimSpace(arg[sp+1:])
	}
	if name == "" {
		p.err(l, 1, "malformed #define directive")
		return
	}
	if p.macros.Define(name, value) {
		p.warn(l, 1, "macro %q redefined", name)
	}
}

func (p *processor) processUndef(l source.Line) {
	name := directiveArg(l.Text, "#undef")
	if !p.macros.Undef(name) {
		p.warn(l, 1, "#undef of undefined macro %q", name)
	}
}

func (p *processor) processMessage(l source.Line, isError bool) {
	text := l.Text
	start := strings.IndexByte(text, '"')
	if start < 0 {
		p.warn(l, 1, `invalid #message/#error syntax, expected #message "text"`)
		return
	}
	end := strings.IndexByte(text[start+1:], '"')
	if end < 0 {
		p.warn(l, 1, "message has no closing quote")
		return
	}
	msg := text[start+1 : start+1+end]
	if isError {
		p.err(l, 1, "%s", msg)
	} else {
		diag.Reportf(p.sink, diag.Info, l.File, int(l.Num), 1, "%s", msg)
	}
}

// processIf resolves #if/#ifdef ... #elif ... #else ... #endif, per
// spec.md §4.2: find the matching #endif at the same nesting level,
// evaluate #if/#elif branches left to right, keep exactly one branch.
func (p *processor) processIf(lines []source.Line, i int, ifdef bool) []source.Line {
	l := lines[i]
	endif := findMatching(lines, i+1, "#endif")
	if endif < 0 {
		p.err(l, 1, "missing #endif directive")
		return removeAt(lines, i)
	}

	branches := splitBranches(lines, i, endif)

	cond := p.evalCondition(l, ifdef)
	if cond {
		// Keep branches[0]'s body, drop the rest (including all
		// directive lines).
		body := lines[branches[0].bodyStart:branches[0].bodyEnd]
		return spliceBody(lines, i, endif, body)
	}
	for bi := 1; bi < len(branches); bi++ {
		b := branches[bi]
		keep := b.isElse
		if !keep {
			keep = p.evalElif(lines[b.directiveLine])
		}
		if keep {
			body := lines[b.bodyStart:b.bodyEnd]
			return spliceBody(lines, i, endif, body)
		}
	}
	return spliceBody(lines, i, endif, nil)
}

type ifBranch struct {
	directiveLine int // index of #if/#elif/#else
	bodyStart     int
	bodyEnd       int // exclusive
	isElse        bool
}

// splitBranches walks from the #if/#ifdef at `start` to `endif` and
// records each #elif/#else branch's body range, tracking nesting so
// nested #if blocks are not mistaken for this level's branches.
func splitBranches(lines []source.Line, start, endif int) []ifBranch {
	branches := []ifBranch{{directiveLine: start, bodyStart: start + 1}}
	depth := 0
	for i := start + 1; i < endif; i++ {
		t := strings.TrimSpace(lines[i].Text)
		switch {
		case strings.HasPrefix(t, "#if"):
			depth++
		case strings.HasPrefix(t, "#endif"):
			depth--
		case depth == 0 && strings.HasPrefix(t, "#elif"):
			branches[len(branches)-1].bodyEnd = i
			branches = append(branches, ifBranch{directiveLine: i, bodyStart: i + 1})
		case depth == 0 && strings.HasPrefix(t, "#else"):
			branches[len(branches)-1].bodyEnd = i
			branches = append(branches, ifBranch{directiveLine: i, bodyStart: i + 1, isElse: true})
		}
	}
	branches[len(branches)-1].bodyEnd = endif
	return branches
}

// findMatching finds the index of the next line starting with
// directive at the same nesting depth as the caller (depth 0), used
// here to locate the #endif that matches an #if/#ifdef.
func findMatching(lines []source.Line, from int, directive string) int {
	depth := 0
	for i := from; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i].Text)
		if strings.HasPrefix(t, "#if") {
			depth++
			continue
		}
		if strings.HasPrefix(t, directive) {
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func spliceBody(lines []source.Line, start, endif int, body []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines)-(endif-start+1)+len(body))
	out = append(out, lines[:start]...)
	out = append(out, body...)
	out = append(out, lines[endif+1:]...)
	return out
}

func (p *processor) evalCondition(l source.Line, ifdef bool) bool {
	if ifdef {
		name := directiveArg(l.Text, "#ifdef")
		return p.macros.IsDefined(strings.TrimSpace(name))
	}
	expr := directiveArg(l.Text, "#if")
	return p.evalExpr(l, expr) != 0
}

func (p *processor) evalElif(l source.Line) bool {
	expr := directiveArg(l.Text, "#elif")
	return p.evalExpr(l, expr) != 0
}

func (p *processor) evalExpr(l source.Line, expr string) uint64 {
	ev := newEvaluator(expr, p.macros, func(format string, args ...any) {
		p.err(l, 1, format, args...)
	})
	return ev.Eval()
}

// expandMacros performs whole-word object-like macro substitution to a
// fixed point on the non-directive portion of a line.
func (p *processor) expandMacros(text string) string {
	for iter := 0; iter < 64; iter++ {
		replaced, changed := expandOnePass(text, p.macros)
		if !changed {
			return replaced
		}
		text = replaced
	}
	return text
}

func expandOnePass(text string, macros *macroTable) (string, bool) {
	var out strings.Builder
	changed := false
	i := 0
	for i < len(text) {
		c := text[i]
		if isIdentStart(c) {
			start := i
			for i < len(text) && isIdentCont(text[i]) {
				i++
			}
			word := text[start:i]
			if val, ok := macros.Value(word); ok {
				out.WriteString(val)
				changed = true
			} else {
				out.WriteString(word)
			}
			continue
		}
		out.WriteByte(c)
		i++
	}
	return out.String(), changed
}
