// Package source implements the line loader: splitting a UTF-8 source
// file into an ordered sequence of (text, file, line-number) triples.
package source

import (
	"os"
	"strings"
)

// Line is one line of source text, tagged with its originating file
// and 1-based line number. Lines survive for the whole compilation:
// the preprocessor rewrites the sequence (expanding includes, dropping
// directives) but every surviving or synthesized Line still carries
// the file/line it is diagnosed against.
type Line struct {
	Text string
	File string
	Num  uint32
}

// FromString splits s on line feed into Lines numbered from 1.
// Matches TheHolyCompiler's Line::GetLinesFromString: a plain split on
// "\n" with no special treatment of "\r\n" (a trailing "\r" is left on
// the line text, same as the original).
func FromString(s, file string) []Line {
	parts := strings.Split(s, "\n")
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = Line{Text: p, File: file, Num: uint32(i + 1)}
	}
	return lines
}

// Load reads path and splits it into Lines.
func Load(path string) ([]Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromString(string(data), path), nil
}

// Join renders Lines back to a single newline-joined string, e.g. for
// -pp (preprocessor-only) output.
func Join(lines []Line) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.Text)
	}
	return sb.String()
}
