// Package token defines the THSL token model: tagged values with a
// kind, lexeme, source position, and (for values and built-in type
// keywords) the extra payload fields spec.md §3 requires.
package token

// Kind enumerates token kinds. Order mirrors the operator-precedence
// table in spec.md §4.4 where applicable, followed by punctuation,
// keywords, and literals.
type Kind uint16

const (
	EOF Kind = iota
	Error

	Ident
	Value // numeric literal; see Token.NumKind/Signed

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Dot

	// Assignment
	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign

	// Logical / comparison
	LogicalOr
	LogicalAnd
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual

	// Bitwise
	BitOr
	BitXor
	BitAnd
	BitNot
	ShiftLeft
	ShiftRight

	// Arithmetic
	Plus
	Minus
	Star
	Slash
	Percent
	Increment
	Decrement
	LogicalNot

	// Ternary (reserved, not evaluated; see spec.md §9)
	Question
	Colon

	// Control flow keywords
	KwIf
	KwElse
	KwFor
	KwWhile
	KwBreak
	KwContinue
	KwReturn
	KwSwitch
	KwCase
	KwDefault

	// Data / declaration keywords
	KwStruct
	KwLayout
	KwIn
	KwOut
	KwUniform
	KwConst

	// Built-in type keywords (shape fields populated on the Token)
	KwVoid
	KwBool
	KwInt
	KwUint
	KwFloat
	KwDouble
	KwVec
	KwMat
)

var names = map[Kind]string{
	EOF: "EOF", Error: "Error", Ident: "Ident", Value: "Value",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Comma: ",", Semicolon: ";", Dot: ".",
	Assign: "=", AddAssign: "+=", SubAssign: "-=", MulAssign: "*=", DivAssign: "/=",
	LogicalOr: "||", LogicalAnd: "&&", Equal: "==", NotEqual: "!=",
	Less: "<", LessEqual: "<=", Greater: ">", GreaterEqual: ">=",
	BitOr: "|", BitXor: "^", BitAnd: "&", BitNot: "~", ShiftLeft: "<<", ShiftRight: ">>",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Increment: "++", Decrement: "--", LogicalNot: "!",
	Question: "?", Colon: ":",
	KwIf: "if", KwElse: "else", KwFor: "for", KwWhile: "while",
	KwBreak: "break", KwContinue: "continue", KwReturn: "return",
	KwSwitch: "switch", KwCase: "case", KwDefault: "default",
	KwStruct: "struct", KwLayout: "layout", KwIn: "in", KwOut: "out",
	KwUniform: "uniform", KwConst: "const",
	KwVoid: "void", KwBool: "bool", KwInt: "int", KwUint: "uint",
	KwFloat: "float", KwDouble: "double", KwVec: "vec", KwMat: "mat",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "?"
}

// Keywords maps reserved identifier spellings to their Kind. Per
// spec.md §4.3, this table is the sole authority on keyword status; an
// identifier not present here is always Ident. vecN/matCxR spellings
// are handled separately (see rewriteKeywords) because the numeric
// shape suffix must populate Token.Rows/Columns.
var Keywords = map[string]Kind{
	"if": KwIf, "else": KwElse, "for": KwFor, "while": KwWhile,
	"break": KwBreak, "continue": KwContinue, "return": KwReturn,
	"switch": KwSwitch, "case": KwCase, "default": KwDefault,
	"struct": KwStruct, "layout": KwLayout, "in": KwIn, "out": KwOut,
	"uniform": KwUniform, "const": KwConst,
	"void": KwVoid, "bool": KwBool, "int": KwInt, "uint": KwUint,
	"float": KwFloat, "double": KwDouble,
}

// NumKind distinguishes integer from floating-point literals.
type NumKind uint8

const (
	NumInt NumKind = iota
	NumFloat
)

// Token is one lexical token. File/Line/Column are 1-based source
// positions. NumKind/Signed/IntValue/FloatValue are only meaningful
// when Kind == Value; Bits/Sign/Rows/Columns are only meaningful when
// Kind is a built-in type keyword (KwInt, KwFloat, KwVec, KwMat, ...).
type Token struct {
	Kind   Kind
	Lexeme string
	File   string
	Line   int
	Column int

	NumKind   NumKind
	Signed    bool
	IntValue  uint64
	FloatValue float64

	Bits    uint8 // scalar bit width, e.g. 32 for int/float, 64 for double
	Sign    bool  // true for signed integer shapes
	Rows    uint8 // vector size / matrix row count (0 if scalar)
	Columns uint8 // matrix column count (0 if not a matrix)
}
