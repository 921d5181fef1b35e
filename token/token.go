// Package token defines the lexical tokens of the C subset and their
// source positions.
package token

import "fmt"

type Kind uint32

// The list of tokens. Single char tokens are themselves.
const (
	ADD       Kind = '+'
	SUB       Kind = '-'
	MUL       Kind = '*'
	QUO       Kind = '/'
	REM       Kind = '%'
	AMP       Kind = '&'
	ASSIGN    Kind = '='
	LPAREN    Kind = '('
	RPAREN    Kind = ')'
	LBRACK    Kind = '['
	RBRACK    Kind = ']'
	LBRACE    Kind = '{'
	RBRACE    Kind = '}'
	COMMA     Kind = ','
	SEMICOLON Kind = ';'

	ERROR Kind = 10000 + iota
	EOF

	// Identifiers and literal classes.
	IDENT
	INT_CONSTANT
	CHAR_CONSTANT
	STRING

	// Keywords.
	VOID
	BOOL
	CHAR
	SHORT
	INT
	LONG
	SIGNED
	UNSIGNED
	STRUCT
	UNION
	CONST
	AUTO
	STATIC
	EXTERN
	TYPEDEF
	RETURN
)

var kindToStr = map[Kind]string{
	EOF:           "EOF",
	IDENT:         "ident",
	INT_CONSTANT:  "intconst",
	CHAR_CONSTANT: "charconst",
	STRING:        "string",
	VOID:          "void",
	BOOL:          "_Bool",
	CHAR:          "char",
	SHORT:         "short",
	INT:           "int",
	LONG:          "long",
	SIGNED:        "signed",
	UNSIGNED:      "unsigned",
	STRUCT:        "struct",
	UNION:         "union",
	CONST:         "const",
	AUTO:          "auto",
	STATIC:        "static",
	EXTERN:        "extern",
	TYPEDEF:       "typedef",
	RETURN:        "return",
}

var Keywords = map[string]Kind{
	"void":     VOID,
	"_Bool":    BOOL,
	"char":     CHAR,
	"short":    SHORT,
	"int":      INT,
	"long":     LONG,
	"signed":   SIGNED,
	"unsigned": UNSIGNED,
	"struct":   STRUCT,
	"union":    UNION,
	"const":    CONST,
	"auto":     AUTO,
	"static":   STATIC,
	"extern":   EXTERN,
	"typedef":  TYPEDEF,
	"return":   RETURN,
}

func (k Kind) String() string {
	if s, ok := kindToStr[k]; ok {
		return s
	}
	if k < 128 {
		return fmt.Sprintf("'%c'", rune(k))
	}
	return "Unknown"
}

// Pos is a point in a source file. FullLine retains the complete
// source line for caret-style diagnostics.
type Pos struct {
	File     string
	Line     int
	Col      int
	FullLine string
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Range is a span of source text, inclusive of both endpoints.
type Range struct {
	Start Pos
	End   Pos
}

func RangeOf(start, end Range) Range {
	return Range{Start: start.Start, End: end.End}
}

// Token is a grouping of characters that provide semantic meaning in a
// C program. Val is the semantic content (identifier name, decoded
// integer text); Rep is the original spelling when it differs.
type Token struct {
	Kind Kind
	Val  string
	Rep  string
	R    Range
}

func (t Token) String() string {
	if t.Rep != "" {
		return t.Rep
	}
	if t.Val != "" {
		return t.Val
	}
	return t.Kind.String()
}
