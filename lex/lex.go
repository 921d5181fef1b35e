// Package lex converts C source text into the token sequence consumed
// by the parser.
package lex

import (
	"fmt"
	"strconv"
	"strings"

	"mincc/report"
	"mincc/token"
)

type lexer struct {
	file string
	errs *report.Collector
	toks []token.Token

	line    string
	lineno  int
	col     int // 0-based index into line
	inCmt   bool
}

// Tokenize scans src and returns its tokens. Lexical errors are added
// to errs; scanning continues past them so later errors still surface.
func Tokenize(src, file string, errs *report.Collector) []token.Token {
	l := &lexer{file: file, errs: errs}
	for i, line := range strings.Split(src, "\n") {
		l.line = line
		l.lineno = i + 1
		l.col = 0
		l.lexLine()
	}
	return l.toks
}

func (l *lexer) pos(col int) token.Pos {
	return token.Pos{File: l.file, Line: l.lineno, Col: col + 1, FullLine: l.line}
}

func (l *lexer) rangeFrom(start int) token.Range {
	end := l.col - 1
	if end < start {
		end = start
	}
	return token.Range{Start: l.pos(start), End: l.pos(end)}
}

func (l *lexer) emit(k token.Kind, val, rep string, start int) {
	l.toks = append(l.toks, token.Token{
		Kind: k, Val: val, Rep: rep, R: l.rangeFrom(start),
	})
}

func (l *lexer) error(desc string, start int) {
	l.errs.Add(report.New(desc, l.rangeFrom(start)))
}

func (l *lexer) peek(off int) byte {
	if l.col+off >= len(l.line) {
		return 0
	}
	return l.line[l.col+off]
}

func (l *lexer) lexLine() {
	for l.col < len(l.line) {
		c := l.line[l.col]
		switch {
		case l.inCmt:
			if c == '*' && l.peek(1) == '/' {
				l.inCmt = false
				l.col += 2
			} else {
				l.col++
			}
		case c == '/' && l.peek(1) == '*':
			l.inCmt = true
			l.col += 2
		case c == '/' && l.peek(1) == '/':
			return
		case c == ' ' || c == '\t' || c == '\r':
			l.col++
		case isIdentStart(c):
			l.lexIdent()
		case c >= '0' && c <= '9':
			l.lexNumber()
		case c == '\'':
			l.lexCharConstant()
		case c == '"':
			l.lexString()
		default:
			l.lexPunct()
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) lexIdent() {
	start := l.col
	for l.col < len(l.line) && isIdentCont(l.line[l.col]) {
		l.col++
	}
	word := l.line[start:l.col]
	if kw, ok := token.Keywords[word]; ok {
		l.emit(kw, "", word, start)
		return
	}
	l.emit(token.IDENT, word, "", start)
}

func (l *lexer) lexNumber() {
	start := l.col
	for l.col < len(l.line) && (isIdentCont(l.line[l.col])) {
		l.col++
	}
	text := l.line[start:l.col]
	// Base 0 accepts decimal, octal and hex spellings.
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		l.error(fmt.Sprintf("invalid integer constant '%s'", text), start)
		return
	}
	l.emit(token.INT_CONSTANT, strconv.FormatInt(v, 10), text, start)
}

func (l *lexer) lexCharConstant() {
	start := l.col
	l.col++ // opening quote
	v, ok := l.lexCharInner('\'')
	if !ok {
		return
	}
	if l.peek(0) != '\'' {
		l.error("missing terminating quote in character constant", start)
		return
	}
	l.col++
	l.emit(token.CHAR_CONSTANT, strconv.FormatInt(int64(v), 10),
		l.line[start:l.col], start)
}

func (l *lexer) lexString() {
	start := l.col
	l.col++ // opening quote
	var b strings.Builder
	for {
		c := l.peek(0)
		if c == 0 {
			l.error("missing terminating quote in string literal", start)
			return
		}
		if c == '"' {
			l.col++
			break
		}
		v, ok := l.lexCharInner('"')
		if !ok {
			return
		}
		b.WriteByte(v)
	}
	l.emit(token.STRING, b.String(), l.line[start:l.col], start)
}

// lexCharInner decodes one possibly-escaped character inside a quoted
// literal.
func (l *lexer) lexCharInner(quote byte) (byte, bool) {
	c := l.peek(0)
	if c == 0 {
		l.error("unexpected end of line in literal", l.col)
		return 0, false
	}
	if c != '\\' {
		l.col++
		return c, true
	}
	esc := l.peek(1)
	l.col += 2
	switch esc {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '\'', '"':
		return esc, true
	default:
		l.error(fmt.Sprintf("unrecognized escape sequence '\\%c'", esc), l.col-2)
		return 0, false
	}
}

var puncts = map[byte]token.Kind{
	'+': token.ADD,
	'-': token.SUB,
	'*': token.MUL,
	'/': token.QUO,
	'%': token.REM,
	'&': token.AMP,
	'=': token.ASSIGN,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACK,
	']': token.RBRACK,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	';': token.SEMICOLON,
}

func (l *lexer) lexPunct() {
	start := l.col
	c := l.line[l.col]
	if k, ok := puncts[c]; ok {
		l.col++
		l.emit(k, "", "", start)
		return
	}
	l.col++
	l.error(fmt.Sprintf("unrecognized character '%c'", c), start)
}
