package parse

import (
	"fmt"

	"mincc/report"
	"mincc/token"
)

// parseError is a parse-level failure raised while speculatively
// matching a grammar alternative. It is always recoverable by an
// enclosing alternative; only if every alternative dies is the
// furthest-progressed one surfaced as a diagnostic.
type parseError struct {
	msg   string
	index int
	after bool // describe the error relative to the preceding token
}

func (e *parseError) Error() string { return e.msg }

// toCompilerError renders the parse error against the token stream it
// was raised on.
func (e *parseError) toCompilerError(tokens []token.Token) *report.CompilerError {
	i := e.index
	if e.after {
		i--
	}
	if i >= len(tokens) {
		i = len(tokens) - 1
	}
	if i < 0 || len(tokens) == 0 {
		return report.New(e.msg, token.Range{})
	}
	tok := tokens[i]
	rel := "at"
	if e.after {
		rel = "after"
	}
	return report.Newf(tok.R, "%s %s '%s'", e.msg, rel, tok)
}

// parser holds the read-only token buffer and the best-effort furthest
// error. Parsing positions are explicit indices so a failed
// alternative leaves no state behind except the recorded best error.
type parser struct {
	tokens  []token.Token
	bestErr *parseError

	// typedef names visible at the current parse position, scoped so
	// block-local declarations shadow outer ones.
	symbols []map[string]bool
}

func newParser(tokens []token.Token) *parser {
	return &parser{
		tokens:  tokens,
		symbols: []map[string]bool{make(map[string]bool)},
	}
}

// logError records err as the best error seen so far. A later error
// replaces the recorded one only when it progressed strictly further,
// so the first-seen error wins exact-position ties.
func (p *parser) logError(err *parseError) {
	if p.bestErr == nil || err.index > p.bestErr.index {
		p.bestErr = err
	}
}

func (p *parser) errAt(msg string, index int) *parseError {
	err := &parseError{msg: msg, index: index}
	p.logError(err)
	return err
}

func (p *parser) errAfter(msg string, index int) *parseError {
	err := &parseError{msg: msg, index: index, after: true}
	p.logError(err)
	return err
}

func (p *parser) tokenIs(index int, kind token.Kind) bool {
	return index < len(p.tokens) && p.tokens[index].Kind == kind
}

func (p *parser) tokenIn(index int, kinds map[token.Kind]bool) bool {
	return index < len(p.tokens) && kinds[p.tokens[index].Kind]
}

// matchToken consumes one token of the given kind or fails with an
// "expected ..." error positioned after the previous token.
func (p *parser) matchToken(index int, kind token.Kind) (int, *parseError) {
	if p.tokenIs(index, kind) {
		return index + 1, nil
	}
	return 0, p.errAfter(fmt.Sprintf("expected %s", kind), index)
}

// rangeBetween spans tokens [start, end), falling back to the last
// token for positions at or past the end of input.
func (p *parser) rangeBetween(start, end int) token.Range {
	if len(p.tokens) == 0 {
		return token.Range{}
	}
	clamp := func(i int) int {
		if i >= len(p.tokens) {
			return len(p.tokens) - 1
		}
		if i < 0 {
			return 0
		}
		return i
	}
	return token.Range{
		Start: p.tokens[clamp(start)].R.Start,
		End:   p.tokens[clamp(end-1)].R.End,
	}
}

func (p *parser) openSymbolScope() {
	p.symbols = append(p.symbols, make(map[string]bool))
}

func (p *parser) closeSymbolScope() {
	p.symbols = p.symbols[:len(p.symbols)-1]
}

// addSymbol records whether a declared name is a typedef, so later
// parsing can tell type names from ordinary identifiers.
func (p *parser) addSymbol(name string, isTypedef bool) {
	p.symbols[len(p.symbols)-1][name] = isTypedef
}

func (p *parser) isTypedefName(tok token.Token) bool {
	for i := len(p.symbols) - 1; i >= 0; i-- {
		if isTd, ok := p.symbols[i][tok.Val]; ok {
			return isTd
		}
	}
	return false
}
