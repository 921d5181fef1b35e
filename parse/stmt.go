package parse

import (
	"mincc/ir"
	"mincc/report"
	"mincc/token"
	"mincc/types"
)

type stmt interface {
	stmtRange() token.Range
	makeIL(e *emitter, c ctx) *report.CompilerError
}

type emptyStmt struct {
	r token.Range
}

func (s *emptyStmt) stmtRange() token.Range { return s.r }

func (s *emptyStmt) makeIL(e *emitter, c ctx) *report.CompilerError { return nil }

type exprStmt struct {
	expr expr
	r    token.Range
}

func (s *exprStmt) stmtRange() token.Range { return s.r }

func (s *exprStmt) makeIL(e *emitter, c ctx) *report.CompilerError {
	_, err := s.expr.makeIL(e, c)
	return err
}

type returnStmt struct {
	value expr
	r     token.Range
}

func (s *returnStmt) stmtRange() token.Range { return s.r }

func (s *returnStmt) makeIL(e *emitter, c ctx) *report.CompilerError {
	if s.value == nil {
		if c.ret != nil && !types.IsVoid(c.ret) {
			e.errs.Add(&report.CompilerError{
				Desc:    "missing return value in non-void function",
				Range:   s.r,
				Warning: true,
			})
		}
		e.il.Add(&ir.Return{})
		return nil
	}
	v, err := s.value.makeIL(e, c)
	if err != nil {
		return err
	}
	if c.ret != nil && types.IsVoid(c.ret) {
		return report.New("function with void return type cannot return value", s.r)
	}
	e.il.Add(&ir.Return{Val: v})
	return nil
}

// compoundStmt is a braced block. It opens its own lexical scope
// unless the caller (a function body) already established one, and
// isolates per-statement failures so later statements still resolve.
type compoundStmt struct {
	items []stmt
	r     token.Range
}

func (s *compoundStmt) stmtRange() token.Range { return s.r }

func (s *compoundStmt) makeIL(e *emitter, c ctx) *report.CompilerError {
	s.emit(e, c, false)
	return nil
}

func (s *compoundStmt) emit(e *emitter, c ctx, noScope bool) {
	if !noScope {
		e.st.NewScope()
		defer e.st.EndScope()
	}
	c = c.setGlobal(false)
	for _, item := range s.items {
		e.reportErr(item.makeIL(e, c))
	}
}

// declarationStmt is one declaration line, or a function definition
// when body is set.
type declarationStmt struct {
	root *declRoot
	body *compoundStmt
	r    token.Range
}

func (s *declarationStmt) stmtRange() token.Range { return s.r }

func (s *declarationStmt) makeIL(e *emitter, c ctx) *report.CompilerError {
	rv := &declResolver{e: e, c: c, body: s.body, r: s.r}
	infos, err := rv.getDeclInfos(s.root)
	if err != nil {
		return err
	}
	for _, info := range infos {
		e.reportErr(info.process(e, c))
	}
	return nil
}

// Statement grammar.

func (p *parser) parseStatement(index int) (stmt, int, *parseError) {
	switch {
	case p.tokenIs(index, token.LBRACE):
		blk, next, err := p.parseCompoundStatement(index)
		if err != nil {
			return nil, 0, err
		}
		return blk, next, nil
	case p.tokenIs(index, token.RETURN):
		return p.parseReturn(index)
	case p.tokenIs(index, token.SEMICOLON):
		return &emptyStmt{r: p.rangeBetween(index, index+1)}, index + 1, nil
	case p.looksLikeDeclaration(index):
		return p.parseDeclaration(index)
	default:
		return p.parseExprStatement(index)
	}
}

// looksLikeDeclaration decides whether a statement position starts a
// declaration: any specifier keyword, or an identifier the symbol
// table knows as a typedef name.
func (p *parser) looksLikeDeclaration(index int) bool {
	if index >= len(p.tokens) {
		return false
	}
	tok := p.tokens[index]
	if simpleTypeSpecs[tok.Kind] || storageSpecs[tok.Kind] || typeQuals[tok.Kind] ||
		tok.Kind == token.STRUCT || tok.Kind == token.UNION {
		return true
	}
	return tok.Kind == token.IDENT && p.isTypedefName(tok)
}

func (p *parser) parseCompoundStatement(index int) (*compoundStmt, int, *parseError) {
	start := index
	index, err := p.matchToken(index, token.LBRACE)
	if err != nil {
		return nil, 0, err
	}

	p.openSymbolScope()
	defer p.closeSymbolScope()

	var items []stmt
	for !p.tokenIs(index, token.RBRACE) {
		if index >= len(p.tokens) {
			return nil, 0, p.errAfter("expected closing brace", index)
		}
		item, next, err := p.parseStatement(index)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		index = next
	}
	index++
	return &compoundStmt{items: items, r: p.rangeBetween(start, index)}, index, nil
}

func (p *parser) parseReturn(index int) (stmt, int, *parseError) {
	start := index
	index++
	if p.tokenIs(index, token.SEMICOLON) {
		return &returnStmt{r: p.rangeBetween(start, index+1)}, index + 1, nil
	}
	value, index, err := p.parseExpression(index)
	if err != nil {
		return nil, 0, err
	}
	index, err = p.matchToken(index, token.SEMICOLON)
	if err != nil {
		return nil, 0, err
	}
	return &returnStmt{value: value, r: p.rangeBetween(start, index)}, index, nil
}

func (p *parser) parseExprStatement(index int) (stmt, int, *parseError) {
	start := index
	ex, index, err := p.parseExpression(index)
	if err != nil {
		return nil, 0, err
	}
	index, err = p.matchToken(index, token.SEMICOLON)
	if err != nil {
		return nil, 0, err
	}
	return &exprStmt{expr: ex, r: p.rangeBetween(start, index)}, index, nil
}

// parseDeclaration parses one declaration line without a body.
func (p *parser) parseDeclaration(index int) (stmt, int, *parseError) {
	start := index
	root, index, err := p.parseDeclsInits(index, true)
	if err != nil {
		return nil, 0, err
	}
	return &declarationStmt{root: root, r: p.rangeBetween(start, index)}, index, nil
}

// parseFuncDefinition parses a declaration whose single declarator is
// followed by a braced function body.
func (p *parser) parseFuncDefinition(index int) (stmt, int, *parseError) {
	start := index
	specs, su, index, err := p.parseDeclSpecifiers(index)
	if err != nil {
		return nil, 0, err
	}

	isTypedef := false
	for _, s := range specs {
		if s.Kind == token.TYPEDEF {
			isTypedef = true
		}
	}

	decl, index, err := p.parseDeclarator(index, isTypedef)
	if err != nil {
		return nil, 0, err
	}

	body, index, err := p.parseCompoundStatement(index)
	if err != nil {
		return nil, 0, err
	}

	root := &declRoot{
		specs: specs,
		su:    su,
		decls: []declNode{decl},
		inits: []expr{nil},
		r:     p.rangeBetween(start, index),
	}
	return &declarationStmt{root: root, body: body, r: root.r}, index, nil
}
