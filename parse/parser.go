package parse

import (
	"mincc/ir"
	"mincc/report"
	"mincc/symtab"
	"mincc/token"
)

// Root is the parsed translation unit.
type Root struct {
	items []stmt
	r     token.Range
}

// Parse builds the AST for a whole token stream. When even outermost
// recovery fails, the furthest-progressed parse error is added to errs
// and nil is returned.
func Parse(tokens []token.Token, errs *report.Collector) *Root {
	p := newParser(tokens)
	root, _, err := p.parseRoot(0)
	if err != nil {
		errs.Add(p.bestErr.toCompilerError(tokens))
		return nil
	}
	return root
}

// parseRoot parses declarations until the tokens are exhausted. Any
// leftover input that matches no alternative is a hard parse error.
func (p *parser) parseRoot(index int) (*Root, int, *parseError) {
	start := index
	var items []stmt
	for {
		if item, next, err := p.parseFuncDefinition(index); err == nil {
			items = append(items, item)
			index = next
			continue
		}
		if item, next, err := p.parseDeclaration(index); err == nil {
			items = append(items, item)
			index = next
			continue
		}
		break
	}

	if index < len(p.tokens) {
		return nil, 0, p.errAt("unexpected token", index)
	}
	return &Root{items: items, r: p.rangeBetween(start, index)}, index, nil
}

// GenIL resolves every top-level declaration and emits its IL.
// Failures are collected per declaration so one bad declaration does
// not suppress diagnostics for the ones after it.
func (r *Root) GenIL(il *ir.Builder, st *symtab.Table, errs *report.Collector) {
	e := &emitter{il: il, st: st, errs: errs}
	c := ctx{}
	for _, item := range r.items {
		e.reportErr(item.makeIL(e, c.setGlobal(true)))
	}
}
