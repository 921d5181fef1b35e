package parse

import (
	"strconv"

	"mincc/ir"
	"mincc/report"
	"mincc/token"
	"mincc/types"
)

// expr is a parsed expression. makeIL evaluates it against the symbol
// table, emitting instructions as needed, and returns a typed value
// whose Literal field is set when the expression folded to a
// compile-time constant.
type expr interface {
	exprRange() token.Range
	makeIL(e *emitter, c ctx) (*ir.Value, *report.CompilerError)
}

type numberExpr struct {
	tok token.Token
}

func (n *numberExpr) exprRange() token.Range { return n.tok.R }

func (n *numberExpr) makeIL(e *emitter, c ctx) (*ir.Value, *report.CompilerError) {
	val, err := strconv.ParseInt(n.tok.Val, 10, 64)
	if err != nil {
		return nil, report.Newf(n.tok.R, "invalid integer constant '%s'", n.tok)
	}
	v := e.il.NewTemp(types.CInt)
	e.il.RegisterLiteralVar(v, val)
	return v, nil
}

type identExpr struct {
	tok token.Token
}

func (n *identExpr) exprRange() token.Range { return n.tok.R }

func (n *identExpr) makeIL(e *emitter, c ctx) (*ir.Value, *report.CompilerError) {
	v, ok := e.st.Lookup(n.tok.Val)
	if !ok {
		return nil, report.Newf(n.tok.R, "use of undeclared identifier '%s'", n.tok.Val)
	}
	ty := v.Type
	// Array and function designators decay to pointers when used as
	// values.
	switch t := ty.(type) {
	case *types.Array:
		ty = &types.Pointer{To: t.Elem}
	case *types.Function:
		ty = &types.Pointer{To: t}
	}
	return &ir.Value{Type: ty, Var: v}, nil
}

type binExpr struct {
	op   token.Token
	l, r expr
}

func (n *binExpr) exprRange() token.Range {
	return token.RangeOf(n.l.exprRange(), n.r.exprRange())
}

func (n *binExpr) makeIL(e *emitter, c ctx) (*ir.Value, *report.CompilerError) {
	lv, err := n.l.makeIL(e, c)
	if err != nil {
		return nil, err
	}
	rv, err := n.r.makeIL(e, c)
	if err != nil {
		return nil, err
	}
	if !types.IsArith(lv.Type) || !types.IsArith(rv.Type) {
		return nil, report.Newf(n.exprRange(),
			"invalid operand types for '%s'", n.op)
	}
	if lv.Literal != nil && rv.Literal != nil {
		folded, ferr := foldBinOp(n.op, lv.Literal.Val, rv.Literal.Val)
		if ferr != nil {
			return nil, ferr
		}
		out := e.il.NewTemp(types.CInt)
		e.il.RegisterLiteralVar(out, folded)
		return out, nil
	}
	out := e.il.NewTemp(types.CInt)
	if e.il.InFunc() {
		e.il.Add(&ir.BinOp{Op: n.op.Kind, Dst: out, L: lv, R: rv})
	}
	return out, nil
}

func foldBinOp(op token.Token, l, r int64) (int64, *report.CompilerError) {
	switch op.Kind {
	case token.ADD:
		return l + r, nil
	case token.SUB:
		return l - r, nil
	case token.MUL:
		return l * r, nil
	case token.QUO, token.REM:
		if r == 0 {
			return 0, report.New("division by zero in constant expression", op.R)
		}
		if op.Kind == token.QUO {
			return l / r, nil
		}
		return l % r, nil
	default:
		panic("unreachable")
	}
}

type unaryExpr struct {
	op      token.Token
	operand expr
}

func (n *unaryExpr) exprRange() token.Range {
	return token.RangeOf(n.op.R, n.operand.exprRange())
}

func (n *unaryExpr) makeIL(e *emitter, c ctx) (*ir.Value, *report.CompilerError) {
	v, err := n.operand.makeIL(e, c)
	if err != nil {
		return nil, err
	}
	switch n.op.Kind {
	case token.ADD, token.SUB:
		if !types.IsArith(v.Type) {
			return nil, report.Newf(n.exprRange(),
				"invalid operand type for unary '%s'", n.op)
		}
		if v.Literal != nil {
			val := v.Literal.Val
			if n.op.Kind == token.SUB {
				val = -val
			}
			out := e.il.NewTemp(types.CInt)
			e.il.RegisterLiteralVar(out, val)
			return out, nil
		}
		if n.op.Kind == token.ADD {
			// Unary plus is a no-op on an already-evaluated value.
			return v, nil
		}
		return n.emitUnOp(e, v, v.Type), nil
	case token.AMP:
		if v.Var == nil {
			return nil, report.New("'&' requires an lvalue operand", n.exprRange())
		}
		return n.emitUnOp(e, v, &types.Pointer{To: v.Var.Type}), nil
	case token.MUL:
		ptr, ok := v.Type.(*types.Pointer)
		if !ok {
			return nil, report.New("cannot dereference non-pointer value", n.exprRange())
		}
		return n.emitUnOp(e, v, ptr.To), nil
	default:
		panic("unreachable")
	}
}

func (n *unaryExpr) emitUnOp(e *emitter, src *ir.Value, out types.CType) *ir.Value {
	dst := e.il.NewTemp(out)
	if e.il.InFunc() {
		e.il.Add(&ir.UnOp{Op: n.op.Kind, Dst: dst, Src: src})
	}
	return dst
}

type assignExpr struct {
	op   token.Token
	l, r expr
}

func (n *assignExpr) exprRange() token.Range {
	return token.RangeOf(n.l.exprRange(), n.r.exprRange())
}

func (n *assignExpr) makeIL(e *emitter, c ctx) (*ir.Value, *report.CompilerError) {
	rv, err := n.r.makeIL(e, c)
	if err != nil {
		return nil, err
	}
	lident, ok := n.l.(*identExpr)
	if !ok {
		return nil, report.New("expression on left of '=' is not assignable", n.l.exprRange())
	}
	v, found := e.st.Lookup(lident.tok.Val)
	if !found {
		return nil, report.Newf(lident.tok.R,
			"use of undeclared identifier '%s'", lident.tok.Val)
	}
	if v.Type.IsConst() {
		return nil, report.Newf(lident.tok.R,
			"cannot assign to const-qualified variable '%s'", v.Name)
	}
	if !types.IsScalar(v.Type) {
		return nil, report.Newf(lident.tok.R,
			"'%s' is not of assignable type", v.Name)
	}
	dst := &ir.Value{Type: v.Type, Var: v}
	if e.il.InFunc() {
		e.il.Add(&ir.Set{Dst: dst, Src: rv})
	}
	return &ir.Value{Type: v.Type, Var: v}, nil
}

// Expression grammar, from lowest to highest precedence. Each level
// returns the parsed node and the index one past it.

func (p *parser) parseExpression(index int) (expr, int, *parseError) {
	return p.parseAssignment(index)
}

func (p *parser) parseAssignment(index int) (expr, int, *parseError) {
	l, index, err := p.parseAdditive(index)
	if err != nil {
		return nil, 0, err
	}
	if p.tokenIs(index, token.ASSIGN) {
		op := p.tokens[index]
		r, next, err := p.parseAssignment(index + 1)
		if err != nil {
			return nil, 0, err
		}
		return &assignExpr{op: op, l: l, r: r}, next, nil
	}
	return l, index, nil
}

func (p *parser) parseAdditive(index int) (expr, int, *parseError) {
	l, index, err := p.parseMultiplicative(index)
	if err != nil {
		return nil, 0, err
	}
	for p.tokenIs(index, token.ADD) || p.tokenIs(index, token.SUB) {
		op := p.tokens[index]
		r, next, err := p.parseMultiplicative(index + 1)
		if err != nil {
			return nil, 0, err
		}
		l, index = &binExpr{op: op, l: l, r: r}, next
	}
	return l, index, nil
}

func (p *parser) parseMultiplicative(index int) (expr, int, *parseError) {
	l, index, err := p.parseUnary(index)
	if err != nil {
		return nil, 0, err
	}
	for p.tokenIs(index, token.MUL) || p.tokenIs(index, token.QUO) ||
		p.tokenIs(index, token.REM) {
		op := p.tokens[index]
		r, next, err := p.parseUnary(index + 1)
		if err != nil {
			return nil, 0, err
		}
		l, index = &binExpr{op: op, l: l, r: r}, next
	}
	return l, index, nil
}

func (p *parser) parseUnary(index int) (expr, int, *parseError) {
	switch {
	case p.tokenIs(index, token.ADD), p.tokenIs(index, token.SUB),
		p.tokenIs(index, token.AMP), p.tokenIs(index, token.MUL):
		op := p.tokens[index]
		operand, next, err := p.parseUnary(index + 1)
		if err != nil {
			return nil, 0, err
		}
		return &unaryExpr{op: op, operand: operand}, next, nil
	default:
		return p.parsePrimary(index)
	}
}

func (p *parser) parsePrimary(index int) (expr, int, *parseError) {
	switch {
	case p.tokenIs(index, token.IDENT):
		return &identExpr{tok: p.tokens[index]}, index + 1, nil
	case p.tokenIs(index, token.INT_CONSTANT), p.tokenIs(index, token.CHAR_CONSTANT):
		// Char constants carry their decoded value and evaluate as
		// int constants.
		return &numberExpr{tok: p.tokens[index]}, index + 1, nil
	case p.tokenIs(index, token.LPAREN):
		inner, next, err := p.parseExpression(index + 1)
		if err != nil {
			return nil, 0, err
		}
		next, err = p.matchToken(next, token.RPAREN)
		if err != nil {
			return nil, 0, err
		}
		return inner, next, nil
	default:
		return nil, 0, p.errAt("expected expression", index)
	}
}
