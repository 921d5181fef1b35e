// Package symtab implements the scoped symbol table used during
// declaration resolution: ordinary identifiers, typedef names and
// struct/union tags, with linkage and definition-state bookkeeping.
package symtab

import (
	"mincc/report"
	"mincc/token"
	"mincc/types"
)

type Linkage int

const (
	NoLinkage Linkage = iota
	Internal
	External
)

type DefState int

const (
	Undefined DefState = iota
	Tentative
	Defined
)

type Storage int

const (
	NoStorage Storage = iota
	StaticStorage
	AutomaticStorage
)

// Variable is the handle returned for a committed declaration. ArgIdx
// is set for function parameters bound to an argument slot.
type Variable struct {
	Name     string
	Type     types.CType
	DefState DefState
	Linkage  Linkage
	Storage  Storage
	ArgIdx   int
}

type scope struct {
	vars     map[string]*Variable
	typedefs map[string]types.CType
	tags     map[string]*types.StructUnion
}

func newScope() *scope {
	return &scope{
		vars:     make(map[string]*Variable),
		typedefs: make(map[string]types.CType),
		tags:     make(map[string]*types.StructUnion),
	}
}

// Table is a stack of scopes. Lookups walk outward; declarations in
// the current scope shadow outer ones.
type Table struct {
	scopes []*scope
}

func NewTable() *Table {
	return &Table{scopes: []*scope{newScope()}}
}

func (t *Table) NewScope() {
	t.scopes = append(t.scopes, newScope())
}

func (t *Table) EndScope() {
	if len(t.scopes) == 1 {
		panic("internal error: ending file scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *Table) current() *scope {
	return t.scopes[len(t.scopes)-1]
}

// AddVariable commits a resolved declaration. Redeclaration in the
// same scope is permitted only for names with linkage and a compatible
// type; the recorded definition state is upgraded, never downgraded.
func (t *Table) AddVariable(tok token.Token, ctype types.CType,
	defined DefState, linkage Linkage, storage Storage) (*Variable, *report.CompilerError) {

	name := tok.Val
	cur := t.current()
	if prev, ok := cur.vars[name]; ok {
		if linkage == NoLinkage || prev.Linkage == NoLinkage {
			return nil, report.Newf(tok.R, "redefinition of '%s'", name)
		}
		if !types.Compatible(prev.Type, ctype) {
			return nil, report.Newf(tok.R,
				"conflicting types for '%s'", name)
		}
		if prev.DefState == Defined && defined == Defined {
			return nil, report.Newf(tok.R, "redefinition of '%s'", name)
		}
		if defined > prev.DefState {
			prev.DefState = defined
		}
		prev.Type = compositeType(prev.Type, ctype)
		return prev, nil
	}
	v := &Variable{
		Name:     name,
		Type:     ctype,
		DefState: defined,
		Linkage:  linkage,
		Storage:  storage,
		ArgIdx:   -1,
	}
	cur.vars[name] = v
	return v, nil
}

// compositeType picks the more informative of two compatible types: a
// known array length wins over an unspecified one, a prototype over an
// old-style empty parameter list. Both arguments have already passed
// the compatibility check, so their variants agree.
func compositeType(prev, next types.CType) types.CType {
	switch p := prev.(type) {
	case *types.Array:
		if n := next.(*types.Array); p.N >= 0 && n.N < 0 {
			return prev
		}
	case *types.Function:
		if n := next.(*types.Function); !p.NoInfo && n.NoInfo {
			return prev
		}
	}
	return next
}

func (t *Table) Lookup(name string) (*Variable, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupLinkage returns the linkage previously recorded for an
// identifier, if any. Used for the extern-follows-prior-declaration
// rule in C11 6.2.2.
func (t *Table) LookupLinkage(tok token.Token) Linkage {
	if v, ok := t.Lookup(tok.Val); ok {
		return v.Linkage
	}
	return NoLinkage
}

func (t *Table) AddTypedef(tok token.Token, ctype types.CType) *report.CompilerError {
	cur := t.current()
	if prev, ok := cur.typedefs[tok.Val]; ok {
		if !types.Compatible(prev, ctype) {
			return report.Newf(tok.R,
				"typedef redeclared with different type: '%s'", tok.Val)
		}
		return nil
	}
	if _, ok := cur.vars[tok.Val]; ok {
		return report.Newf(tok.R, "redefinition of '%s'", tok.Val)
	}
	cur.typedefs[tok.Val] = ctype
	return nil
}

func (t *Table) LookupTypedef(tok token.Token) (types.CType, *report.CompilerError) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if ty, ok := t.scopes[i].typedefs[tok.Val]; ok {
			return ty, nil
		}
	}
	return nil, report.Newf(tok.R, "unrecognized type name: '%s'", tok.Val)
}

// LookupStructUnion resolves a tag, walking outward through enclosing
// scopes.
func (t *Table) LookupStructUnion(tag string) (*types.StructUnion, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if ty, ok := t.scopes[i].tags[tag]; ok {
			return ty, true
		}
	}
	return nil, false
}

// LookupStructUnionHere resolves a tag in the current scope only.
func (t *Table) LookupStructUnionHere(tag string) (*types.StructUnion, bool) {
	ty, ok := t.current().tags[tag]
	return ty, ok
}

func (t *Table) AddStructUnion(tag string, ty *types.StructUnion) {
	t.current().tags[tag] = ty
}
