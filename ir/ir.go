// Package ir holds the intermediate representation the front end emits
// for declarations and function bodies: typed values, a small
// instruction set, and a per-function code buffer.
package ir

import (
	"fmt"
	"io"

	"mincc/symtab"
	"mincc/token"
	"mincc/types"
)

// Literal is a compile-time integer constant.
type Literal struct {
	Val int64
}

// Value is a typed IL operand. Literal is set when the value is a
// compile-time constant; Var is set when it names storage.
type Value struct {
	Type    types.CType
	Literal *Literal
	Var     *symtab.Variable
	id      int
}

func (v *Value) String() string {
	switch {
	case v.Literal != nil:
		return fmt.Sprintf("%d", v.Literal.Val)
	case v.Var != nil:
		return v.Var.Name
	default:
		return fmt.Sprintf("t%d", v.id)
	}
}

type Instr interface {
	String() string
}

// LoadArg binds a function parameter to its argument slot.
type LoadArg struct {
	Dst *Value
	Idx int
}

func (i *LoadArg) String() string {
	return fmt.Sprintf("%s = arg %d", i.Dst, i.Idx)
}

// Set stores Src into the direct storage location of Dst.
type Set struct {
	Dst *Value
	Src *Value
}

func (i *Set) String() string {
	return fmt.Sprintf("%s = %s", i.Dst, i.Src)
}

// UnOp applies a unary operator to Src: negation, address-of or
// dereference.
type UnOp struct {
	Op  token.Kind
	Dst *Value
	Src *Value
}

func (i *UnOp) String() string {
	return fmt.Sprintf("%s = %s %s", i.Dst, i.Op, i.Src)
}

type BinOp struct {
	Op   token.Kind
	Dst  *Value
	L, R *Value
}

func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s %s", i.Dst, i.L, i.Op, i.R)
}

// Return with a nil Val is a bare return.
type Return struct {
	Val *Value
}

func (i *Return) String() string {
	if i.Val == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", i.Val)
}

type Func struct {
	Name   string
	Instrs []Instr
}

// StaticInit records the initial value of a variable with static
// storage duration. A nil Val zero-initializes.
type StaticInit struct {
	Var *symtab.Variable
	Val *int64
}

// Builder accumulates emitted IL. It is append-only from the front
// end's perspective.
type Builder struct {
	Funcs       []*Func
	StaticInits []StaticInit
	cur         *Func
	nextID      int
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) StartFunc(name string) {
	b.cur = &Func{Name: name}
	b.Funcs = append(b.Funcs, b.cur)
}

func (b *Builder) Add(instr Instr) {
	if b.cur == nil {
		panic("internal error: instruction emitted outside a function")
	}
	b.cur.Instrs = append(b.cur.Instrs, instr)
}

// InFunc reports whether a function is currently open for emission.
func (b *Builder) InFunc() bool {
	return b.cur != nil
}

// AlwaysReturns reports whether control cannot fall off the end of the
// current function.
func (b *Builder) AlwaysReturns() bool {
	if b.cur == nil || len(b.cur.Instrs) == 0 {
		return false
	}
	_, ok := b.cur.Instrs[len(b.cur.Instrs)-1].(*Return)
	return ok
}

// NewTemp allocates a fresh unnamed value of the given type.
func (b *Builder) NewTemp(ctype types.CType) *Value {
	b.nextID++
	return &Value{Type: ctype, id: b.nextID}
}

// RegisterLiteralVar marks v as holding the compile-time constant val.
func (b *Builder) RegisterLiteralVar(v *Value, val int64) {
	v.Literal = &Literal{Val: val}
}

// StaticInitialize records the initial value for a static-duration
// variable.
func (b *Builder) StaticInitialize(v *symtab.Variable, val *int64) {
	b.StaticInits = append(b.StaticInits, StaticInit{Var: v, Val: val})
}

// WriteTo dumps the emitted IL in a readable single-line-per
// instruction form.
func (b *Builder) WriteTo(w io.Writer) {
	for _, si := range b.StaticInits {
		if si.Val != nil {
			fmt.Fprintf(w, "static %s = %d\n", si.Var.Name, *si.Val)
		} else {
			fmt.Fprintf(w, "static %s = 0\n", si.Var.Name)
		}
	}
	for _, f := range b.Funcs {
		fmt.Fprintf(w, "%s:\n", f.Name)
		for _, instr := range f.Instrs {
			fmt.Fprintf(w, "  %s\n", instr)
		}
	}
}
