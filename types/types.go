// Package types defines the C types recognized by the compiler.
//
// Types are immutable once constructed and may be shared; use Qualify
// to obtain a const-qualified copy rather than mutating in place.
package types

import (
	"fmt"
	"strings"
)

type CType interface {
	Size() int
	IsConst() bool
	// WeakCompat ignores top-level const qualification.
	WeakCompat(other CType) bool
	String() string
}

// Compatible reports full compatibility, including top-level
// qualifiers.
func Compatible(a, b CType) bool {
	return a.WeakCompat(b) && a.IsConst() == b.IsConst()
}

type IntegerKind int

const (
	Bool IntegerKind = iota
	Char
	Short
	Int
	Long
)

type Integer struct {
	Kind     IntegerKind
	ByteSize int
	Signed   bool
	ConstQ   bool
}

func (t *Integer) Size() int     { return t.ByteSize }
func (t *Integer) IsConst() bool { return t.ConstQ }

func (t *Integer) WeakCompat(other CType) bool {
	o, ok := other.(*Integer)
	return ok && o.Kind == t.Kind && o.Signed == t.Signed
}

func (t *Integer) String() string {
	name := map[IntegerKind]string{
		Bool:  "_Bool",
		Char:  "char",
		Short: "short",
		Int:   "int",
		Long:  "long",
	}[t.Kind]
	if !t.Signed && t.Kind != Bool {
		name = "unsigned " + name
	}
	return name
}

type Void struct {
	ConstQ bool
}

func (t *Void) Size() int     { return 1 }
func (t *Void) IsConst() bool { return t.ConstQ }

func (t *Void) WeakCompat(other CType) bool {
	_, ok := other.(*Void)
	return ok
}

func (t *Void) String() string { return "void" }

type Pointer struct {
	To     CType
	ConstQ bool
}

func (t *Pointer) Size() int     { return 8 }
func (t *Pointer) IsConst() bool { return t.ConstQ }

func (t *Pointer) WeakCompat(other CType) bool {
	o, ok := other.(*Pointer)
	return ok && Compatible(t.To, o.To)
}

func (t *Pointer) String() string { return "pointer to " + t.To.String() }

// Array with N < 0 is an incomplete array type.
type Array struct {
	Elem   CType
	N      int
	ConstQ bool
}

func (t *Array) Size() int {
	if t.N < 0 {
		return t.Elem.Size()
	}
	return t.N * t.Elem.Size()
}

func (t *Array) IsConst() bool { return t.ConstQ }

func (t *Array) WeakCompat(other CType) bool {
	o, ok := other.(*Array)
	if !ok || !Compatible(t.Elem, o.Elem) {
		return false
	}
	return t.N < 0 || o.N < 0 || t.N == o.N
}

func (t *Array) String() string {
	if t.N < 0 {
		return "array of " + t.Elem.String()
	}
	return fmt.Sprintf("array(%d) of %s", t.N, t.Elem.String())
}

// Function with NoInfo set came from an empty, unprototyped parameter
// list: f() rather than f(void).
type Function struct {
	Args   []CType
	Ret    CType
	NoInfo bool
	ConstQ bool
}

func (t *Function) Size() int     { return 1 }
func (t *Function) IsConst() bool { return t.ConstQ }

func (t *Function) WeakCompat(other CType) bool {
	o, ok := other.(*Function)
	if !ok || !Compatible(t.Ret, o.Ret) {
		return false
	}
	if t.NoInfo || o.NoInfo {
		return true
	}
	if len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !Compatible(t.Args[i], o.Args[i]) {
			return false
		}
	}
	return true
}

func (t *Function) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("function(%s) returning %s",
		strings.Join(args, ", "), t.Ret.String())
}

type Member struct {
	Name string
	Type CType
}

// StructUnion is a struct or union type. A nil Members slice marks an
// incomplete (forward-declared) type; Complete installs the members.
// orig preserves identity across const-qualified copies: two
// struct/union types are compatible only when they are declarations of
// the same type.
type StructUnion struct {
	Tag     string
	Members []Member
	IsUnion bool
	ConstQ  bool
	orig    *StructUnion
}

func NewStructUnion(tag string, isUnion bool) *StructUnion {
	t := &StructUnion{Tag: tag, IsUnion: isUnion}
	t.orig = t
	return t
}

func (t *StructUnion) Size() int {
	size := 0
	for _, m := range t.Members {
		if t.IsUnion {
			if m.Type.Size() > size {
				size = m.Type.Size()
			}
		} else {
			size += m.Type.Size()
		}
	}
	return size
}

func (t *StructUnion) IsConst() bool { return t.ConstQ }

// Two struct types are compatible only if they are the same type.
func (t *StructUnion) WeakCompat(other CType) bool {
	o, ok := other.(*StructUnion)
	return ok && o.orig == t.orig
}

func (t *StructUnion) String() string {
	kw := "struct"
	if t.IsUnion {
		kw = "union"
	}
	if t.Tag == "" {
		return kw
	}
	return kw + " " + t.Tag
}

func (t *StructUnion) Complete(members []Member) {
	t.Members = members
}

func (t *StructUnion) Offset(name string) (int, CType, bool) {
	off := 0
	for _, m := range t.Members {
		if m.Name == name {
			return off, m.Type, true
		}
		if !t.IsUnion {
			off += m.Type.Size()
		}
	}
	return 0, nil, false
}
