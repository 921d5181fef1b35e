package types

// All the primitive C types.

var CVoid = &Void{}

// Signed
var CChar = &Integer{Char, 1, true, false}
var CShort = &Integer{Short, 2, true, false}
var CInt = &Integer{Int, 4, true, false}
var CLong = &Integer{Long, 8, true, false}

// Unsigned
var CBool = &Integer{Bool, 1, false, false}
var CUChar = &Integer{Char, 1, false, false}
var CUShort = &Integer{Short, 2, false, false}
var CUInt = &Integer{Int, 4, false, false}
var CULong = &Integer{Long, 8, false, false}

func IsVoid(t CType) bool {
	_, ok := t.(*Void)
	return ok
}

func IsBool(t CType) bool {
	i, ok := t.(*Integer)
	return ok && i.Kind == Bool
}

func IsIntegral(t CType) bool {
	_, ok := t.(*Integer)
	return ok
}

// Arithmetic and integral coincide while the type system has no
// floating point.
func IsArith(t CType) bool { return IsIntegral(t) }

func IsPointer(t CType) bool {
	_, ok := t.(*Pointer)
	return ok
}

func IsArray(t CType) bool {
	_, ok := t.(*Array)
	return ok
}

func IsFunction(t CType) bool {
	_, ok := t.(*Function)
	return ok
}

func IsStructUnion(t CType) bool {
	_, ok := t.(*StructUnion)
	return ok
}

func IsScalar(t CType) bool { return IsArith(t) || IsPointer(t) }

// IsObject reports whether t is an object type, i.e. anything but a
// function type.
func IsObject(t CType) bool { return !IsFunction(t) }

func IsComplete(t CType) bool {
	switch t := t.(type) {
	case *Void:
		return false
	case *Array:
		return t.N >= 0
	case *StructUnion:
		return t.Members != nil
	default:
		return true
	}
}

func IsIncomplete(t CType) bool {
	switch t.(type) {
	case *Void, *Array, *StructUnion:
		return !IsComplete(t)
	default:
		return false
	}
}

// Qualify returns a const-qualified version of t. The top-level node
// is copied so shared types (typedef aliases, the primitive
// singletons) are never mutated.
func Qualify(t CType) CType {
	switch t := t.(type) {
	case *Integer:
		c := *t
		c.ConstQ = true
		return &c
	case *Void:
		c := *t
		c.ConstQ = true
		return &c
	case *Pointer:
		c := *t
		c.ConstQ = true
		return &c
	case *Array:
		c := *t
		c.ConstQ = true
		return &c
	case *Function:
		c := *t
		c.ConstQ = true
		return &c
	case *StructUnion:
		c := *t
		c.ConstQ = true
		return &c
	}
	return t
}

// Unqualify returns an unqualified copy of t.
func Unqualify(t CType) CType {
	if !t.IsConst() {
		return t
	}
	switch t := t.(type) {
	case *Integer:
		c := *t
		c.ConstQ = false
		return &c
	case *Void:
		c := *t
		c.ConstQ = false
		return &c
	case *Pointer:
		c := *t
		c.ConstQ = false
		return &c
	case *Array:
		c := *t
		c.ConstQ = false
		return &c
	case *Function:
		c := *t
		c.ConstQ = false
		return &c
	case *StructUnion:
		c := *t
		c.ConstQ = false
		return &c
	}
	return t
}
