package ir

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mincc/symtab"
	"mincc/token"
	"mincc/types"
)

func TestBuilderFunctions(t *testing.T) {
	b := NewBuilder()
	assert.False(t, b.InFunc())
	assert.False(t, b.AlwaysReturns())
	assert.Panics(t, func() { b.Add(&Return{}) })

	b.StartFunc("f")
	assert.True(t, b.InFunc())
	assert.False(t, b.AlwaysReturns(), "an empty function falls off the end")

	v := b.NewTemp(types.CInt)
	b.RegisterLiteralVar(v, 7)
	require.NotNil(t, v.Literal)
	assert.Equal(t, int64(7), v.Literal.Val)

	b.Add(&Return{Val: v})
	assert.True(t, b.AlwaysReturns())

	b.StartFunc("g")
	assert.False(t, b.AlwaysReturns(), "a new function starts over")
	require.Len(t, b.Funcs, 2)
	assert.Equal(t, "f", b.Funcs[0].Name)
	assert.Len(t, b.Funcs[0].Instrs, 1)
}

func TestTempsAreDistinct(t *testing.T) {
	b := NewBuilder()
	a := b.NewTemp(types.CInt)
	c := b.NewTemp(types.CInt)
	assert.NotEqual(t, a.String(), c.String())
}

func TestWriteTo(t *testing.T) {
	b := NewBuilder()
	x := &symtab.Variable{Name: "x", Type: types.CInt}
	five := int64(5)
	b.StaticInitialize(x, &five)
	y := &symtab.Variable{Name: "y", Type: types.CInt}
	b.StaticInitialize(y, nil)

	b.StartFunc("main")
	arg := &Value{Type: types.CInt, Var: &symtab.Variable{Name: "a"}}
	b.Add(&LoadArg{Dst: arg, Idx: 0})
	tmp := b.NewTemp(types.CInt)
	b.Add(&BinOp{Op: token.ADD, Dst: tmp, L: arg, R: arg})
	b.Add(&Set{Dst: arg, Src: tmp})
	b.Add(&Return{Val: arg})

	var buf bytes.Buffer
	b.WriteTo(&buf)
	assert.Equal(t, `static x = 5
static y = 0
main:
  a = arg 0
  t1 = a '+' a
  a = t1
  ret a
`, buf.String())
}

func TestBareReturnString(t *testing.T) {
	r := &Return{}
	assert.Equal(t, "ret", r.String())
}

func TestUnOpString(t *testing.T) {
	b := NewBuilder()
	src := &Value{Type: types.CInt, Var: &symtab.Variable{Name: "y"}}
	un := &UnOp{Op: token.SUB, Dst: b.NewTemp(types.CInt), Src: src}
	assert.Equal(t, "t1 = '-' y", un.String())
}
