package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mincc/ir"
	"mincc/lex"
	"mincc/report"
	"mincc/symtab"
	"mincc/token"
)

type compilation struct {
	root *Root
	il   *ir.Builder
	st   *symtab.Table
	errs *report.Collector
}

// compile runs the whole front end over src: lex, parse, resolve and
// emit. The symbol table is left with only the file scope open so
// tests can inspect file-scope symbols afterwards.
func compile(t *testing.T, src string) *compilation {
	t.Helper()
	errs := report.NewCollector()
	tokens := lex.Tokenize(src, "test.c", errs)
	root := Parse(tokens, errs)
	il := ir.NewBuilder()
	st := symtab.NewTable()
	if root != nil {
		root.GenIL(il, st, errs)
	}
	return &compilation{root: root, il: il, st: st, errs: errs}
}

func (c *compilation) errorDescs() []string {
	var out []string
	for _, issue := range c.errs.Issues() {
		out = append(out, issue.Desc)
	}
	return out
}

func (c *compilation) hasError(substr string) bool {
	for _, issue := range c.errs.Issues() {
		if !issue.Warning && strings.Contains(issue.Desc, substr) {
			return true
		}
	}
	return false
}

// requireClean fails the test when any diagnostic at all was emitted.
func (c *compilation) requireClean(t *testing.T) {
	t.Helper()
	require.Empty(t, c.errs.Issues(), "unexpected diagnostics: %v", c.errorDescs())
}

func (c *compilation) lookupType(t *testing.T, name string) string {
	t.Helper()
	v, ok := c.st.Lookup(name)
	require.True(t, ok, "symbol %q not declared", name)
	return v.Type.String()
}

func TestDeclaratorPrecedence(t *testing.T) {
	c := compile(t, `
int *a[3];
int (*f)(int);
int *g(int);
`)
	c.requireClean(t)
	assert.Equal(t, "array(3) of pointer to int", c.lookupType(t, "a"))
	assert.Equal(t, "pointer to function(int) returning int", c.lookupType(t, "f"))
	assert.Equal(t, "function(int) returning pointer to int", c.lookupType(t, "g"))
}

func TestSpecifierOrderIrrelevant(t *testing.T) {
	c := compile(t, `
unsigned long int a;
int long unsigned b;
long long c;
long d;
`)
	c.requireClean(t)
	assert.Equal(t, "unsigned long", c.lookupType(t, "a"))
	assert.Equal(t, "unsigned long", c.lookupType(t, "b"))
	// long long and long are the same type here.
	assert.Equal(t, "long", c.lookupType(t, "c"))
	assert.Equal(t, "long", c.lookupType(t, "d"))
}

func TestUnrecognizedSpecifierSet(t *testing.T) {
	c := compile(t, "short long x;")
	assert.True(t, c.hasError("unrecognized set of type specifiers"))
	_, ok := c.st.Lookup("x")
	assert.False(t, ok)
}

func TestDuplicateStorageClass(t *testing.T) {
	c := compile(t, "static static int x;")
	assert.True(t, c.hasError("too many storage classes"))
	_, ok := c.st.Lookup("x")
	assert.False(t, ok, "declaration with bad specifiers must not commit a symbol")
}

func TestExternFollowsRecordedLinkage(t *testing.T) {
	c := compile(t, `
static int x;
extern int x;
`)
	c.requireClean(t)
	v, ok := c.st.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, symtab.Internal, v.Linkage,
		"extern redeclaration must keep the previously recorded linkage")
}

func TestLinkageAndDefinitionStates(t *testing.T) {
	c := compile(t, `
int a;
int b = 1;
extern int c;
static int d;
int f(int);
`)
	c.requireClean(t)

	a, _ := c.st.Lookup("a")
	assert.Equal(t, symtab.Tentative, a.DefState)
	assert.Equal(t, symtab.External, a.Linkage)
	assert.Equal(t, symtab.StaticStorage, a.Storage)

	b, _ := c.st.Lookup("b")
	assert.Equal(t, symtab.Defined, b.DefState)

	cv, _ := c.st.Lookup("c")
	assert.Equal(t, symtab.Undefined, cv.DefState)
	assert.Equal(t, symtab.External, cv.Linkage)
	assert.Equal(t, symtab.NoStorage, cv.Storage)

	d, _ := c.st.Lookup("d")
	assert.Equal(t, symtab.Internal, d.Linkage)

	fn, _ := c.st.Lookup("f")
	assert.Equal(t, symtab.Undefined, fn.DefState)
	assert.Equal(t, symtab.External, fn.Linkage)
}

func TestTentativeThenRealDefinition(t *testing.T) {
	c := compile(t, `
int x;
int x = 3;
`)
	c.requireClean(t)
	v, _ := c.st.Lookup("x")
	assert.Equal(t, symtab.Defined, v.DefState)
}

func TestRedefinitionErrors(t *testing.T) {
	c := compile(t, `
int x = 1;
int x = 2;
`)
	assert.True(t, c.hasError("redefinition of 'x'"))

	c = compile(t, `
int y;
long y;
`)
	assert.True(t, c.hasError("conflicting types for 'y'"))

	c = compile(t, "void f() { int z; int z; }")
	assert.True(t, c.hasError("redefinition of 'z'"))
}

func TestShadowingInInnerScope(t *testing.T) {
	c := compile(t, `
int x;
void f() {
	long x;
	{
		char x;
		x = 1;
	}
	x = 2;
}
`)
	c.requireClean(t)
}

func TestVoidParameterRules(t *testing.T) {
	c := compile(t, "int f(void, int);")
	assert.True(t, c.hasError("'void' must be the only parameter"))
	_, ok := c.st.Lookup("f")
	assert.False(t, ok)

	c = compile(t, "int g(void);")
	c.requireClean(t)
	assert.Equal(t, "function() returning int", c.lookupType(t, "g"))
}

func TestUnprototypedFunctionDeclaration(t *testing.T) {
	c := compile(t, `
int f();
int f(int, char);
`)
	// f() carries no parameter information and is compatible with any
	// later prototype.
	c.requireClean(t)
	assert.Equal(t, "function(int, char) returning int", c.lookupType(t, "f"))

	// The other order must not discard the prototype.
	c = compile(t, `
int g(int, char);
int g();
`)
	c.requireClean(t)
	assert.Equal(t, "function(int, char) returning int", c.lookupType(t, "g"))
}

func TestRedeclarationKeepsKnownArrayLength(t *testing.T) {
	c := compile(t, `
int a[3];
int a[];
`)
	c.requireClean(t)
	assert.Equal(t, "array(3) of int", c.lookupType(t, "a"))

	c = compile(t, `
int b[];
int b[3];
`)
	c.requireClean(t)
	assert.Equal(t, "array(3) of int", c.lookupType(t, "b"))
}

func TestParameterDecay(t *testing.T) {
	c := compile(t, "void f(int a[3], int g(int));")
	c.requireClean(t)
	assert.Equal(t,
		"function(pointer to int, pointer to function(int) returning int) returning void",
		c.lookupType(t, "f"))
}

func TestFunctionCannotReturnAggregateOfCode(t *testing.T) {
	c := compile(t, "int f(void)(void);")
	assert.True(t, c.hasError("function cannot return function type"))

	c = compile(t, "int g(void)[3];")
	assert.True(t, c.hasError("function cannot return array type"))
}

func TestStorageClassOnParameter(t *testing.T) {
	c := compile(t, "int f(static int x);")
	assert.True(t, c.hasError("storage class specified for function parameter"))
}

func TestMainSignature(t *testing.T) {
	bad := []string{
		"void main() {}",
		"int main(int argc) { return 0; }",
		"int main(char **argv, int argc) { return 0; }",
	}
	for _, src := range bad {
		c := compile(t, src)
		assert.False(t, c.errs.OK(), "expected rejection of %q", src)
	}

	good := []string{
		"int main(void) { return 0; }",
		"int main() {}",
		"int main(int argc, char **argv) { return argc; }",
		"int main(int argc, char *argv[]) { return 0; }",
	}
	for _, src := range good {
		c := compile(t, src)
		c.requireClean(t)
	}
}

func TestImplicitReturnForMain(t *testing.T) {
	c := compile(t, "int main(void) {}")
	c.requireClean(t)
	assert.True(t, c.il.AlwaysReturns())
	require.Len(t, c.il.Funcs, 1)
	instrs := c.il.Funcs[0].Instrs
	require.NotEmpty(t, instrs)
	ret, ok := instrs[len(instrs)-1].(*ir.Return)
	require.True(t, ok, "function must end in a return")
	require.NotNil(t, ret.Val, "main returns 0 implicitly")
	require.NotNil(t, ret.Val.Literal)
	assert.Equal(t, int64(0), ret.Val.Literal.Val)
}

func TestImplicitBareReturn(t *testing.T) {
	c := compile(t, "void f(void) { 1 + 2; }")
	c.requireClean(t)
	assert.True(t, c.il.AlwaysReturns())
	require.Len(t, c.il.Funcs, 1)
	instrs := c.il.Funcs[0].Instrs
	require.NotEmpty(t, instrs)
	ret, ok := instrs[len(instrs)-1].(*ir.Return)
	require.True(t, ok)
	assert.Nil(t, ret.Val)
}

func TestNoImplicitReturnAfterExplicitOne(t *testing.T) {
	c := compile(t, "int f(void) { return 1; }")
	c.requireClean(t)
	require.Len(t, c.il.Funcs[0].Instrs, 1)
}

func TestReturnTypeChecks(t *testing.T) {
	c := compile(t, "void f(void) { return 1; }")
	assert.True(t, c.hasError("function with void return type cannot return value"))

	c = compile(t, "int f(void) { return; }")
	assert.True(t, c.errs.OK(), "bare return in non-void function is only a warning")
	require.Len(t, c.errs.Issues(), 1)
	assert.True(t, c.errs.Issues()[0].Warning)
}

func TestFunctionParametersAreBound(t *testing.T) {
	c := compile(t, `
int add(int a, int b) {
	return a + b;
}
`)
	c.requireClean(t)
	require.Len(t, c.il.Funcs, 1)
	instrs := c.il.Funcs[0].Instrs
	require.GreaterOrEqual(t, len(instrs), 3)

	la0, ok := instrs[0].(*ir.LoadArg)
	require.True(t, ok)
	assert.Equal(t, 0, la0.Idx)
	assert.Equal(t, "a", la0.Dst.Var.Name)

	la1, ok := instrs[1].(*ir.LoadArg)
	require.True(t, ok)
	assert.Equal(t, 1, la1.Idx)
	assert.Equal(t, "b", la1.Dst.Var.Name)
}

func TestDefinitionRequiresParameterNames(t *testing.T) {
	c := compile(t, "int f(int) { return 0; }")
	assert.True(t, c.hasError("function definition missing parameter name"))
}

func TestConstantFolding(t *testing.T) {
	c := compile(t, "int main(void) { return 2 + 3 * 4; }")
	c.requireClean(t)
	instrs := c.il.Funcs[0].Instrs
	// The whole expression folds: no arithmetic instructions remain.
	require.Len(t, instrs, 1)
	ret := instrs[0].(*ir.Return)
	require.NotNil(t, ret.Val.Literal)
	assert.Equal(t, int64(14), ret.Val.Literal.Val)
}

func TestDivisionByZeroInConstant(t *testing.T) {
	c := compile(t, "int x = 1 / 0;")
	assert.True(t, c.hasError("division by zero in constant expression"))
}

func TestStaticInitializers(t *testing.T) {
	c := compile(t, "static int x = 5;")
	c.requireClean(t)
	require.Len(t, c.il.StaticInits, 1)
	si := c.il.StaticInits[0]
	assert.Equal(t, "x", si.Var.Name)
	require.NotNil(t, si.Val)
	assert.Equal(t, int64(5), *si.Val)

	c = compile(t, `
int y;
static int x = y;
`)
	assert.True(t, c.hasError("non-constant initializer for variable with static storage duration"))
}

func TestCharConstantInitializer(t *testing.T) {
	c := compile(t, "int c = 'A';")
	c.requireClean(t)
	require.Len(t, c.il.StaticInits, 1)
	assert.Equal(t, int64(65), *c.il.StaticInits[0].Val)
}

func TestLocalInitializerEmitsStore(t *testing.T) {
	c := compile(t, `
void f(void) {
	int x = 3;
	x = x + 1;
}
`)
	c.requireClean(t)
	sets := 0
	for _, instr := range c.il.Funcs[0].Instrs {
		if _, ok := instr.(*ir.Set); ok {
			sets++
		}
	}
	assert.Equal(t, 2, sets)
}

func TestLocalExternWithInitializer(t *testing.T) {
	c := compile(t, "void f(void) { extern int x = 5; }")
	assert.True(t, c.hasError("local variable with linkage has initializer"))
}

func TestIncompleteArray(t *testing.T) {
	c := compile(t, "int a[];")
	c.requireClean(t)
	v, _ := c.st.Lookup("a")
	assert.Equal(t, symtab.Tentative, v.DefState)
	assert.Equal(t, "array of int", v.Type.String())

	c = compile(t, "void f(void) { int a[]; }")
	assert.True(t, c.hasError("variable of incomplete type declared"))
}

func TestArraySizeChecks(t *testing.T) {
	c := compile(t, "int a[2 * 3 + 2];")
	c.requireClean(t)
	assert.Equal(t, "array(8) of int", c.lookupType(t, "a"))

	c = compile(t, "int a[0];")
	assert.True(t, c.hasError("array size must be positive"))

	c = compile(t, `
int n;
int a[n];
`)
	assert.True(t, c.hasError("array size must be compile-time constant"))
}

func TestSiblingDeclaratorsFailIndependently(t *testing.T) {
	c := compile(t, "int a[0], b[0], ok;")
	descs := c.errorDescs()
	count := 0
	for _, d := range descs {
		if strings.Contains(d, "array size must be positive") {
			count++
		}
	}
	assert.Equal(t, 2, count, "each bad declarator gets its own diagnostic: %v", descs)
	_, found := c.st.Lookup("ok")
	assert.True(t, found, "the healthy sibling still resolves")
}

func TestStatementsFailIndependently(t *testing.T) {
	c := compile(t, `
void f(void) {
	int x;
	x = z;
	x = 2;
}
`)
	assert.True(t, c.hasError("use of undeclared identifier 'z'"))
	sets := 0
	for _, instr := range c.il.Funcs[0].Instrs {
		if _, ok := instr.(*ir.Set); ok {
			sets++
		}
	}
	assert.Equal(t, 1, sets, "the statement after the bad one still resolves")
}

func TestAssignmentChecks(t *testing.T) {
	c := compile(t, "void f(void) { const int x = 1; x = 2; }")
	assert.True(t, c.hasError("cannot assign to const-qualified variable 'x'"))

	c = compile(t, "void f(void) { 1 = 2; }")
	assert.True(t, c.hasError("expression on left of '=' is not assignable"))
}

func TestTypedef(t *testing.T) {
	c := compile(t, `
typedef int myint;
myint x;
typedef myint *intptr;
intptr p;
`)
	c.requireClean(t)
	assert.Equal(t, "int", c.lookupType(t, "x"))
	assert.Equal(t, "pointer to int", c.lookupType(t, "p"))
}

func TestTypedefConstDoesNotMutateAlias(t *testing.T) {
	c := compile(t, `
typedef int number;
const number a;
number b;
`)
	c.requireClean(t)
	va, _ := c.st.Lookup("a")
	vb, _ := c.st.Lookup("b")
	assert.True(t, va.Type.IsConst())
	assert.False(t, vb.Type.IsConst(),
		"qualifying one use of a typedef must not affect other uses")
}

func TestTypedefMisuse(t *testing.T) {
	c := compile(t, "typedef int t = 5;")
	assert.True(t, c.hasError("typedef cannot have initializer"))

	c = compile(t, "typedef int t(void) { return 0; }")
	assert.True(t, c.hasError("function definition cannot be a typedef"))
}

func TestTypedefNameShadowedByVariable(t *testing.T) {
	c := compile(t, `
typedef int t;
void f(void) {
	int t;
	t = 5;
}
t g;
`)
	c.requireClean(t)
	assert.Equal(t, "int", c.lookupType(t, "g"))
}

func TestStructDefinitionAndUse(t *testing.T) {
	c := compile(t, `
struct point { int x; int y; };
struct point p;
struct point *q;
`)
	c.requireClean(t)
	assert.Equal(t, "struct point", c.lookupType(t, "p"))
	assert.Equal(t, "pointer to struct point", c.lookupType(t, "q"))
	v, _ := c.st.Lookup("p")
	assert.Equal(t, 8, v.Type.Size())
}

func TestStructForwardDeclaration(t *testing.T) {
	c := compile(t, `
struct node;
struct node *head;
struct node { int val; struct node *next; };
struct node n;
`)
	c.requireClean(t)
}

func TestIncompleteStructVariable(t *testing.T) {
	c := compile(t, "void f(void) { struct never s; }")
	assert.True(t, c.hasError("variable of incomplete type declared"))
}

func TestStructMemberChecks(t *testing.T) {
	c := compile(t, "struct s { int a; int a; };")
	assert.True(t, c.hasError("duplicate member 'a'"))

	c = compile(t, "struct s { struct t x; };")
	assert.True(t, c.hasError("cannot have incomplete type as struct member"))

	c = compile(t, "struct s { int f(void); };")
	assert.True(t, c.hasError("cannot have function type as struct member"))

	c = compile(t, "struct s { static int a; };")
	assert.True(t, c.hasError("cannot have storage specifier on struct member"))
}

func TestStructRedefinition(t *testing.T) {
	c := compile(t, `
struct s { int a; };
struct s { int a; };
`)
	assert.True(t, c.hasError("redefinition of struct 's'"))
}

func TestStructUnionKindMismatch(t *testing.T) {
	c := compile(t, `
union u { int a; };
struct u x;
`)
	assert.True(t, c.hasError("does not match previous declaration"))
}

func TestUnionSize(t *testing.T) {
	c := compile(t, `
union u { char c; long l; };
union u x;
`)
	c.requireClean(t)
	v, _ := c.st.Lookup("x")
	assert.Equal(t, 8, v.Type.Size())
}

func TestBestErrorWins(t *testing.T) {
	c := compile(t, "int x = ;")
	require.Nil(t, c.root)
	require.NotEmpty(t, c.errs.Issues())
	// The alternative that consumed the most input is reported, not
	// the one that failed first.
	assert.Contains(t, c.errs.Issues()[0].Desc, "expected expression")
}

func TestTrailingGarbage(t *testing.T) {
	c := compile(t, "int x; ]")
	assert.Nil(t, c.root)
	assert.False(t, c.errs.OK())
}

func TestPointerDereferenceAndAddress(t *testing.T) {
	c := compile(t, `
void f(void) {
	int x;
	int *p;
	x = *p + 1;
}
`)
	c.requireClean(t)

	c = compile(t, "void f(void) { int x; x = *x; }")
	assert.True(t, c.hasError("cannot dereference non-pointer value"))

	c = compile(t, "void f(void) { int x; x = &1; }")
	assert.True(t, c.hasError("'&' requires an lvalue operand"))
}

func TestUnaryOperationsEmitInstructions(t *testing.T) {
	c := compile(t, `
void f(void) {
	int x;
	int y;
	int *p;
	x = -y;
	p = &x;
	y = *p;
}
`)
	c.requireClean(t)
	var ops []token.Kind
	for _, instr := range c.il.Funcs[0].Instrs {
		if un, ok := instr.(*ir.UnOp); ok {
			ops = append(ops, un.Op)
		}
	}
	assert.Equal(t, []token.Kind{token.SUB, token.AMP, token.MUL}, ops,
		"each stored unary result must be computed by an instruction")
}

func TestUndeclaredIdentifier(t *testing.T) {
	c := compile(t, "int x = missing + 1;")
	assert.True(t, c.hasError("use of undeclared identifier 'missing'"))
}
