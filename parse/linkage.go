package parse

import (
	"mincc/ir"
	"mincc/report"
	"mincc/symtab"
	"mincc/types"
)

// process commits one resolved declaration: typedef registration, the
// C11 6.2.2 linkage/definition/storage-duration tables, the symbol
// table entry, and IL for the initializer or function body.
func (d *declInfo) process(e *emitter, c ctx) *report.CompilerError {
	if d.identifier == nil {
		return report.New("missing identifier name in declaration", d.r)
	}

	// The typedef short-circuits everything else.
	if d.storage == storageTypedef {
		return d.processTypedef(e)
	}

	if d.body != nil && !types.IsFunction(d.ctype) {
		return report.New("function definition provided for non-function type", d.r)
	}

	linkage := d.getLinkage(e, c)
	defined := d.getDefined(c)
	storage := d.getStorageDuration(defined, linkage)

	if !c.isGlobal && d.init != nil && linkage != symtab.NoLinkage {
		return report.New("local variable with linkage has initializer", d.r)
	}

	v, err := e.st.AddVariable(*d.identifier, d.ctype, defined, linkage, storage)
	if err != nil {
		return err
	}

	if d.init != nil {
		if err := d.doInit(v, storage, e, c); err != nil {
			return err
		}
	}
	if d.body != nil {
		if err := d.doBody(e, c); err != nil {
			return err
		}
	}

	if linkage == symtab.NoLinkage && types.IsIncomplete(d.ctype) {
		return report.New("variable of incomplete type declared", d.r)
	}
	return nil
}

func (d *declInfo) processTypedef(e *emitter) *report.CompilerError {
	if d.init != nil {
		return report.New("typedef cannot have initializer", d.r)
	}
	if d.body != nil {
		return report.New("function definition cannot be a typedef", d.r)
	}
	return e.st.AddTypedef(*d.identifier, d.ctype)
}

// getLinkage implements the linkage table of C11 6.2.2.
func (d *declInfo) getLinkage(e *emitter, c ctx) symtab.Linkage {
	switch {
	case c.isGlobal && d.storage == storageStatic:
		return symtab.Internal
	case d.storage == storageExtern:
		if cur := e.st.LookupLinkage(*d.identifier); cur != symtab.NoLinkage {
			return cur
		}
		return symtab.External
	case types.IsFunction(d.ctype) && d.storage == storageNone:
		return symtab.External
	case c.isGlobal && d.storage == storageNone:
		return symtab.External
	default:
		return symtab.NoLinkage
	}
}

// getDefined determines whether this declaration is a definition, a
// tentative definition, or no definition at all.
func (d *declInfo) getDefined(c ctx) symtab.DefState {
	switch {
	case c.isGlobal && (d.storage == storageNone || d.storage == storageStatic) &&
		types.IsObject(d.ctype) && d.init == nil:
		return symtab.Tentative
	case d.storage == storageExtern && d.init == nil && d.body == nil:
		return symtab.Undefined
	case types.IsFunction(d.ctype) && d.body == nil:
		return symtab.Undefined
	default:
		return symtab.Defined
	}
}

func (d *declInfo) getStorageDuration(defined symtab.DefState, linkage symtab.Linkage) symtab.Storage {
	switch {
	case defined == symtab.Undefined || !types.IsObject(d.ctype):
		return symtab.NoStorage
	case linkage != symtab.NoLinkage || d.storage == storageStatic:
		return symtab.StaticStorage
	default:
		return symtab.AutomaticStorage
	}
}

// doInit emits the declaration's initializer: a recorded constant for
// static storage duration, a store for automatic duration.
func (d *declInfo) doInit(v *symtab.Variable, storage symtab.Storage, e *emitter, c ctx) *report.CompilerError {
	init, err := d.init.makeIL(e, c)
	if err != nil {
		return err
	}

	switch {
	case storage == symtab.StaticStorage && init.Literal == nil:
		return report.New(
			"non-constant initializer for variable with static storage duration",
			d.init.exprRange())
	case storage == symtab.StaticStorage:
		val := init.Literal.Val
		e.il.StaticInitialize(v, &val)
		return nil
	case types.IsArith(v.Type) || types.IsPointer(v.Type):
		e.il.Add(&ir.Set{Dst: &ir.Value{Type: v.Type, Var: v}, Src: init})
		return nil
	default:
		return report.New("declared variable is not of assignable type", d.r)
	}
}

// doBody emits a function definition: parameters are bound to argument
// slots in a fresh scope that doubles as the outermost body scope, and
// an implicit return is synthesized when control can fall off the end.
func (d *declInfo) doBody(e *emitter, c ctx) *report.CompilerError {
	isMain := d.identifier.Val == "main"
	fn := d.ctype.(*types.Function)

	for i := range fn.Args {
		if i >= len(d.paramNames) || d.paramNames[i] == nil {
			return report.New("function definition missing parameter name", d.r)
		}
	}

	if isMain {
		if err := d.checkMainType(fn); err != nil {
			return err
		}
	}

	c = c.setReturn(fn.Ret)
	e.il.StartFunc(d.identifier.Val)

	e.st.NewScope()
	defer e.st.EndScope()

	for i, ctype := range fn.Args {
		arg, err := e.st.AddVariable(*d.paramNames[i], ctype,
			symtab.Defined, symtab.NoLinkage, symtab.AutomaticStorage)
		if err != nil {
			return err
		}
		arg.ArgIdx = i
		e.il.Add(&ir.LoadArg{Dst: &ir.Value{Type: ctype, Var: arg}, Idx: i})
	}

	d.body.emit(e, c, true)

	if !e.il.AlwaysReturns() {
		if isMain {
			zero := e.il.NewTemp(types.CInt)
			e.il.RegisterLiteralVar(zero, 0)
			e.il.Add(&ir.Return{Val: zero})
		} else {
			e.il.Add(&ir.Return{})
		}
	}
	return nil
}

// checkMainType validates the special signature rules for main: an
// int-compatible return, and either zero parameters or (int, char**).
func (d *declInfo) checkMainType(fn *types.Function) *report.CompilerError {
	if !types.Compatible(fn.Ret, types.CInt) {
		return report.New("'main' function must have integer return type", d.r)
	}
	if len(fn.Args) != 0 && len(fn.Args) != 2 {
		return report.New("'main' function must have 0 or 2 arguments", d.r)
	}
	if len(fn.Args) == 0 {
		return nil
	}

	first, second := fn.Args[0], fn.Args[1]
	if !types.Compatible(first, types.CInt) {
		return report.New("first parameter of 'main' must be of integer type", d.r)
	}

	secondPtr, ok := second.(*types.Pointer)
	if !ok {
		return report.New("second parameter of 'main' must be like char**", d.r)
	}
	var inner types.CType
	switch t := secondPtr.To.(type) {
	case *types.Pointer:
		inner = t.To
	case *types.Array:
		inner = t.Elem
	default:
		return report.New("second parameter of 'main' must be like char**", d.r)
	}
	if !types.Compatible(inner, types.CChar) {
		return report.New("second parameter of 'main' must be like char**", d.r)
	}
	return nil
}
