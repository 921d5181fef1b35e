package parse

import (
	"mincc/ir"
	"mincc/report"
	"mincc/symtab"
	"mincc/types"
)

// ctx is the resolution context threaded through IL emission. It is an
// immutable value: setGlobal and setReturn return modified copies, so
// scope-local overrides cannot leak back to the caller.
type ctx struct {
	isGlobal bool
	ret      types.CType
}

func (c ctx) setGlobal(g bool) ctx {
	c.isGlobal = g
	return c
}

func (c ctx) setReturn(t types.CType) ctx {
	c.ret = t
	return c
}

// emitter bundles the collaborators every resolution call needs: the
// IL buffer, the symbol table and the diagnostic sink. Passing it
// explicitly keeps the resolver re-entrant.
type emitter struct {
	il   *ir.Builder
	st   *symtab.Table
	errs *report.Collector
}

// reportErr forwards a recoverable semantic failure to the collector
// so processing of sibling declarations continues.
func (e *emitter) reportErr(err *report.CompilerError) {
	if err != nil {
		e.errs.Add(err)
	}
}
