package parse

import (
	"sort"
	"strings"

	"mincc/report"
	"mincc/token"
	"mincc/types"
)

type storageClass int

const (
	storageNone storageClass = iota
	storageAuto
	storageStatic
	storageExtern
	storageTypedef
)

var storageClassOf = map[token.Kind]storageClass{
	token.AUTO:    storageAuto,
	token.STATIC:  storageStatic,
	token.EXTERN:  storageExtern,
	token.TYPEDEF: storageTypedef,
}

// declInfo is one resolved, not-yet-committed declaration. It is
// produced and consumed entirely within one declaration-processing
// pass.
type declInfo struct {
	identifier *token.Token
	ctype      types.CType
	r          token.Range
	storage    storageClass
	init       expr
	body       *compoundStmt
	paramNames []*token.Token
}

// declResolver threads the emission collaborators and the declaration
// being resolved through the recursive type construction; it replaces
// the scratch state the resolution pass would otherwise have to stash
// on the declaration node.
type declResolver struct {
	e    *emitter
	c    ctx
	body *compoundStmt
	r    token.Range
}

// getDeclInfos resolves every declarator on one declaration line. A
// failed declarator is reported and skipped; its siblings still
// resolve.
func (rv *declResolver) getDeclInfos(node *declRoot) ([]*declInfo, *report.CompilerError) {
	baseType, storage, err := rv.makeSpecsType(node)
	if err != nil {
		return nil, err
	}

	var out []*declInfo
	for i, decl := range node.decls {
		ctype, identifier, err := rv.makeCType(decl, baseType)
		if err != nil {
			rv.e.reportErr(err)
			continue
		}

		var paramNames []*token.Token
		if types.IsFunction(ctype) {
			paramNames, err = rv.extractParams(decl)
			if err != nil {
				rv.e.reportErr(err)
				continue
			}
		}

		out = append(out, &declInfo{
			identifier: identifier,
			ctype:      ctype,
			r:          decl.declRange(),
			storage:    storage,
			init:       node.inits[i],
			body:       rv.body,
			paramNames: paramNames,
		})
	}
	return out, nil
}

// makeCType walks the declarator chain from the outermost syntactic
// modifier to the identifier, wrapping prev as it goes, so the
// modifier closest to the name is constructed first.
func (rv *declResolver) makeCType(decl declNode, prev types.CType) (types.CType, *token.Token, *report.CompilerError) {
	switch n := decl.(type) {
	case *ptrNode:
		return rv.makeCType(n.child, &types.Pointer{To: prev, ConstQ: n.constQ})
	case *arrayNode:
		ctype, err := rv.makeArrayType(n, prev)
		if err != nil {
			return nil, nil, err
		}
		return rv.makeCType(n.child, ctype)
	case *funcNode:
		ctype, err := rv.makeFuncType(n, prev)
		if err != nil {
			return nil, nil, err
		}
		return rv.makeCType(n.child, ctype)
	case *identNode:
		return prev, n.tok, nil
	default:
		panic("unreachable")
	}
}

func (rv *declResolver) makeArrayType(n *arrayNode, prev types.CType) (types.CType, *report.CompilerError) {
	if n.size == nil {
		return &types.Array{Elem: prev, N: -1}, nil
	}
	val, err := n.size.makeIL(rv.e, rv.c)
	if err != nil {
		return nil, err
	}
	if !types.IsIntegral(val.Type) {
		return nil, report.New("array size must have integral type", n.r)
	}
	if val.Literal == nil {
		return nil, report.New("array size must be compile-time constant", n.r)
	}
	if val.Literal.Val <= 0 {
		return nil, report.New("array size must be positive", n.r)
	}
	if !types.IsComplete(prev) {
		return nil, report.New("array elements must have complete type", n.r)
	}
	return &types.Array{Elem: prev, N: int(val.Literal.Val)}, nil
}

func (rv *declResolver) makeFuncType(n *funcNode, prev types.CType) (types.CType, *report.CompilerError) {
	args, firstRange, err := rv.resolveParamTypes(n)
	if err != nil {
		return nil, err
	}

	// Array and function parameters decay to pointers.
	hasVoid := false
	for i, ctype := range args {
		switch t := ctype.(type) {
		case *types.Array:
			args[i] = &types.Pointer{To: t.Elem}
		case *types.Function:
			args[i] = &types.Pointer{To: t}
		case *types.Void:
			hasVoid = true
		}
	}
	if hasVoid && len(args) > 1 {
		return nil, report.New("'void' must be the only parameter", firstRange)
	}
	if types.IsFunction(prev) {
		return nil, report.New("function cannot return function type", rv.r)
	}
	if types.IsArray(prev) {
		return nil, report.New("function cannot return array type", rv.r)
	}

	switch {
	case len(args) == 0 && rv.body == nil:
		// The old-style unspecified form: f() rather than f(void).
		return &types.Function{Ret: prev, NoInfo: true}, nil
	case hasVoid:
		return &types.Function{Ret: prev}, nil
	default:
		return &types.Function{Args: args, Ret: prev}, nil
	}
}

// resolveParamTypes resolves each parameter as a one-declarator
// declaration inside a throwaway scope, so struct types declared in a
// parameter list do not leak into the enclosing scope.
func (rv *declResolver) resolveParamTypes(n *funcNode) ([]types.CType, token.Range, *report.CompilerError) {
	rv.e.st.NewScope()
	defer rv.e.st.EndScope()

	var firstRange token.Range
	paramRv := &declResolver{e: rv.e, c: rv.c, r: rv.r}
	args := make([]types.CType, 0, len(n.args))
	for i, param := range n.args {
		infos, err := paramRv.getDeclInfos(param)
		if err != nil {
			return nil, firstRange, err
		}
		if len(infos) == 0 {
			return nil, firstRange, report.New("invalid parameter declaration", param.r)
		}
		info := infos[0]
		if info.storage != storageNone {
			return nil, firstRange, report.New(
				"storage class specified for function parameter", info.r)
		}
		if i == 0 {
			firstRange = info.r
		}
		args = append(args, info.ctype)
	}
	return args, firstRange, nil
}

// extractParams re-walks the declarator chain of a function definition
// to recover the ordered parameter names.
func (rv *declResolver) extractParams(decl declNode) ([]*token.Token, *report.CompilerError) {
	var fn *funcNode
	for {
		done := false
		switch n := decl.(type) {
		case *funcNode:
			fn = n
			decl = n.child
		case *ptrNode:
			decl = n.child
		case *arrayNode:
			decl = n.child
		case *identNode:
			done = true
		default:
			panic("unreachable")
		}
		if done {
			break
		}
	}
	if fn == nil {
		return nil, report.New("function definition missing parameter list", rv.r)
	}

	identifiers := make([]*token.Token, 0, len(fn.args))
	for _, param := range fn.args {
		identifiers = append(identifiers, terminal(param.decls[0]).tok)
	}
	return identifiers, nil
}

// makeSpecsType resolves the specifier tokens shared by a declaration
// line into a base type and storage class.
func (rv *declResolver) makeSpecsType(node *declRoot) (types.CType, storageClass, *report.CompilerError) {
	specs := node.specs
	specRange := token.RangeOf(specs[0].R, specs[len(specs)-1].R)

	storage, err := getStorageClass(specs, specRange)
	if err != nil {
		return nil, storageNone, err
	}

	var baseType types.CType
	switch {
	case node.su != nil:
		// A bare `struct X;` line with no declarators and no storage
		// class redeclares the tag in the current scope.
		redec := !node.anyDecl() && storage == storageNone
		baseType, err = rv.makeStructUnionType(node.su, redec)
		if err != nil {
			return nil, storageNone, err
		}

	case hasKind(specs, token.IDENT):
		ident := firstOfKind(specs, token.IDENT)
		baseType, err = rv.e.st.LookupTypedef(ident)
		if err != nil {
			return nil, storageNone, err
		}

	default:
		baseType, err = baseCTypeOf(specs, specRange)
		if err != nil {
			return nil, storageNone, err
		}
	}

	if hasKind(specs, token.CONST) {
		baseType = types.Qualify(baseType)
	}
	return baseType, storage, nil
}

func hasKind(specs []token.Token, kind token.Kind) bool {
	for _, s := range specs {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

func firstOfKind(specs []token.Token, kind token.Kind) token.Token {
	for _, s := range specs {
		if s.Kind == kind {
			return s
		}
	}
	panic("unreachable")
}

// baseCTypeOf canonicalizes a multiset of basic type keywords against
// the fixed table of recognized combinations. The keywords are sorted
// so the spelling order never matters, and `long long` is folded to
// `long`.
func baseCTypeOf(specs []token.Token, specRange token.Range) (types.CType, *report.CompilerError) {
	var words []string
	for _, s := range specs {
		if simpleTypeSpecs[s.Kind] {
			words = append(words, s.Kind.String())
		}
	}
	sort.Strings(words)
	specsStr := strings.Join(words, " ")
	specsStr = strings.Replace(specsStr, "long long", "long", 1)

	if ty, ok := baseTypeTable[specsStr]; ok {
		return ty, nil
	}
	return nil, report.New("unrecognized set of type specifiers", specRange)
}

var baseTypeTable = map[string]types.CType{
	"void": types.CVoid,

	"_Bool": types.CBool,

	"char":          types.CChar,
	"char signed":   types.CChar,
	"char unsigned": types.CUChar,

	"short":              types.CShort,
	"short signed":       types.CShort,
	"int short":          types.CShort,
	"int short signed":   types.CShort,
	"short unsigned":     types.CUShort,
	"int short unsigned": types.CUShort,

	"int":          types.CInt,
	"signed":       types.CInt,
	"int signed":   types.CInt,
	"unsigned":     types.CUInt,
	"int unsigned": types.CUInt,

	"long":              types.CLong,
	"long signed":       types.CLong,
	"int long":          types.CLong,
	"int long signed":   types.CLong,
	"long unsigned":     types.CULong,
	"int long unsigned": types.CULong,
}

func getStorageClass(specs []token.Token, specRange token.Range) (storageClass, *report.CompilerError) {
	storage := storageNone
	for _, s := range specs {
		sc, ok := storageClassOf[s.Kind]
		if !ok {
			continue
		}
		if storage != storageNone {
			return storageNone, report.New(
				"too many storage classes in declaration specifiers", specRange)
		}
		storage = sc
	}
	return storage, nil
}

// makeStructUnionType resolves a struct/union specifier into a
// concrete type: a reference to a visible tag, a forward declaration,
// or a new definition completed with its members.
func (rv *declResolver) makeStructUnionType(su *structSpecNode, redec bool) (types.CType, *report.CompilerError) {
	isUnion := su.kw.Kind == token.UNION
	kindName := "struct"
	if isUnion {
		kindName = "union"
	}

	var ctype *types.StructUnion
	switch {
	case su.tag == nil:
		ctype = types.NewStructUnion("", isUnion)

	case redec:
		// Tag-only declaration: always (re)declares in current scope.
		existing, here := rv.e.st.LookupStructUnionHere(su.tag.Val)
		if here {
			ctype = existing
		} else {
			ctype = types.NewStructUnion(su.tag.Val, isUnion)
			rv.e.st.AddStructUnion(su.tag.Val, ctype)
		}

	default:
		existing, found := rv.e.st.LookupStructUnion(su.tag.Val)
		if found {
			ctype = existing
		} else {
			ctype = types.NewStructUnion(su.tag.Val, isUnion)
			rv.e.st.AddStructUnion(su.tag.Val, ctype)
		}
	}

	if ctype.IsUnion != isUnion {
		return nil, report.Newf(su.r,
			"use of '%s' does not match previous declaration", kindName)
	}

	if su.members == nil {
		return ctype, nil
	}
	if types.IsComplete(ctype) {
		return nil, report.Newf(su.r, "redefinition of %s '%s'", kindName, ctype.Tag)
	}

	members, err := rv.resolveMembers(su.members, kindName)
	if err != nil {
		return nil, err
	}
	ctype.Complete(members)
	return ctype, nil
}

func (rv *declResolver) resolveMembers(roots []*declRoot, kindName string) ([]types.Member, *report.CompilerError) {
	memberRv := &declResolver{e: rv.e, c: rv.c, r: rv.r}
	members := make([]types.Member, 0, len(roots))
	seen := make(map[string]bool)

	for _, root := range roots {
		infos, err := memberRv.getDeclInfos(root)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if err := checkMemberDeclInfo(info, kindName, seen); err != nil {
				return nil, err
			}
			seen[info.identifier.Val] = true
			members = append(members, types.Member{
				Name: info.identifier.Val,
				Type: info.ctype,
			})
		}
	}
	return members, nil
}

func checkMemberDeclInfo(info *declInfo, kindName string, seen map[string]bool) *report.CompilerError {
	if info.identifier == nil {
		return report.Newf(info.r, "missing name of %s member", kindName)
	}
	if info.storage != storageNone {
		return report.Newf(info.r, "cannot have storage specifier on %s member", kindName)
	}
	if types.IsFunction(info.ctype) {
		return report.Newf(info.r, "cannot have function type as %s member", kindName)
	}
	if !types.IsComplete(info.ctype) {
		return report.Newf(info.r, "cannot have incomplete type as %s member", kindName)
	}
	if seen[info.identifier.Val] {
		return report.Newf(info.identifier.R,
			"duplicate member '%s'", info.identifier.Val)
	}
	return nil
}
