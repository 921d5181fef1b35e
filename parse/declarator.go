package parse

import (
	"mincc/token"
)

var simpleTypeSpecs = map[token.Kind]bool{
	token.VOID:     true,
	token.BOOL:     true,
	token.CHAR:     true,
	token.SHORT:    true,
	token.INT:      true,
	token.LONG:     true,
	token.SIGNED:   true,
	token.UNSIGNED: true,
}

var typeQuals = map[token.Kind]bool{
	token.CONST: true,
}

var storageSpecs = map[token.Kind]bool{
	token.AUTO:    true,
	token.STATIC:  true,
	token.EXTERN:  true,
	token.TYPEDEF: true,
}

// structSpecNode is the parsed form of a struct or union specifier
// appearing in a declaration's specifier list. members is nil when the
// specifier has no body (a reference or forward declaration).
type structSpecNode struct {
	kw      token.Token
	tag     *token.Token
	members []*declRoot
	r       token.Range
}

// Classification of the type-specifier tokens seen so far; the three
// classes are mutually exclusive on one declaration line.
const (
	specNone = iota
	specSimple
	specStruct
	specTypedef
)

// parseDeclSpecifiers parses the run of storage-class, type-qualifier
// and type-specifier tokens that opens a declaration. Storage classes
// are accepted wherever specifiers are; positions that cannot carry
// one (members, parameters) are diagnosed during resolution, where the
// message can name the construct.
func (p *parser) parseDeclSpecifiers(index int) ([]token.Token, *structSpecNode, int, *parseError) {
	var specs []token.Token
	var su *structSpecNode
	class := specNone

	for index < len(p.tokens) {
		tok := p.tokens[index]
		switch {
		case class == specNone && tok.Kind == token.IDENT && p.isTypedefName(tok):
			specs = append(specs, tok)
			index++
			class = specTypedef

		case (class == specNone || class == specSimple) && simpleTypeSpecs[tok.Kind]:
			specs = append(specs, tok)
			index++
			class = specSimple

		case class == specNone && (tok.Kind == token.STRUCT || tok.Kind == token.UNION):
			var err *parseError
			specs = append(specs, tok)
			su, index, err = p.parseStructUnionSpec(index)
			if err != nil {
				return nil, nil, 0, err
			}
			class = specStruct

		case typeQuals[tok.Kind]:
			specs = append(specs, tok)
			index++

		case storageSpecs[tok.Kind]:
			specs = append(specs, tok)
			index++

		default:
			if len(specs) == 0 {
				return nil, nil, 0, p.errAt("expected declaration specifier", index)
			}
			return specs, su, index, nil
		}
	}
	if len(specs) == 0 {
		return nil, nil, 0, p.errAt("expected declaration specifier", index)
	}
	return specs, su, index, nil
}

// parseStructUnionSpec parses `struct`/`union`, an optional tag, and
// an optional member body.
func (p *parser) parseStructUnionSpec(index int) (*structSpecNode, int, *parseError) {
	start := index
	kw := p.tokens[index]
	index++

	node := &structSpecNode{kw: kw}
	if p.tokenIs(index, token.IDENT) {
		tok := p.tokens[index]
		node.tag = &tok
		index++
	}

	if p.tokenIs(index, token.LBRACE) {
		index++
		members, next, err := p.parseStructUnionMembers(index)
		if err != nil {
			return nil, 0, err
		}
		node.members = members
		index = next
	} else if node.tag == nil {
		return nil, 0, p.errAfter("expected struct or union name or body", index)
	}

	node.r = p.rangeBetween(start, index)
	return node, index, nil
}

func (p *parser) parseStructUnionMembers(index int) ([]*declRoot, int, *parseError) {
	var members []*declRoot
	for {
		if p.tokenIs(index, token.RBRACE) {
			return members, index + 1, nil
		}
		if index >= len(p.tokens) {
			return nil, 0, p.errAfter("expected closing brace of member list", index)
		}
		node, next, err := p.parseDeclsInits(index, false)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, node)
		index = next
	}
}

// parseDeclsInits parses one declaration line: specifiers, then zero
// or more comma-separated declarators with optional initializers, then
// a semicolon.
func (p *parser) parseDeclsInits(index int, parseInits bool) (*declRoot, int, *parseError) {
	start := index
	specs, su, index, err := p.parseDeclSpecifiers(index)
	if err != nil {
		return nil, 0, err
	}

	root := &declRoot{specs: specs, su: su}

	if p.tokenIs(index, token.SEMICOLON) {
		root.r = p.rangeBetween(start, index+1)
		return root, index + 1, nil
	}

	isTypedef := false
	for _, s := range specs {
		if s.Kind == token.TYPEDEF {
			isTypedef = true
		}
	}

	for {
		node, next, err := p.parseDeclarator(index, isTypedef)
		if err != nil {
			return nil, 0, err
		}
		index = next
		root.decls = append(root.decls, node)

		if p.tokenIs(index, token.ASSIGN) && parseInits {
			init, next, err := p.parseAssignment(index + 1)
			if err != nil {
				return nil, 0, err
			}
			index = next
			root.inits = append(root.inits, init)
		} else {
			root.inits = append(root.inits, nil)
		}

		if p.tokenIs(index, token.COMMA) {
			index++
		} else {
			break
		}
	}

	index, err = p.matchToken(index, token.SEMICOLON)
	if err != nil {
		return nil, 0, err
	}
	root.r = p.rangeBetween(start, index)
	return root, index, nil
}

// parseDeclarator locates the end of the declarator starting at index
// and recursively splits the token span into a declarator tree.
func (p *parser) parseDeclarator(index int, isTypedef bool) (declNode, int, *parseError) {
	end, err := p.findDeclEnd(index)
	if err != nil {
		return nil, 0, err
	}
	node, err := p.parseDeclaratorRange(index, end, isTypedef)
	if err != nil {
		return nil, 0, err
	}
	return node, end, nil
}

// findDeclEnd scans forward past the tokens that can form a
// declarator, balancing parentheses and brackets.
func (p *parser) findDeclEnd(index int) (int, *parseError) {
	switch {
	case p.tokenIs(index, token.MUL),
		p.tokenIs(index, token.IDENT),
		p.tokenIs(index, token.CONST):
		return p.findDeclEnd(index + 1)
	case p.tokenIs(index, token.LPAREN):
		close, err := p.findPairForward(index, token.LPAREN, token.RPAREN,
			"mismatched parentheses in declaration")
		if err != nil {
			return 0, err
		}
		return p.findDeclEnd(close + 1)
	case p.tokenIs(index, token.LBRACK):
		close, err := p.findPairForward(index, token.LBRACK, token.RBRACK,
			"mismatched square brackets in declaration")
		if err != nil {
			return 0, err
		}
		return p.findDeclEnd(close + 1)
	default:
		return index, nil
	}
}

func (p *parser) findPairForward(index int, open, close token.Kind, msg string) (int, *parseError) {
	depth := 0
	for i := index; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			return i, nil
		}
	}
	return 0, p.errAt(msg, index)
}

func (p *parser) findPairBackward(index int, open, close token.Kind, msg string) (int, *parseError) {
	depth := 0
	for i := index; i >= 0; i-- {
		switch p.tokens[i].Kind {
		case close:
			depth++
		case open:
			depth--
		}
		if depth == 0 {
			return i, nil
		}
	}
	return 0, p.errAt(msg, index)
}

// parseDeclaratorRange parses tokens [start, end) as one declarator.
func (p *parser) parseDeclaratorRange(start, end int, isTypedef bool) (declNode, *parseError) {
	node, err := p.parseDeclaratorRaw(start, end, isTypedef)
	if err != nil {
		return nil, err
	}
	r := p.rangeBetween(start, end)
	switch n := node.(type) {
	case *ptrNode:
		n.r = r
	case *arrayNode:
		n.r = r
	case *funcNode:
		n.r = r
	case *identNode:
		n.r = r
	}
	return node, nil
}

func (p *parser) parseDeclaratorRaw(start, end int, isTypedef bool) (declNode, *parseError) {
	if start == end {
		return &identNode{}, nil
	}

	if start+1 == end && p.tokenIs(start, token.IDENT) {
		tok := p.tokens[start]
		p.addSymbol(tok.Val, isTypedef)
		return &identNode{tok: &tok}, nil
	}

	if p.tokenIs(start, token.MUL) {
		constQ, index := p.findConst(start + 1)
		child, err := p.parseDeclaratorRange(index, end, isTypedef)
		if err != nil {
			return nil, err
		}
		return &ptrNode{child: child, constQ: constQ}, nil
	}

	if fn := p.tryParseFuncDecl(start, end, isTypedef); fn != nil {
		return fn, nil
	}

	if p.tokenIs(start, token.LPAREN) {
		if close, err := p.findPairForward(start, token.LPAREN, token.RPAREN,
			"mismatched parentheses in declaration"); err == nil && close == end-1 {
			return p.parseDeclaratorRange(start+1, end-1, isTypedef)
		}
	}

	if p.tokenIs(end-1, token.RBRACK) {
		openSq, err := p.findPairBackward(end-1, token.LBRACK, token.RBRACK,
			"mismatched square brackets in declaration")
		if err != nil {
			return nil, err
		}
		var size expr
		if openSq != end-2 {
			var index int
			size, index, err = p.parseExpression(openSq + 1)
			if err != nil {
				return nil, err
			}
			if index != end-1 {
				return nil, p.errAfter("unexpected token in array size", index)
			}
		}
		child, err := p.parseDeclaratorRange(start, openSq, isTypedef)
		if err != nil {
			return nil, err
		}
		return &arrayNode{size: size, child: child}, nil
	}

	return nil, p.errAt("faulty declaration syntax", start)
}

// tryParseFuncDecl speculatively parses a trailing parameter list. It
// returns nil when the span is not a function declarator; the failed
// attempt still feeds the furthest-error tracker.
func (p *parser) tryParseFuncDecl(start, end int, isTypedef bool) *funcNode {
	if !p.tokenIs(end-1, token.RPAREN) {
		return nil
	}
	openParen, err := p.findPairBackward(end-1, token.LPAREN, token.RPAREN,
		"mismatched parentheses in declaration")
	if err != nil || openParen < start {
		return nil
	}
	params, index, err := p.parseParameterList(openParen + 1)
	if err != nil || index != end-1 {
		return nil
	}
	child, err := p.parseDeclaratorRange(start, openParen, isTypedef)
	if err != nil {
		return nil
	}
	return &funcNode{args: params, child: child}
}

// parseParameterList parses a comma-separated parameter list. Each
// parameter reuses the declaration grammar with a single, possibly
// abstract, declarator and no initializer.
func (p *parser) parseParameterList(index int) ([]*declRoot, int, *parseError) {
	var params []*declRoot

	if p.tokenIs(index, token.RPAREN) {
		return params, index, nil
	}

	for {
		start := index
		specs, su, next, err := p.parseDeclSpecifiers(index)
		if err != nil {
			return nil, 0, err
		}
		index = next
		decl, next, err := p.parseDeclarator(index, false)
		if err != nil {
			return nil, 0, err
		}
		index = next
		params = append(params, &declRoot{
			specs: specs,
			su:    su,
			decls: []declNode{decl},
			inits: []expr{nil},
			r:     p.rangeBetween(start, index),
		})

		if p.tokenIs(index, token.COMMA) {
			index++
		} else {
			break
		}
	}

	return params, index, nil
}

func (p *parser) findConst(index int) (bool, int) {
	if p.tokenIs(index, token.CONST) {
		return true, index + 1
	}
	return false, index
}
