package parse

import "mincc/token"

// The declarator tree. Each declarator is a chain of modifier nodes
// ending in exactly one identNode (whose token may be absent for
// abstract declarators). Modifiers are recorded outermost-first while
// parsing and resolved innermost-first during type construction.
type declNode interface {
	declRange() token.Range
}

// declRoot is one declaration line: the specifier tokens shared by all
// declarators, the declarator trees and their parallel optional
// initializers.
type declRoot struct {
	specs []token.Token
	su    *structSpecNode
	decls []declNode
	inits []expr
	r     token.Range
}

// anyDecl reports whether the line declared at least one declarator.
// A bare specifier line like `struct X;` has none.
func (d *declRoot) anyDecl() bool { return len(d.decls) > 0 }

type ptrNode struct {
	child  declNode
	constQ bool
	r      token.Range
}

func (n *ptrNode) declRange() token.Range { return n.r }

// arrayNode with a nil size expression is an incomplete array
// declarator.
type arrayNode struct {
	size  expr
	child declNode
	r     token.Range
}

func (n *arrayNode) declRange() token.Range { return n.r }

type funcNode struct {
	args  []*declRoot
	child declNode
	r     token.Range
}

func (n *funcNode) declRange() token.Range { return n.r }

// identNode terminates a declarator chain. tok is nil for abstract
// declarators.
type identNode struct {
	tok *token.Token
	r   token.Range
}

func (n *identNode) declRange() token.Range { return n.r }

// terminal follows child links down to the identifier node every
// declarator chain ends in.
func terminal(d declNode) *identNode {
	for {
		switch n := d.(type) {
		case *ptrNode:
			d = n.child
		case *arrayNode:
			d = n.child
		case *funcNode:
			d = n.child
		case *identNode:
			return n
		default:
			panic("unreachable")
		}
	}
}
