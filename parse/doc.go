// Package parse implements the recursive-descent parser and the
// declaration resolution engine: declarator trees are built from the
// token stream, combined with type specifiers into concrete types,
// resolved for linkage and storage duration, and emitted as IL.
package parse

// Parser and validator for C declarations and function bodies.
//
// Glossary:
//
// Declarator
// ----------
//
// A declarator is the part of a declaration that specifies
// the name that is to be introduced into the program, together
// with the pointer, array and function derivations applied to it.
//
// e.g.
// unsigned int a, *b, **c, (*d)(int);
//              ^  ^^  ^^^  ^^^^^^^^
//
// Abstract Declarator
// -------------------
//
// A declarator missing an identifier, as found in parameter
// lists such as int f(int, char *).
//
// Declarators are parsed into a tree (decltree.go) and resolved
// to a concrete type from the inside out (declaration.go).
