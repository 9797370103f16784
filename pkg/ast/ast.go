// Package ast declares the syntax tree for Java compilation units.
//
// The node set is closed: every node implements an unexported marker
// method, so consumers dispatch with exhaustive type switches. Nodes are
// produced by pkg/parser and treated as read-only afterwards.
package ast

// Node is the base interface for all syntax nodes.
type Node interface {
	// Pos returns the byte offset of the first character of the node.
	Pos() int
	// End returns the byte offset just past the node.
	End() int
	// Kind returns the node kind.
	Kind() Kind
	node()
}

// Expr is implemented by expression and type nodes. Java type names are
// expressions (Identifier, MemberSelect), so both share one interface.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Extent is the source range of a node.
type Extent struct {
	From int
	To   int
}

// Pos implements Node.
func (e Extent) Pos() int { return e.From }

// End implements Node.
func (e Extent) End() int { return e.To }

// Span returns an extent covering [from, to).
func Span(from, to int) Extent { return Extent{From: from, To: to} }
