// Package ast defines the abstract syntax tree produced by lang/parser and
// consumed by lang/compiler.
//
// Unlike the teacher's own AST (a distinct Go type per production, dispatched
// through a Visitor interface), this tree is the single tagged-variant Node
// spec.md §3 specifies: every node carries a Kind, its source Pos, an
// optional Lexeme and an ordered slice of Children. The shape is dictated by
// the data model, not a stylistic choice; see DESIGN.md.
package ast

import (
	"fmt"
	"strings"

	"github.com/pellmell/wbc/lang/token"
)

// Kind tags the production a Node represents.
type Kind int8

//nolint:revive
const (
	PROGRAM Kind = iota
	PROCEDURE
	BLOCK
	IF
	WHILE
	RETURN
	CALL
	OPERATOR
	VAR
	INTEGER
	ARGS // reserved, never constructed by the parser (spec.md §3)

	maxKind
)

var kindNames = [...]string{
	PROGRAM:   "PROGRAM",
	PROCEDURE: "PROCEDURE",
	BLOCK:     "BLOCK",
	IF:        "IF",
	WHILE:     "WHILE",
	RETURN:    "RETURN",
	CALL:      "CALL",
	OPERATOR:  "OPERATOR",
	VAR:       "VAR",
	INTEGER:   "INTEGER",
	ARGS:      "ARGS",
}

func (k Kind) String() string {
	if k >= 0 && k < maxKind {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Node is one node of the AST. Children is nil for leaves (VAR, INTEGER,
// RETURN, and CALL with no arguments).
type Node struct {
	Kind     Kind
	Pos      token.Pos
	Lexeme   string
	Children []*Node
}

// New builds a Node, filtering out any nil children the way the original
// implementation's Node.add_nodes does (callers sometimes pass an absent
// child, e.g. the nil statement the parser yields for an empty `{ }` block).
func New(kind Kind, pos token.Pos, lexeme string, children ...*Node) *Node {
	n := &Node{Kind: kind, Pos: pos, Lexeme: lexeme}
	n.Add(children...)
	return n
}

// Add appends non-nil children in order.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

func (n *Node) String() string {
	if n.Lexeme == "" {
		return n.Kind.String()
	}
	return fmt.Sprintf("%s %s", n.Kind, n.Lexeme)
}

// Dump renders the tree as an indented listing, one node per line, in the
// style of the original implementation's print_tree debug helper. It backs
// the "parse" CLI verb and the parser's tests.
func Dump(root *Node) string {
	var sb strings.Builder
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		sb.WriteString(strings.Repeat(".  ", depth))
		sb.WriteString(n.String())
		sb.WriteByte('\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return sb.String()
}
