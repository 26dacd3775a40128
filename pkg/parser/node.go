package parser

import (
	"fmt"
	"strings"
)

// Position locates a node in its source.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Node is a syntax tree node. Named nodes carry a grammar tag in Kind; leaves
// carry their literal text.
type Node struct {
	Kind     string
	Text     string
	Pos      Position
	Children []*Node

	named bool
}

// IsNamed reports whether the node is a grammar rule rather than a delimiter.
func (n *Node) IsNamed() bool { return n != nil && n.named }

// ChildCount returns the number of children, delimiters included.
func (n *Node) ChildCount() int { return len(n.Children) }

// NamedChildren returns the children that are grammar rules.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

// SExpr renders the tree in a compact debugging form, e.g.
// (source_file (sexpr "(" (symbol +) (number 1) ")")).
func (n *Node) SExpr() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if !n.named {
		fmt.Fprintf(b, "%q", n.Kind)
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Kind)
	if len(n.Children) == 0 && n.Text != "" {
		b.WriteByte(' ')
		b.WriteString(n.Text)
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}
