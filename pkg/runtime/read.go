package runtime

import (
	"strconv"
	"strings"

	"polish/interpreter-go/pkg/parser"
)

// Read converts a syntax tree into a value. Number and symbol leaves become
// scalars; the root and sexpr nodes become S-expressions, qexpr nodes
// Q-expressions. Delimiters and other anonymous nodes are skipped.
func Read(node *parser.Node) Value {
	switch {
	case strings.Contains(node.Kind, parser.KindNumber):
		n, err := strconv.ParseInt(node.Text, 10, 64)
		if err != nil {
			return Errorf(ErrParseFailure, "Invalid number")
		}
		return Num(n)
	case strings.Contains(node.Kind, parser.KindString):
		return Str(node.Text)
	case strings.Contains(node.Kind, parser.KindSymbol):
		return Sym(node.Text)
	}

	var list *List
	var out Value
	switch {
	case strings.Contains(node.Kind, parser.KindQExpr):
		q := NewQExpr()
		list, out = &q.List, q
	default:
		s := NewSExpr()
		list, out = &s.List, s
	}
	for _, child := range node.Children {
		if skipNode(child) {
			continue
		}
		list.Append(Read(child))
	}
	return out
}

// skipNode drops delimiter tokens and any other anonymous grammar node.
func skipNode(n *parser.Node) bool {
	return n == nil || !n.IsNamed()
}

// ReadForms returns one value per top-level form under the root.
func ReadForms(root *parser.Node) []Value {
	forms := make([]Value, 0, len(root.Children))
	for _, child := range root.Children {
		if skipNode(child) {
			continue
		}
		forms = append(forms, Read(child))
	}
	return forms
}
