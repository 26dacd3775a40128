package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Node kinds produced by the parser. Named nodes carry a grammar tag; the
// delimiter tokens are anonymous.
const (
	KindSourceFile = "source_file"
	KindSExpr      = "sexpr"
	KindQExpr      = "qexpr"
	KindNumber     = "number"
	KindSymbol     = "symbol"
	KindString     = "string"
)

var polishLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?[0-9]+`},
	{Name: "Symbol", Pattern: `[a-zA-Z0-9_+\-*/\\=<>!&%^|]+`},
	{Name: "Punct", Pattern: `[(){}]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type sourceFile struct {
	Exprs []*expr `@@*`
}

type expr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Number *string `  @Number`
	String *string `| @String`
	Symbol *string `| @Symbol`
	SExpr  bool    `| ( @"("`
	SItems []*expr `    @@* ")" )`
	QExpr  bool    `| ( @"{"`
	QItems []*expr `    @@* "}" )`
}

// Parser wraps a participle parser configured for polish sources.
type Parser struct {
	parser *participle.Parser[sourceFile]
}

// NewParser constructs a parser with the polish grammar loaded.
func NewParser() (*Parser, error) {
	p, err := participle.Build[sourceFile](
		participle.Lexer(polishLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Parse parses source into a syntax tree rooted at a source_file node. The
// returned error carries the position-prefixed diagnostic.
func (p *Parser) Parse(filename string, source []byte) (*Node, error) {
	if p == nil || p.parser == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}
	file, err := p.parser.ParseBytes(filename, source)
	if err != nil {
		return nil, err
	}
	root := &Node{Kind: KindSourceFile, named: true}
	for _, e := range file.Exprs {
		root.Children = append(root.Children, convertExpr(e))
	}
	return root, nil
}

// ParseString is Parse for string input.
func (p *Parser) ParseString(filename, source string) (*Node, error) {
	return p.Parse(filename, []byte(source))
}

func convertExpr(e *expr) *Node {
	pos := positionOf(e.Pos)
	switch {
	case e.Number != nil:
		return &Node{Kind: KindNumber, Text: *e.Number, Pos: pos, named: true}
	case e.String != nil:
		return &Node{Kind: KindString, Text: *e.String, Pos: pos, named: true}
	case e.Symbol != nil:
		return &Node{Kind: KindSymbol, Text: *e.Symbol, Pos: pos, named: true}
	case e.SExpr:
		return listNode(KindSExpr, "(", ")", e.SItems, pos, positionOf(e.EndPos))
	case e.QExpr:
		return listNode(KindQExpr, "{", "}", e.QItems, pos, positionOf(e.EndPos))
	default:
		return &Node{Kind: KindSExpr, Pos: pos, named: true}
	}
}

func listNode(kind, open, close string, items []*expr, start, end Position) *Node {
	n := &Node{Kind: kind, Pos: start, named: true}
	n.Children = append(n.Children, &Node{Kind: open, Text: open, Pos: start})
	for _, item := range items {
		n.Children = append(n.Children, convertExpr(item))
	}
	closePos := end
	if closePos.Column > 1 {
		closePos.Column--
		closePos.Offset--
	}
	n.Children = append(n.Children, &Node{Kind: close, Text: close, Pos: closePos})
	return n
}

func positionOf(p lexer.Position) Position {
	return Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}
