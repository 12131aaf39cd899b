package host

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"i18nc-go/packages/i18nc/ast"
)

// Tree-sitter node types shared by the javascript, typescript and tsx grammars
const (
	nodeImportStatement = "import_statement"
	nodeImportSpecifier = "import_specifier"
	nodeCallExpression  = "call_expression"
	nodeIdentifier      = "identifier"
	nodeArguments       = "arguments"
	nodeComment         = "comment"
	nodeString          = "string"
	nodeHashBang        = "hash_bang_line"
	nodeExpression      = "expression_statement"
)

func spanOf(n *sitter.Node) ast.Span {
	return ast.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

// wrap adapts a tree-sitter node to the ast view
func wrap(n *sitter.Node, src []byte) ast.Node {
	switch n.Type() {
	case nodeIdentifier:
		return &ast.Ident{Value: n.Content(src), At: spanOf(n)}
	case nodeCallExpression:
		return &callNode{node: n, src: src}
	default:
		return &ast.Expr{At: spanOf(n)}
	}
}

// callNode is a lazily evaluated ast.CallExpression over a tree-sitter node
type callNode struct {
	node *sitter.Node
	src  []byte
}

func (c *callNode) Kind() ast.Kind { return ast.KindCall }
func (c *callNode) Span() ast.Span { return spanOf(c.node) }

func (c *callNode) Callee() ast.Node {
	fn := c.node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	return wrap(fn, c.src)
}

// Arguments returns the call's argument expressions. A tagged template call
// has its template as the only argument.
func (c *callNode) Arguments() []ast.Node {
	args := c.node.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	if args.Type() != nodeArguments {
		return []ast.Node{wrap(args, c.src)}
	}
	var out []ast.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == nodeComment {
			continue
		}
		out = append(out, wrap(child, c.src))
	}
	return out
}

func (c *callNode) ArgumentsSpan() ast.Span {
	args := c.node.ChildByFieldName("arguments")
	if args == nil {
		end := int(c.node.EndByte())
		return ast.Span{Start: end, End: end}
	}
	return spanOf(args)
}

// importSpecifiers returns the named specifiers of an import statement
func importSpecifiers(stmt *sitter.Node, src []byte) []ast.ImportSpecifier {
	source := ""
	if s := stmt.ChildByFieldName("source"); s != nil {
		source = unquote(s.Content(src))
	}

	var specs []ast.ImportSpecifier
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != nodeImportSpecifier {
				visit(child)
				continue
			}
			name := child.ChildByFieldName("name")
			if name == nil {
				continue
			}
			exported := unquote(name.Content(src))
			local := exported
			if alias := child.ChildByFieldName("alias"); alias != nil {
				local = alias.Content(src)
			}
			specs = append(specs, ast.ImportSpecifier{
				Source:     source,
				ExportName: exported,
				LocalName:  local,
			})
		}
	}
	visit(stmt)
	return specs
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}

// prologueEnd returns the offset after a leading hashbang line and directive
// prologue ("use client"; "use strict"), where injected imports must go
func prologueEnd(root *sitter.Node) int {
	end := 0
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch {
		case child.Type() == nodeHashBang:
			end = int(child.EndByte())
		case child.Type() == nodeComment:
			continue
		case child.Type() == nodeExpression && child.NamedChildCount() == 1 &&
			child.NamedChild(0).Type() == nodeString:
			end = int(child.EndByte())
		default:
			return end
		}
	}
	return end
}
