package index

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// PlainText flattens Markdown into a single line of searchable text.
// Link and emphasis text is kept, inline code keeps its literal, while
// fenced code, images and raw HTML are dropped. Block boundaries become
// a single space.
func PlainText(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	root := markdown.Parse([]byte(md), p)

	var b strings.Builder
	collectText(&b, root)

	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(b *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.Image, *ast.HTMLBlock, *ast.HTMLSpan:
		return
	case *ast.Text:
		b.Write(n.Literal)
		return
	case *ast.Code:
		b.Write(n.Literal)
		return
	case *ast.Softbreak, *ast.Hardbreak:
		b.WriteByte(' ')
		return
	}

	block := isBlock(node)
	if block {
		b.WriteByte(' ')
	}
	for _, child := range node.GetChildren() {
		collectText(b, child)
	}
	if block {
		b.WriteByte(' ')
	}
}

func isBlock(node ast.Node) bool {
	switch node.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.List, *ast.ListItem,
		*ast.BlockQuote, *ast.Table, *ast.TableRow, *ast.TableCell:
		return true
	}
	return false
}
