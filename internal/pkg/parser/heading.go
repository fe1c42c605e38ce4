// internal/pkg/parser/heading.go
package parser

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// headingClassTransformer 为每个标题节点加上 md-heading 与层级 class
type headingClassTransformer struct{}

// Transform 实现 parser.ASTTransformer
func (t *headingClassTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			h.SetAttributeString("class", []byte(fmt.Sprintf("md-heading md-h%d", h.Level)))
		}
		return ast.WalkContinue, nil
	})
}
