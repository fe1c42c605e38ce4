// internal/pkg/parser/markdown.go
package parser

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	mdParser goldmark.Markdown
	policy   *bluemonday.Policy
)

func init() {
	mdParser = NewMarkdown()
	policy = NewPolicy()
}

// NewMarkdown 创建 Goldmark 实例：解析为 AST，经 transformer 装饰后由自定义渲染器输出
func NewMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // 表格、删除线、任务列表、自动链接
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&headingClassTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(), // 原始 HTML 交给 bluemonday 清理
			renderer.WithNodeRenderers(
				// 优先级数值小于默认 HTML 渲染器 (1000)，覆盖代码相关节点
				util.Prioritized(&codeRenderer{}, 100),
			),
		),
	)
}

// NewPolicy 基于 UGCPolicy 放行渲染器输出的 class、data-* 与代码块按钮
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div", "span", "button", "pre", "code", "table", "thead", "tbody", "tr", "th", "td", "del", "input")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements(
		"div", "span", "button", "pre", "code", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "p", "blockquote", "table", "a", "img", "sup", "section", "hr",
	)
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup", "div")
	p.AllowAttrs("type").Matching(bluemonday.SpaceSeparatedTokens).OnElements("button", "input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("data-language").OnElements("div")
	p.AllowAttrs("data-action").OnElements("button")
	p.AllowAttrs("align").OnElements("th", "td")
	p.AllowAttrs("role").OnElements("a", "sup", "section", "li", "div")
	return p
}

// MarkdownToHTML 将 Markdown 字符串转换为安全的 HTML 字符串
func MarkdownToHTML(mdContent string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(mdContent), &buf); err != nil {
		return "", err
	}
	return policy.Sanitize(buf.String()), nil
}
