// internal/pkg/parser/codeblock.go
package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// FallbackLanguage 未识别的代码语言统一标记为纯文本
const FallbackLanguage = "text"

// supportedLanguages 是前端高亮器已加载的语言
var supportedLanguages = map[string]struct{}{
	"javascript": {}, "typescript": {}, "jsx": {}, "tsx": {},
	"python": {}, "java": {}, "go": {}, "rust": {}, "c": {}, "cpp": {},
	"csharp": {}, "php": {}, "ruby": {}, "swift": {}, "kotlin": {},
	"sql": {}, "bash": {}, "json": {}, "yaml": {}, "toml": {},
	"markup": {}, "css": {}, "scss": {}, "markdown": {},
	"docker": {}, "diff": {}, "graphql": {}, "text": {},
}

// languageAliases 常见简写到规范名称
var languageAliases = map[string]string{
	"js":         "javascript",
	"mjs":        "javascript",
	"node":       "javascript",
	"ts":         "typescript",
	"py":         "python",
	"python3":    "python",
	"sh":         "bash",
	"shell":      "bash",
	"zsh":        "bash",
	"console":    "bash",
	"yml":        "yaml",
	"html":       "markup",
	"xml":        "markup",
	"svg":        "markup",
	"md":         "markdown",
	"golang":     "go",
	"c++":        "cpp",
	"cc":         "cpp",
	"cs":         "csharp",
	"c#":         "csharp",
	"rb":         "ruby",
	"rs":         "rust",
	"kt":         "kotlin",
	"dockerfile": "docker",
	"gql":        "graphql",
	"txt":        "text",
	"plain":      "text",
	"plaintext":  "text",
}

// NormalizeLanguage 将 info string 的第一个词映射为受支持的语言名
func NormalizeLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return FallbackLanguage
	}
	lang := strings.ToLower(fields[0])
	if alias, ok := languageAliases[lang]; ok {
		lang = alias
	}
	if _, ok := supportedLanguages[lang]; !ok {
		return FallbackLanguage
	}
	return lang
}

// codeRenderer 覆盖默认的代码块与行内代码渲染
type codeRenderer struct{}

// RegisterFuncs 实现 renderer.NodeRenderer
func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderIndentedCodeBlock)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
}

func (r *codeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	writeCodeBlock(w, source, n.Lines(), NormalizeLanguage(info))
	return ast.WalkSkipChildren, nil
}

func (r *codeRenderer) renderIndentedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	writeCodeBlock(w, source, node.Lines(), FallbackLanguage)
	return ast.WalkSkipChildren, nil
}

// writeCodeBlock 输出带语言标签和复制按钮的代码块容器，代码正文做 HTML 转义
func writeCodeBlock(w util.BufWriter, source []byte, lines *text.Segments, lang string) {
	_, _ = w.WriteString(`<div class="code-block" data-language="` + lang + `">`)
	_, _ = w.WriteString(`<div class="code-block-header"><span class="code-block-lang">` + lang + `</span>`)
	_, _ = w.WriteString(`<button type="button" class="code-copy-btn" data-action="copy">Copy</button></div>`)
	_, _ = w.WriteString(`<pre class="language-` + lang + `"><code class="language-` + lang + `">`)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("</code></pre></div>\n")
}

func (r *codeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code class="inline-code">`)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch t := c.(type) {
		case *ast.Text:
			value = t.Segment.Value(source)
		case *ast.String:
			value = t.Value
		default:
			continue
		}
		// 行内代码中的换行按空格处理
		if bytes.HasSuffix(value, []byte("\n")) {
			_, _ = w.Write(util.EscapeHTML(value[:len(value)-1]))
			_ = w.WriteByte(' ')
			continue
		}
		_, _ = w.Write(util.EscapeHTML(value))
	}
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}
