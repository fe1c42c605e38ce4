// internal/pkg/parser/html.go
package parser

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/binary-blogs/binary-blogs/internal/pkg/strutil"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

var stripTagsPolicy = bluemonday.StripTagsPolicy()

// StripHTML 接受一个HTML字符串，返回一个去除了所有标签的纯文本字符串。
func StripHTML(htmlContent string) string {
	return html.UnescapeString(stripTagsPolicy.Sanitize(htmlContent))
}

// PlainExcerpt 去标签、折叠空白后按 rune 截断
func PlainExcerpt(htmlContent string, maxRunes int) string {
	// 块级标签之间补空格，避免相邻段落文字粘连
	spaced := strings.NewReplacer("</p>", "</p> ", "</li>", "</li> ", "<br>", " ", "</h", " </h").Replace(htmlContent)
	return strutil.Truncate(strutil.CollapseSpace(StripHTML(spaced)), maxRunes)
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// ExtractOutline 从渲染后的 HTML 中按文档顺序提取标题，生成目录
func ExtractOutline(htmlContent string) ([]model.HeadingItem, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	items := []model.HeadingItem{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level, ok := headingLevels[n.DataAtom]; ok {
				items = append(items, model.HeadingItem{
					Level: level,
					ID:    attr(n, "id"),
					Text:  strutil.CollapseSpace(textContent(n)),
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return items, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
