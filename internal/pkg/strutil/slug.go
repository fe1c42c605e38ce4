package strutil

import (
	"strings"
	"unicode"
)

// Slugify 由标题生成 URL 片段：转小写，保留字母和数字（含中文等），
// 空白、'-'、'_' 的连续片段折叠为一个 '-'，其它字符丢弃，去掉首尾的 '-'。
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingDash = true
		}
	}
	return b.String()
}
