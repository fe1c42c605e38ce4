package strutil

import (
	"strings"
	"unicode/utf8"
)

// Truncate 按 rune 截断字符串，超出时追加省略号。截断点落在空白之后时去掉尾部空白。
func Truncate(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:maxLength]), " \t\n") + "..."
}

// CollapseSpace 将连续空白折叠为单个空格并去掉首尾空白
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
