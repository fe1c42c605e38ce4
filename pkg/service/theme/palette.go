package theme

import (
	"strings"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

// palette 是固定的 7 种配色，第一项为默认值
var palette = []model.ColorScheme{
	{Name: "Blue", Accent: "#3b82f6", Hover: "#2563eb", TextLight: "#1d4ed8", TextDark: "#93c5fd", BgLight: "#eff6ff", BgDark: "#1e3a8a", HSL: "217 91% 60%"},
	{Name: "Purple", Accent: "#8b5cf6", Hover: "#7c3aed", TextLight: "#6d28d9", TextDark: "#c4b5fd", BgLight: "#f5f3ff", BgDark: "#4c1d95", HSL: "258 90% 66%"},
	{Name: "Green", Accent: "#10b981", Hover: "#059669", TextLight: "#047857", TextDark: "#6ee7b7", BgLight: "#ecfdf5", BgDark: "#064e3b", HSL: "160 84% 39%"},
	{Name: "Orange", Accent: "#f97316", Hover: "#ea580c", TextLight: "#c2410c", TextDark: "#fdba74", BgLight: "#fff7ed", BgDark: "#7c2d12", HSL: "25 95% 53%"},
	{Name: "Pink", Accent: "#ec4899", Hover: "#db2777", TextLight: "#be185d", TextDark: "#f9a8d4", BgLight: "#fdf2f8", BgDark: "#831843", HSL: "330 81% 60%"},
	{Name: "Red", Accent: "#ef4444", Hover: "#dc2626", TextLight: "#b91c1c", TextDark: "#fca5a5", BgLight: "#fef2f2", BgDark: "#7f1d1d", HSL: "0 84% 60%"},
	{Name: "Teal", Accent: "#14b8a6", Hover: "#0d9488", TextLight: "#0f766e", TextDark: "#5eead4", BgLight: "#f0fdfa", BgDark: "#134e4a", HSL: "173 80% 40%"},
}

// Palette 返回调色板副本
func Palette() []model.ColorScheme {
	return append([]model.ColorScheme(nil), palette...)
}

// LookupScheme 按名称查找配色，大小写不敏感。找不到时返回第一项，found 为 false。
func LookupScheme(name string) (scheme model.ColorScheme, found bool) {
	for _, s := range palette {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return palette[0], false
}
