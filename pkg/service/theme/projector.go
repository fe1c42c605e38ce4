package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

// CSS 自定义属性名
const (
	VarAccentColor  = "--accent-color"
	VarAccentText   = "--accent-color-text"
	VarAccentBg     = "--accent-color-bg"
	VarAccentBright = "--accent-color-bright"
	VarAccentHover  = "--accent-hover"
)

// DefaultPreference 首次启动时的偏好
func DefaultPreference() model.ThemePreference {
	scheme := palette[0]
	return model.ThemePreference{
		Theme:             model.ThemeSystem,
		SelectedColorName: scheme.Name,
		AccentColor:       scheme.Accent,
		FontFamily:        model.FontInter,
	}
}

// nextMode light -> dark -> system -> light
func nextMode(m model.ThemeMode) model.ThemeMode {
	switch m {
	case model.ThemeLight:
		return model.ThemeDark
	case model.ThemeDark:
		return model.ThemeSystem
	default:
		return model.ThemeLight
	}
}

// withColorScheme 设置配色，未知名称回退到调色板第一项
func withColorScheme(p model.ThemePreference, name string) model.ThemePreference {
	scheme, _ := LookupScheme(name)
	p.SelectedColorName = scheme.Name
	p.AccentColor = scheme.Accent
	return p
}

// resolveDark 把模式解析为是否使用暗色
func resolveDark(mode model.ThemeMode, systemPrefersDark bool) bool {
	switch mode {
	case model.ThemeDark:
		return true
	case model.ThemeLight:
		return false
	default:
		return systemPrefersDark
	}
}

// Project 按固定顺序把偏好投影为页面状态：先决定明暗，再计算配色变量，最后是 data 属性
func Project(p model.ThemePreference, systemPrefersDark bool, revision uint64) model.ThemeProjection {
	dark := resolveDark(p.Theme, systemPrefersDark)

	scheme, _ := LookupScheme(p.SelectedColorName)
	text, bg := scheme.TextLight, scheme.BgLight
	if dark {
		text, bg = scheme.TextDark, scheme.BgDark
	}
	vars := map[string]string{
		VarAccentColor:  scheme.Accent,
		VarAccentText:   text,
		VarAccentBg:     bg,
		VarAccentBright: scheme.HSL,
		VarAccentHover:  scheme.Hover,
	}

	mode := "light"
	if dark {
		mode = "dark"
	}
	attrs := map[string]string{
		"data-theme":        mode,
		"data-color-scheme": strings.ToLower(scheme.Name),
		"data-font":         string(p.FontFamily),
	}

	return model.ThemeProjection{Revision: revision, Dark: dark, Vars: vars, DataAttributes: attrs}
}

// RenderCSS 把投影渲染为一条 :root 规则
func RenderCSS(p model.ThemeProjection) string {
	keys := make([]string, 0, len(p.Vars))
	for k := range p.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root{")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s:%s;", k, p.Vars[k])
	}
	if p.Dark {
		b.WriteString("color-scheme:dark;")
	} else {
		b.WriteString("color-scheme:light;")
	}
	b.WriteString("}")
	return b.String()
}
