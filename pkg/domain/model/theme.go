/*
 * @Description: 主题偏好与调色板
 */
package model

// ThemeMode 明暗模式
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Valid 判断是否为已知模式
func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// FontFamily 字体键
type FontFamily string

const (
	FontInter         FontFamily = "inter"
	FontPoppins       FontFamily = "poppins"
	FontRoboto        FontFamily = "roboto"
	FontJetBrainsMono FontFamily = "jetbrains-mono"
)

// FontFamilies 返回所有可选字体
func FontFamilies() []FontFamily {
	return []FontFamily{FontInter, FontPoppins, FontRoboto, FontJetBrainsMono}
}

// Valid 判断是否为已知字体
func (f FontFamily) Valid() bool {
	for _, known := range FontFamilies() {
		if f == known {
			return true
		}
	}
	return false
}

// ColorScheme 是调色板中的一项
type ColorScheme struct {
	Name      string `json:"name"`
	Accent    string `json:"accent"`
	Hover     string `json:"hover"`
	TextLight string `json:"textLight"`
	TextDark  string `json:"textDark"`
	BgLight   string `json:"bgLight"`
	BgDark    string `json:"bgDark"`
	HSL       string `json:"hsl"` // 形如 "217 91% 60%"
}

// ThemePreference 是 ThemeStore 持久化的状态
type ThemePreference struct {
	Theme             ThemeMode  `json:"theme"`
	SelectedColorName string     `json:"selectedColorName"`
	AccentColor       string     `json:"accentColor"`
	FontFamily        FontFamily `json:"fontFamily"`
}

// ThemeProjection 是偏好投影到页面根元素上的结果
type ThemeProjection struct {
	Revision       uint64            `json:"revision"`
	Dark           bool              `json:"dark"`
	Vars           map[string]string `json:"vars"`
	DataAttributes map[string]string `json:"dataAttributes"`
}

// SetThemeRequest 设置明暗模式
type SetThemeRequest struct {
	Theme ThemeMode `json:"theme" binding:"required"`
}

// SetColorSchemeRequest 设置配色
type SetColorSchemeRequest struct {
	Name string `json:"name" binding:"required"`
}

// SetFontRequest 设置字体
type SetFontRequest struct {
	FontFamily FontFamily `json:"fontFamily" binding:"required"`
}
