/*
 * @Description: 主题偏好处理器
 */
package theme

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/response"
	themeSvc "github.com/binary-blogs/binary-blogs/pkg/service/theme"
)

// Handler 主题处理器
type Handler struct {
	store *themeSvc.Store
	hub   *themeSvc.Hub
}

// ThemeState 是 GET /api/theme 的返回
type ThemeState struct {
	Preference model.ThemePreference `json:"preference"`
	Projection model.ThemeProjection `json:"projection"`
}

// NewHandler 创建主题处理器实例
func NewHandler(store *themeSvc.Store, hub *themeSvc.Hub) *Handler {
	return &Handler{store: store, hub: hub}
}

func (h *Handler) respond(c *gin.Context, projection model.ThemeProjection, err error, message string) {
	if err != nil {
		response.FailWithError(c, "更新主题失败", err)
		return
	}
	response.Success(c, ThemeState{Preference: h.store.Preference(), Projection: projection}, message)
}

// GetTheme 获取当前偏好和投影
// @Summary      获取主题
// @Tags         主题
// @Success      200 {object} response.Response{data=ThemeState}
// @Router       /theme [get]
func (h *Handler) GetTheme(c *gin.Context) {
	response.Success(c, ThemeState{Preference: h.store.Preference(), Projection: h.store.Projection()}, "获取主题成功")
}

// GetPalette 获取可选配色
// @Summary      获取配色列表
// @Tags         主题
// @Router       /theme/palette [get]
func (h *Handler) GetPalette(c *gin.Context) {
	response.Success(c, h.store.Palette(), "获取配色成功")
}

// GetCSS 以样式表形式返回当前投影
// @Summary      获取主题 CSS
// @Tags         主题
// @Produce      text/css
// @Router       /theme/css [get]
func (h *Handler) GetCSS(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(h.store.CSS()))
}

// ToggleTheme 在 light、dark、system 之间循环
// @Summary      切换明暗模式
// @Tags         主题
// @Router       /theme/toggle [post]
func (h *Handler) ToggleTheme(c *gin.Context) {
	projection, err := h.store.ToggleTheme(c.Request.Context())
	h.respond(c, projection, err, "切换主题成功")
}

// SetTheme 设置明暗模式
// @Summary      设置明暗模式
// @Tags         主题
// @Param        body body model.SetThemeRequest true "模式"
// @Router       /theme/mode [put]
func (h *Handler) SetTheme(c *gin.Context) {
	var req model.SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "主题模式不能为空")
		return
	}
	projection, err := h.store.SetTheme(c.Request.Context(), req.Theme)
	h.respond(c, projection, err, "设置主题成功")
}

// SetColorScheme 设置配色，未知名称回退到默认配色
// @Summary      设置配色
// @Tags         主题
// @Param        body body model.SetColorSchemeRequest true "配色名称"
// @Router       /theme/color [put]
func (h *Handler) SetColorScheme(c *gin.Context) {
	var req model.SetColorSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "配色名称不能为空")
		return
	}
	projection, err := h.store.SetColorScheme(c.Request.Context(), req.Name)
	h.respond(c, projection, err, "设置配色成功")
}

// SetFontFamily 设置字体
// @Summary      设置字体
// @Tags         主题
// @Param        body body model.SetFontRequest true "字体"
// @Router       /theme/font [put]
func (h *Handler) SetFontFamily(c *gin.Context) {
	var req model.SetFontRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "字体不能为空")
		return
	}
	projection, err := h.store.SetFontFamily(c.Request.Context(), req.FontFamily)
	h.respond(c, projection, err, "设置字体成功")
}

// Stream 升级为 websocket，推送主题投影
// @Summary      主题投影推送
// @Tags         主题
// @Router       /theme/ws [get]
func (h *Handler) Stream(c *gin.Context) {
	h.hub.ServeHTTP(c.Writer, c.Request)
}
