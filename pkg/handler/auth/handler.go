package auth_handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/response"
	"github.com/binary-blogs/binary-blogs/pkg/service/auth"
)

// AuthHandler 封装了所有认证相关的控制器方法
type AuthHandler struct {
	store    *auth.Store
	tokenSvc *auth.TokenService
}

// NewAuthHandler 是 AuthHandler 的构造函数，用于依赖注入
func NewAuthHandler(store *auth.Store, tokenSvc *auth.TokenService) *AuthHandler {
	return &AuthHandler{store: store, tokenSvc: tokenSvc}
}

// respondWithToken 为会话签发令牌并返回
func (h *AuthHandler) respondWithToken(c *gin.Context, session model.Session, message string) {
	resp, err := h.tokenSvc.GenerateSessionToken(c.Request.Context(), session)
	if err != nil {
		log.Printf("[AuthHandler] 生成令牌失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "生成令牌失败: "+err.Error())
		return
	}
	response.Success(c, resp, message)
}

// Login 处理用户登录请求。凭证不做校验，总是登录为演示用户。
// @Summary      用户登录
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.LoginRequest  false  "登录信息"
// @Success      200   {object}  response.Response{data=model.LoginResponse}  "登录成功"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Fail(c, http.StatusBadRequest, "登录请求格式不正确")
		return
	}

	session, err := h.store.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FailWithError(c, "登录失败", err)
		return
	}
	h.respondWithToken(c, session, "登录成功")
}

// GuestLogin 以游客身份登录
// @Summary      游客登录
// @Tags         用户认证
// @Success      200   {object}  response.Response{data=model.LoginResponse}
// @Router       /auth/guest [post]
func (h *AuthHandler) GuestLogin(c *gin.Context) {
	session, err := h.store.GuestLogin(c.Request.Context())
	if err != nil {
		response.FailWithError(c, "游客登录失败", err)
		return
	}
	h.respondWithToken(c, session, "游客登录成功")
}

// Logout 结束当前会话，重复调用也返回成功
// @Summary      退出登录
// @Tags         用户认证
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.store.Logout(c.Request.Context()); err != nil {
		response.FailWithError(c, "退出登录失败", err)
		return
	}
	response.Success(c, nil, "已退出登录")
}

// GetMe 返回当前会话
// @Summary      获取当前会话
// @Tags         用户认证
// @Security     BearerAuth
// @Success      200   {object}  response.Response{data=model.Session}
// @Router       /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	response.Success(c, h.store.Current(), "获取当前用户成功")
}

// UpdateMe 浅合并更新当前用户资料
// @Summary      更新个人资料
// @Tags         用户认证
// @Security     BearerAuth
// @Param        body  body      model.UserPatch  true  "要修改的字段"
// @Success      200   {object}  response.Response{data=model.User}
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var patch model.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数格式不正确")
		return
	}
	user, err := h.store.UpdateUser(c.Request.Context(), patch)
	if err != nil {
		response.FailWithError(c, "更新资料失败", err)
		return
	}
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, "未登录")
		return
	}
	response.Success(c, user, "更新资料成功")
}

// SetGuestAnalytics 替换会话上的统计数据
// @Summary      写入访客统计
// @Tags         用户认证
// @Security     BearerAuth
// @Router       /auth/analytics [put]
func (h *AuthHandler) SetGuestAnalytics(c *gin.Context) {
	var data model.GuestAnalytics
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "统计数据必须是 JSON 对象")
		return
	}
	if err := h.store.SetGuestAnalytics(c.Request.Context(), data); err != nil {
		response.FailWithError(c, "保存统计失败", err)
		return
	}
	response.Success(c, data, "保存统计成功")
}
