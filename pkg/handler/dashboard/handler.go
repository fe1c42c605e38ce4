package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/internal/app/middleware"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/response"
	dashboardSvc "github.com/binary-blogs/binary-blogs/pkg/service/dashboard"
)

// SessionSource 提供当前会话上的统计数据
type SessionSource interface {
	Current() model.Session
}

type Handler struct {
	svc      *dashboardSvc.Service
	sessions SessionSource
}

func NewHandler(svc *dashboardSvc.Service, sessions SessionSource) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// GetDashboard 返回当前用户的仪表盘
// @Summary      作者仪表盘
// @Tags         仪表盘
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dashboard.Dashboard}
// @Router       /dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, "未登录")
		return
	}
	response.Success(c, h.svc.ForAuthor(claims.UserID, h.sessions.Current().GuestAnalytics), "获取仪表盘成功")
}
