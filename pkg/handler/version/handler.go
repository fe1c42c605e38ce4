package version

import (
	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/internal/pkg/version"
	"github.com/binary-blogs/binary-blogs/pkg/response"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetVersion 返回构建信息，客户端可据此判断是否需要刷新
func (h *Handler) GetVersion(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	response.Success(c, version.GetBuildInfo(), "获取版本信息成功")
}
