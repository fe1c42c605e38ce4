package render

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/pkg/response"
	"github.com/binary-blogs/binary-blogs/pkg/service/parser"
)

// MaxPreviewBytes 预览正文的最大长度
const MaxPreviewBytes = 1 << 20

// PreviewRequest 预览请求体
type PreviewRequest struct {
	Content string `json:"content"`
}

type Handler struct {
	parser *parser.Service
}

func NewHandler(parser *parser.Service) *Handler {
	return &Handler{parser: parser}
}

// Preview 渲染 Markdown 预览，返回 HTML 和目录
// @Summary      Markdown 预览
// @Tags         辅助工具
// @Param        body body PreviewRequest true "正文"
// @Success      200 {object} response.Response{data=parser.Rendered}
// @Router       /render [post]
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数格式不正确")
		return
	}
	if len(req.Content) > MaxPreviewBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, "正文过长")
		return
	}
	rendered, err := h.parser.Render(c.Request.Context(), req.Content)
	if err != nil {
		log.Printf("[RenderHandler] 渲染失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "渲染失败")
		return
	}
	response.Success(c, rendered, "渲染成功")
}
