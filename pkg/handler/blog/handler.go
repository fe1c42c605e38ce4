package blog

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/internal/app/middleware"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/response"
	blogSvc "github.com/binary-blogs/binary-blogs/pkg/service/blog"
	"github.com/binary-blogs/binary-blogs/pkg/service/parser"
)

// Renderer 把正文渲染为 HTML 和目录
type Renderer interface {
	Render(ctx context.Context, content string) (*parser.Rendered, error)
}

// SessionSource 提供当前会话，用于生成作者和评论者信息
type SessionSource interface {
	Current() model.Session
}

// Handler 封装了所有与文章相关的 HTTP 处理器。
type Handler struct {
	store    *blogSvc.Store
	renderer Renderer
	sessions SessionSource
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(store *blogSvc.Store, renderer Renderer, sessions SessionSource) *Handler {
	return &Handler{store: store, renderer: renderer, sessions: sessions}
}

// currentUser 返回与令牌一致的当前用户，不一致时返回 nil
func (h *Handler) currentUser(c *gin.Context) *model.User {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil
	}
	session := h.sessions.Current()
	if !session.IsAuthenticated || session.User == nil || session.User.ID != claims.UserID {
		return nil
	}
	return session.User
}

// ListBlogs
// @Summary      获取文章列表
// @Tags         文章
// @Produce      json
// @Param        tag query string false "标签"
// @Param        q query string false "关键词"
// @Param        page query int false "页码" default(1)
// @Param        pageSize query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=model.BlogListResult}
// @Router       /blogs [get]
func (h *Handler) ListBlogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(blogSvc.DefaultPageSize)))

	result := h.store.ListBlogs(model.ListBlogsOptions{
		Tag:      c.Query("tag"),
		Keyword:  c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	response.Success(c, result, "获取文章列表成功")
}

// Tags 返回全部标签及其文章数
func (h *Handler) Tags(c *gin.Context) {
	response.Success(c, h.store.Tags(), "获取标签成功")
}

// GetBlog
// @Summary      获取单篇文章
// @Tags         文章
// @Param        id path string true "文章ID"
// @Success      200 {object} response.Response{data=model.BlogView}
// @Failure      404 {object} response.Response
// @Router       /blogs/{id} [get]
func (h *Handler) GetBlog(c *gin.Context) {
	view := h.store.GetBlog(c.Param("id"))
	if view == nil {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return
	}
	response.Success(c, view, "获取文章成功")
}

// GetBlogBySlug 按 slug 获取文章，同时返回渲染后的 HTML 和目录
// @Summary      按 slug 获取文章详情
// @Tags         文章
// @Param        slug path string true "slug"
// @Success      200 {object} response.Response{data=model.RenderedBlog}
// @Failure      404 {object} response.Response
// @Router       /blogs/slug/{slug} [get]
func (h *Handler) GetBlogBySlug(c *gin.Context) {
	view := h.store.GetBlogBySlug(c.Param("slug"))
	if view == nil {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return
	}
	rendered, err := h.renderer.Render(c.Request.Context(), view.Content)
	if err != nil {
		log.Printf("[Handler.GetBlogBySlug] 渲染文章 %s 失败: %v", view.ID, err)
		response.Fail(c, http.StatusInternalServerError, "渲染文章失败")
		return
	}
	response.Success(c, model.RenderedBlog{
		BlogView: *view,
		HTML:     rendered.HTML,
		Outline:  rendered.Outline,
	}, "获取文章成功")
}

// AddBlog
// @Summary      创建文章
// @Tags         文章
// @Security     BearerAuth
// @Accept       json
// @Param        body body model.CreateBlogRequest true "文章内容"
// @Success      201 {object} response.Response{data=model.BlogView}
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Router       /blogs [post]
func (h *Handler) AddBlog(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, "未登录")
		return
	}
	var req model.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "标题、正文和标签不能为空")
		return
	}

	view, err := h.store.AddBlog(c.Request.Context(), model.BlogDraft{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Author:     user.AsAuthor(),
	})
	if err != nil {
		response.FailWithError(c, "创建文章失败", err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, view, "创建文章成功")
}

// authorize 检查文章存在且属于当前用户，失败时已写入响应
func (h *Handler) authorize(c *gin.Context, id string) bool {
	user := h.currentUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, "未登录")
		return false
	}
	view := h.store.GetBlog(id)
	if view == nil {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return false
	}
	if view.Author.ID != user.ID {
		response.Fail(c, http.StatusForbidden, "只有作者可以修改这篇文章")
		return false
	}
	return true
}

// UpdateBlog
// @Summary      更新文章
// @Tags         文章
// @Security     BearerAuth
// @Param        id path string true "文章ID"
// @Param        body body model.UpdateBlogRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=model.BlogView}
// @Failure      403 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /blogs/{id} [put]
func (h *Handler) UpdateBlog(c *gin.Context) {
	id := c.Param("id")
	var req model.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数格式不正确")
		return
	}
	if (req.Title != nil && *req.Title == "") || (req.Content != nil && *req.Content == "") {
		response.Fail(c, http.StatusBadRequest, "标题和正文不能为空")
		return
	}
	if !h.authorize(c, id) {
		return
	}

	view, err := h.store.UpdateBlog(c.Request.Context(), id, model.BlogPatch{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
	})
	if err != nil {
		response.FailWithError(c, "更新文章失败", err)
		return
	}
	if view == nil {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return
	}
	response.Success(c, view, "更新文章成功")
}

// DeleteBlog
// @Summary      删除文章
// @Tags         文章
// @Security     BearerAuth
// @Param        id path string true "文章ID"
// @Success      200 {object} response.Response
// @Router       /blogs/{id} [delete]
func (h *Handler) DeleteBlog(c *gin.Context) {
	id := c.Param("id")
	if !h.authorize(c, id) {
		return
	}
	deleted, err := h.store.DeleteBlog(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, "删除文章失败", err)
		return
	}
	if !deleted {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return
	}
	response.Success(c, gin.H{"id": id}, "删除文章成功")
}

// ToggleBookmark 切换收藏
func (h *Handler) ToggleBookmark(c *gin.Context) {
	h.mutate(c, "收藏", h.store.ToggleBookmark)
}

// LikeBlog 切换点赞
func (h *Handler) LikeBlog(c *gin.Context) {
	h.mutate(c, "点赞", h.store.LikeBlog)
}

// IncrementView 浏览数加一
func (h *Handler) IncrementView(c *gin.Context) {
	h.mutate(c, "记录浏览", h.store.IncrementView)
}

// mutate 处理只带 id 的写操作，store 返回 nil 表示文章不存在
func (h *Handler) mutate(c *gin.Context, action string, fn func(ctx context.Context, id string) (*model.BlogView, error)) {
	view, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FailWithError(c, action+"失败", err)
		return
	}
	if view == nil {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return
	}
	response.Success(c, view, action+"成功")
}

// IsLiked 查询当前访客是否已点赞
func (h *Handler) IsLiked(c *gin.Context) {
	id := c.Param("id")
	if h.store.GetBlog(id) == nil {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return
	}
	response.Success(c, gin.H{"liked": h.store.IsLikedByUser(id)}, "查询成功")
}

// AddComment
// @Summary      发表评论
// @Tags         文章
// @Security     BearerAuth
// @Param        id path string true "文章ID"
// @Param        body body model.CreateCommentRequest true "评论内容"
// @Success      201 {object} response.Response{data=model.Comment}
// @Router       /blogs/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, "未登录")
		return
	}
	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "评论内容不能为空")
		return
	}

	comment, err := h.store.AddComment(c.Request.Context(), c.Param("id"), model.CommentDraft{
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.Avatar,
		Content:    req.Content,
	})
	if err != nil {
		response.FailWithError(c, "发表评论失败", err)
		return
	}
	if comment == nil {
		response.Fail(c, http.StatusNotFound, "文章不存在")
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, comment, "发表评论成功")
}

// GetBookmarkedBlogs 获取收藏的文章
func (h *Handler) GetBookmarkedBlogs(c *gin.Context) {
	response.Success(c, h.store.GetBookmarkedBlogs(), "获取收藏成功")
}

// GetUserBlogs 获取某个作者的文章
func (h *Handler) GetUserBlogs(c *gin.Context) {
	response.Success(c, h.store.GetUserBlogs(c.Param("id")), "获取作者文章成功")
}
