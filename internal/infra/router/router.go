// internal/infra/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/binary-blogs/binary-blogs/internal/app/middleware"
	auth_handler "github.com/binary-blogs/binary-blogs/pkg/handler/auth"
	blog_handler "github.com/binary-blogs/binary-blogs/pkg/handler/blog"
	dashboard_handler "github.com/binary-blogs/binary-blogs/pkg/handler/dashboard"
	render_handler "github.com/binary-blogs/binary-blogs/pkg/handler/render"
	theme_handler "github.com/binary-blogs/binary-blogs/pkg/handler/theme"
	version_handler "github.com/binary-blogs/binary-blogs/pkg/handler/version"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

// RateLimit 写接口的频率限制配置
type RateLimit struct {
	PerMinute int
	Burst     int
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	authHandler      *auth_handler.AuthHandler
	blogHandler      *blog_handler.Handler
	dashboardHandler *dashboard_handler.Handler
	renderHandler    *render_handler.Handler
	themeHandler     *theme_handler.Handler
	versionHandler   *version_handler.Handler
	mw               *middleware.Middleware
	rateLimit        RateLimit
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	authHandler *auth_handler.AuthHandler,
	blogHandler *blog_handler.Handler,
	dashboardHandler *dashboard_handler.Handler,
	renderHandler *render_handler.Handler,
	themeHandler *theme_handler.Handler,
	versionHandler *version_handler.Handler,
	mw *middleware.Middleware,
	rateLimit RateLimit,
) *Router {
	return &Router{
		authHandler:      authHandler,
		blogHandler:      blogHandler,
		dashboardHandler: dashboardHandler,
		renderHandler:    renderHandler,
		themeHandler:     themeHandler,
		versionHandler:   versionHandler,
		mw:               mw,
		rateLimit:        rateLimit,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Metrics(), middleware.Cors())
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := engine.Group("/api")
	apiGroup.Use(NoCacheMiddleware(), middleware.WriteRateLimit(r.rateLimit.PerMinute, r.rateLimit.Burst))

	r.registerBlogRoutes(apiGroup)
	r.registerAuthRoutes(apiGroup)
	r.registerThemeRoutes(apiGroup)

	apiGroup.POST("/render", r.renderHandler.Preview)
	apiGroup.GET("/dashboard", r.mw.JWTAuth(), r.dashboardHandler.GetDashboard)
	apiGroup.GET("/version", r.versionHandler.GetVersion)
}

func (r *Router) registerBlogRoutes(api *gin.RouterGroup) {
	blogs := api.Group("/blogs")
	{
		blogs.GET("", r.blogHandler.ListBlogs)
		blogs.GET("/:id", r.blogHandler.GetBlog)
		blogs.GET("/slug/:slug", r.blogHandler.GetBlogBySlug)
		blogs.GET("/:id/liked", r.blogHandler.IsLiked)

		blogs.POST("/:id/bookmark", r.blogHandler.ToggleBookmark)
		blogs.POST("/:id/like", r.blogHandler.LikeBlog)
		blogs.POST("/:id/view", r.blogHandler.IncrementView)

		blogs.POST("", r.mw.JWTAuth(), r.blogHandler.AddBlog)
		blogs.PUT("/:id", r.mw.JWTAuth(), r.blogHandler.UpdateBlog)
		blogs.DELETE("/:id", r.mw.JWTAuth(), r.blogHandler.DeleteBlog)
		blogs.POST("/:id/comments", r.mw.JWTAuth(), r.blogHandler.AddComment)
	}

	api.GET("/tags", r.blogHandler.Tags)
	api.GET("/bookmarks", r.blogHandler.GetBookmarkedBlogs)
	api.GET("/users/:id/blogs", r.blogHandler.GetUserBlogs)
}

func (r *Router) registerAuthRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/guest", r.authHandler.GuestLogin)
		authGroup.POST("/logout", r.authHandler.Logout)

		authGroup.GET("/me", r.mw.JWTAuth(), r.authHandler.GetMe)
		authGroup.PUT("/me", r.mw.JWTAuth(), r.authHandler.UpdateMe)
		authGroup.PUT("/analytics", r.mw.JWTAuth(), r.authHandler.SetGuestAnalytics)
	}
}

func (r *Router) registerThemeRoutes(api *gin.RouterGroup) {
	themeGroup := api.Group("/theme")
	{
		themeGroup.GET("", r.themeHandler.GetTheme)
		themeGroup.GET("/palette", r.themeHandler.GetPalette)
		themeGroup.GET("/css", r.themeHandler.GetCSS)
		themeGroup.GET("/ws", r.themeHandler.Stream)

		themeGroup.POST("/toggle", r.themeHandler.ToggleTheme)
		themeGroup.PUT("/mode", r.themeHandler.SetTheme)
		themeGroup.PUT("/color", r.themeHandler.SetColorScheme)
		themeGroup.PUT("/font", r.themeHandler.SetFontFamily)
	}
}
