// cmd/server/app.go
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/internal/app/listener"
	"github.com/binary-blogs/binary-blogs/internal/app/middleware"
	"github.com/binary-blogs/binary-blogs/internal/app/seed"
	"github.com/binary-blogs/binary-blogs/internal/app/task"
	"github.com/binary-blogs/binary-blogs/internal/infra/persistence/snapshot"
	"github.com/binary-blogs/binary-blogs/internal/infra/router"
	"github.com/binary-blogs/binary-blogs/internal/infra/storage"
	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
	"github.com/binary-blogs/binary-blogs/internal/pkg/version"
	"github.com/binary-blogs/binary-blogs/pkg/config"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	auth_handler "github.com/binary-blogs/binary-blogs/pkg/handler/auth"
	blog_handler "github.com/binary-blogs/binary-blogs/pkg/handler/blog"
	dashboard_handler "github.com/binary-blogs/binary-blogs/pkg/handler/dashboard"
	render_handler "github.com/binary-blogs/binary-blogs/pkg/handler/render"
	theme_handler "github.com/binary-blogs/binary-blogs/pkg/handler/theme"
	version_handler "github.com/binary-blogs/binary-blogs/pkg/handler/version"
	"github.com/binary-blogs/binary-blogs/pkg/service/auth"
	"github.com/binary-blogs/binary-blogs/pkg/service/backup"
	"github.com/binary-blogs/binary-blogs/pkg/service/blog"
	"github.com/binary-blogs/binary-blogs/pkg/service/dashboard"
	parser_service "github.com/binary-blogs/binary-blogs/pkg/service/parser"
	"github.com/binary-blogs/binary-blogs/pkg/service/theme"
	"github.com/binary-blogs/binary-blogs/pkg/service/utility"
)

// shutdownTimeout HTTP 服务优雅关闭的等待时间
const shutdownTimeout = 10 * time.Second

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg       *config.Config
	engine    *gin.Engine
	server    *http.Server
	repo      repository.SnapshotRepository
	eventBus  *event.EventBus
	parserSvc *parser_service.Service
	blogStore *blog.Store
	authStore *auth.Store
	themeSt   *theme.Store
	themeHub  *theme.Hub
	tokenSvc  *auth.TokenService
	backupSvc *backup.Service
	scheduler *task.Scheduler
}

func (a *App) PrintBanner() {
	log.Println("--------------------------------------------------------")
	log.Printf(" Binary Blogs: %s", version.GetVersionString())
	log.Println("--------------------------------------------------------")
}

// NewApp 读取配置中的快照后端并构建应用，返回的 cleanup 负责释放所有资源
func NewApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	repo, closeRepo, err := snapshot.NewRepositoryFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化快照存储失败: %w", err)
	}
	app, err := NewAppWithRepository(ctx, cfg, repo)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}
	cleanup := func() {
		app.Close()
		closeRepo()
	}
	return app, cleanup, nil
}

// NewAppWithRepository 使用给定的快照仓库构建应用，执行所有的初始化和依赖注入工作
func NewAppWithRepository(ctx context.Context, cfg *config.Config, repo repository.SnapshotRepository) (*App, error) {
	// --- Phase 1: 事件总线与无状态服务 ---
	eventBus := event.NewEventBus()
	parserSvc := parser_service.NewService()

	// --- Phase 2: 三个 store，读入快照 ---
	blogStore := blog.NewStore(repo, blog.Options{
		Publisher:     eventBus,
		Excerpter:     parserSvc,
		SeedThreshold: cfg.GetInt(config.KeyBlogSeedThreshold),
	})
	authStore := auth.NewStore(repo, eventBus)
	themeStore := theme.NewStore(repo, eventBus, cfg.GetBool(config.KeyThemeSystemPrefersDark))

	fail := func(err error) (*App, error) {
		eventBus.Shutdown()
		return nil, err
	}
	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"blog", blogStore.Load},
		{"auth", authStore.Load},
		{"theme", themeStore.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			return fail(fmt.Errorf("加载 %s 快照失败: %w", l.name, err))
		}
	}

	// --- Phase 3: 事件订阅 ---
	themeHub := theme.NewHub(themeStore)
	themeHub.Subscribe(eventBus)
	if cfg.GetBool(config.KeyCoverExtractColor) {
		colorSvc := utility.NewPrimaryColorService(utility.NewColorService(), nil)
		listener.NewCoverColorListener(eventBus, colorSvc, blogStore)
		log.Println("[App] 已启用封面主色调提取")
	}

	if cfg.GetBool(config.KeyBlogSeedDemo) {
		posts, err := seed.DemoPosts()
		if err != nil {
			return fail(err)
		}
		if _, err := blogStore.InitializeStore(ctx, posts); err != nil {
			return fail(fmt.Errorf("写入演示数据失败: %w", err))
		}
	}

	// --- Phase 4: 认证、备份与定时任务 ---
	tokenSvc, err := auth.NewTokenService(
		cfg.GetString(config.KeyJWTSecret),
		time.Duration(cfg.GetInt(config.KeyTokenTTLMinutes))*time.Minute,
		authStore,
	)
	if err != nil {
		return fail(err)
	}

	target, err := storage.NewProviderFromConfig(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("初始化备份目标失败: %w", err))
	}
	backupSvc := backup.NewService(repo, target, blogStore, authStore, themeStore)

	scheduler := task.NewScheduler()
	if err := scheduler.RegisterBackupJob(cfg.GetString(config.KeyBackupSchedule), backupSvc); err != nil {
		return fail(err)
	}

	// --- Phase 5: HTTP ---
	if !cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	mw := middleware.NewMiddleware(tokenSvc)
	appRouter := router.NewRouter(
		auth_handler.NewAuthHandler(authStore, tokenSvc),
		blog_handler.NewHandler(blogStore, parserSvc, authStore),
		dashboard_handler.NewHandler(dashboard.NewService(blogStore), authStore),
		render_handler.NewHandler(parserSvc),
		theme_handler.NewHandler(themeStore, themeHub),
		version_handler.NewHandler(),
		mw,
		router.RateLimit{
			PerMinute: cfg.GetInt(config.KeyRateLimitPerMinute),
			Burst:     cfg.GetInt(config.KeyRateLimitBurst),
		},
	)
	appRouter.Setup(engine)

	return &App{
		cfg:       cfg,
		engine:    engine,
		repo:      repo,
		eventBus:  eventBus,
		parserSvc: parserSvc,
		blogStore: blogStore,
		authStore: authStore,
		themeSt:   themeStore,
		themeHub:  themeHub,
		tokenSvc:  tokenSvc,
		backupSvc: backupSvc,
		scheduler: scheduler,
	}, nil
}

func (a *App) Config() *config.Config          { return a.cfg }
func (a *App) Engine() *gin.Engine             { return a.engine }
func (a *App) BlogStore() *blog.Store          { return a.blogStore }
func (a *App) AuthStore() *auth.Store          { return a.authStore }
func (a *App) ThemeStore() *theme.Store        { return a.themeSt }
func (a *App) Parser() *parser_service.Service { return a.parserSvc }
func (a *App) Backup() *backup.Service         { return a.backupSvc }
func (a *App) TokenService() *auth.TokenService {
	return a.tokenSvc
}

// Run 启动定时任务和 HTTP 服务，阻塞到服务关闭
func (a *App) Run() error {
	a.scheduler.Start()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	a.server = &http.Server{Addr: ":" + port, Handler: a.engine}
	log.Printf("应用程序启动成功，正在监听端口: %s", port)

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 停止接收请求和定时任务
func (a *App) Stop() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			log.Printf("[App] HTTP 服务关闭失败: %v", err)
		}
	}
	a.scheduler.Stop()
	log.Println("任务调度器已停止。")
}

// Close 断开 websocket 客户端并等待事件处理完毕
func (a *App) Close() {
	a.themeHub.Close()
	a.eventBus.Shutdown()
}
