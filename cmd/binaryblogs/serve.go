package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/binary-blogs/binary-blogs/cmd/server"
	"github.com/binary-blogs/binary-blogs/pkg/config"
)

// loadApp 加载配置并构建应用。管理命令不写入演示数据。
func loadApp(ctx context.Context, seedDemo bool) (*server.App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if !seedDemo {
		cfg.Set(config.KeyBlogSeedDemo, false)
	}
	return server.NewApp(ctx, cfg)
}

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Set(config.KeyServerPort, port)
			}

			app, cleanup, err := server.NewApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("应用初始化失败: %w", err)
			}
			defer cleanup()
			app.PrintBanner()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-quit
				log.Println("收到退出信号，正在关闭...")
				app.Stop()
			}()

			return app.Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口，覆盖配置中的 System.Port")
	return cmd
}
