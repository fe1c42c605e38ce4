/*
 * @Description: 定时任务调度器，目前只负责周期性备份
 */
package task

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
)

// Backuper 执行一次备份并返回对象名
type Backuper interface {
	Backup(ctx context.Context) (string, error)
}

// Scheduler 封装了 cron 实例，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler 创建调度器，日志固定带有 "system":"cron" 属性。
func NewScheduler() *Scheduler {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	// 日志装饰器放在最内层，才能拿到任务本身的名字
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
			NewLoggingWrapper(logger),
		),
	)
	return &Scheduler{cron: c, logger: logger}
}

// RegisterBackupJob 按 6 段 cron 表达式注册备份任务。schedule 为空时不注册。
func (s *Scheduler) RegisterBackupJob(schedule string, backuper Backuper) error {
	if schedule == "" {
		s.logger.Info("Backup schedule is empty, periodic backup disabled")
		return nil
	}
	if _, err := s.cron.AddJob(schedule, NewBackupJob(backuper, s.logger)); err != nil {
		s.logger.Error("Failed to add 'BackupJob'", slog.Any("error", err))
		return fmt.Errorf("无效的备份计划 %q: %w", schedule, err)
	}
	s.logger.Info("-> Successfully registered 'BackupJob'", "schedule", schedule)
	return nil
}

// Len 已注册的任务数
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器，等待正在运行的任务结束。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
