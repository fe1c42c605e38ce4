package task

import (
	"log/slog"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// jobName 优先使用任务自己的 Name()，否则取类型名
func jobName(j cron.Job) string {
	if named, ok := j.(interface{ Name() string }); ok {
		return named.Name()
	}
	t := reflect.TypeOf(j)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// NewLoggingWrapper 每次执行分配一个 run_id，记录开始和耗时
func NewLoggingWrapper(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		name := jobName(j)
		return cron.FuncJob(func() {
			runLogger := logger.With(
				slog.String("job_name", name),
				slog.String("run_id", uuid.NewString()),
			)
			start := time.Now()
			runLogger.Info("Job started")
			defer func() {
				runLogger.Info("Job finished", slog.Duration("took", time.Since(start)))
			}()
			j.Run()
		})
	}
}

// NewPanicRecoveryWrapper 捕获 panic 并记录堆栈，调度器继续运行
func NewPanicRecoveryWrapper(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		name := jobName(j)
		return cron.FuncJob(func() {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				logger.Error("Job panicked",
					slog.String("job_name", name),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
			}()
			j.Run()
		})
	}
}
