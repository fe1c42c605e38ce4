package task

import (
	"context"
	"log/slog"
	"time"
)

// backupTimeout 单次备份的最长时间
const backupTimeout = 2 * time.Minute

// BackupJob 把所有快照导出到备份目标
type BackupJob struct {
	backuper Backuper
	logger   *slog.Logger
}

func NewBackupJob(backuper Backuper, logger *slog.Logger) *BackupJob {
	return &BackupJob{backuper: backuper, logger: logger}
}

func (j *BackupJob) Name() string {
	return "BackupJob"
}

func (j *BackupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	name, err := j.backuper.Backup(ctx)
	if err != nil {
		j.logger.Error("Backup failed", slog.Any("error", err))
		return
	}
	j.logger.Info("Backup written", slog.String("object", name))
}
