package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/binary-blogs/binary-blogs/pkg/config"
)

// NewProviderFromConfig 按 Backup.Driver 创建备份目标
func NewProviderFromConfig(ctx context.Context, cfg *config.Config) (IStorageProvider, error) {
	switch driver := strings.ToLower(cfg.GetString(config.KeyBackupDriver)); driver {
	case "", "local":
		return NewLocalProvider(cfg.GetString(config.KeyBackupDir))
	case "s3":
		return NewAWSS3Provider(ctx, S3Options{
			Bucket:    cfg.GetString(config.KeyBackupS3Bucket),
			Region:    cfg.GetString(config.KeyBackupS3Region),
			Endpoint:  cfg.GetString(config.KeyBackupS3Endpoint),
			Prefix:    cfg.GetString(config.KeyBackupS3Prefix),
			AccessKey: cfg.GetString(config.KeyBackupS3AccessKey),
			SecretKey: cfg.GetString(config.KeyBackupS3SecretKey),
		})
	default:
		return nil, fmt.Errorf("不支持的备份驱动: %s", driver)
	}
}
