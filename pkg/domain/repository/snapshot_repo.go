package repository

import "context"

// SnapshotRepository 以键值方式保存各 store 的 JSON 快照
type SnapshotRepository interface {
	// Load 读取快照，键不存在时返回 nil, nil
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// Keys 返回当前存在的所有快照键
	Keys(ctx context.Context) ([]string, error)
}
