package constant

// 持久化快照使用的固定键，每个 store 一个独立的 blob
const (
	BlogStorageKey  = "blog-storage"
	AuthStorageKey  = "auth-storage"
	ThemeStorageKey = "theme-storage"
)

// StorageKeys 返回所有 store 的快照键，备份与导入按此顺序处理
func StorageKeys() []string {
	return []string{BlogStorageKey, AuthStorageKey, ThemeStorageKey}
}

// StorageDriver 快照后端类型
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverRedis    StorageDriver = "redis"
	StorageDriverDatabase StorageDriver = "database"
)
