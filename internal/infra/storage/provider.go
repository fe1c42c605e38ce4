/*
 * @Description: 定义了备份存储驱动需要遵守的接口和公共结构
 */
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// FileInfo 封装了 List 操作返回的单个对象的信息，统一本地和云端的列表结构。
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ErrObjectNotFound 表示要读取的对象不存在
var ErrObjectNotFound = errors.New("object not found")

// IStorageProvider 定义了备份目标必须实现的接口。name 是相对于目标根目录的对象名，不含目录层级。
type IStorageProvider interface {
	// Upload 将数据流写入名为 name 的对象，已存在时覆盖。
	Upload(ctx context.Context, file io.Reader, name string) error
	// Get 返回对象的可读流，不存在时返回 ErrObjectNotFound。
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	// List 列出所有对象，按名称升序。
	List(ctx context.Context) ([]FileInfo, error)
	// Delete 删除对象，不存在时不报错。
	Delete(ctx context.Context, name string) error
	// Name 驱动名称，用于日志。
	Name() string
}
