// internal/infra/storage/local.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalProvider 实现了 IStorageProvider 接口，把对象保存为本机目录下的文件。
type LocalProvider struct {
	baseDir string
}

// NewLocalProvider 是 LocalProvider 的构造函数，目录不存在时自动创建。
func NewLocalProvider(baseDir string) (IStorageProvider, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("无法创建备份目录 '%s': %w", baseDir, err)
	}
	return &LocalProvider{baseDir: baseDir}, nil
}

func (p *LocalProvider) Name() string {
	return "local"
}

// physicalPath 把对象名映射到磁盘路径，拒绝带目录的名称
func (p *LocalProvider) physicalPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("非法的对象名: %q", name)
	}
	return filepath.Join(p.baseDir, name), nil
}

// Upload 先写临时文件再重命名，避免读到写了一半的备份
func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, name string) error {
	dst, err := p.physicalPath(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(p.baseDir, ".upload-*")
	if err != nil {
		return fmt.Errorf("无法创建临时文件: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return fmt.Errorf("写入文件内容失败: %w", err)
	}
	// 确保数据写入磁盘
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("同步文件到磁盘失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("重命名文件失败: %w", err)
	}
	log.Printf("[LocalProvider] 已写入 %s", dst)
	return nil
}

func (p *LocalProvider) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := p.physicalPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("无法打开文件 '%s': %w", path, err)
	}
	return f, nil
}

// List 列出目录下的普通文件，跳过临时文件
func (p *LocalProvider) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(p.baseDir)
	if err != nil {
		// 如果目录不存在，返回一个空列表和 nil 错误，这符合 List 的语义
		if os.IsNotExist(err) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("无法读取本地目录 '%s': %w", p.baseDir, err)
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, FileInfo{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (p *LocalProvider) Delete(ctx context.Context, name string) error {
	path, err := p.physicalPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}
