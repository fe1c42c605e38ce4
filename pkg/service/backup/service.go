/*
 * @Description: 快照归档的导出、导入，以及到备份目标的备份与恢复
 */
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/binary-blogs/binary-blogs/internal/infra/storage"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
)

// archivePrefix 备份文件名前缀
const archivePrefix = "binary-blogs-"

// Participant 是参与备份的 store
type Participant interface {
	SnapshotKey() string
	ValidateSnapshot(data []byte) error
	// Load 从仓库重新读取快照，导入后调用
	Load(ctx context.Context) error
}

// Archive 是导出文件的结构，snapshots 中保存每个键的原始快照信封
type Archive struct {
	ExportedAt int64                      `json:"exportedAt"`
	Snapshots  map[string]json.RawMessage `json:"snapshots"`
}

// Service 负责归档
type Service struct {
	repo         repository.SnapshotRepository
	target       storage.IStorageProvider
	participants map[string]Participant
	now          func() time.Time
}

// NewService 创建备份服务。target 可以为 nil，此时只支持导出和导入。
func NewService(repo repository.SnapshotRepository, target storage.IStorageProvider, participants ...Participant) *Service {
	byKey := make(map[string]Participant, len(participants))
	for _, p := range participants {
		byKey[p.SnapshotKey()] = p
	}
	return &Service{repo: repo, target: target, participants: byKey, now: time.Now}
}

func (s *Service) keys() []string {
	keys := make([]string, 0, len(s.participants))
	for k := range s.participants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export 读取所有参与者的快照，不存在的键会被跳过
func (s *Service) Export(ctx context.Context) (*Archive, error) {
	archive := &Archive{
		ExportedAt: s.now().UnixMilli(),
		Snapshots:  make(map[string]json.RawMessage, len(s.participants)),
	}
	for _, key := range s.keys() {
		data, err := s.repo.Load(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("读取快照 %s 失败: %w", key, err)
		}
		if data == nil {
			continue
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: 快照 %s 不是合法 JSON", constant.ErrInvalidSnapshot, key)
		}
		archive.Snapshots[key] = json.RawMessage(data)
	}
	return archive, nil
}

// Import 先校验归档中的全部快照，全部通过后才写入，最后让对应 store 重新加载
func (s *Service) Import(ctx context.Context, archive *Archive) error {
	if archive == nil || len(archive.Snapshots) == 0 {
		return fmt.Errorf("%w: 归档中没有快照", constant.ErrBadRequest)
	}

	keys := make([]string, 0, len(archive.Snapshots))
	for key, data := range archive.Snapshots {
		p, ok := s.participants[key]
		if !ok {
			return fmt.Errorf("%w: 未知的快照键 %s", constant.ErrBadRequest, key)
		}
		if err := p.ValidateSnapshot(data); err != nil {
			return err
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := s.repo.Save(ctx, key, archive.Snapshots[key]); err != nil {
			return fmt.Errorf("写入快照 %s 失败: %w", key, err)
		}
	}
	for _, key := range keys {
		if err := s.participants[key].Load(ctx); err != nil {
			return fmt.Errorf("重新加载 %s 失败: %w", key, err)
		}
	}
	log.Printf("[Backup] 已导入 %d 个快照", len(keys))
	return nil
}

// Encode 把归档写为带缩进的 JSON
func Encode(w io.Writer, archive *Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(archive)
}

// Decode 读取归档
func Decode(r io.Reader) (*Archive, error) {
	var archive Archive
	if err := json.NewDecoder(r).Decode(&archive); err != nil {
		return nil, fmt.Errorf("%w: 无法解析归档: %v", constant.ErrBadRequest, err)
	}
	return &archive, nil
}

// Backup 导出并上传到备份目标，返回对象名
func (s *Service) Backup(ctx context.Context) (string, error) {
	if s.target == nil {
		return "", fmt.Errorf("未配置备份目标")
	}
	archive, err := s.Export(ctx)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, archive); err != nil {
		return "", err
	}

	name := archivePrefix + time.UnixMilli(archive.ExportedAt).UTC().Format("20060102-150405.000") + ".json"
	if err := s.target.Upload(ctx, &buf, name); err != nil {
		return "", err
	}
	log.Printf("[Backup] 已备份到 %s: %s", s.target.Name(), name)
	return name, nil
}

// Restore 从备份目标读取一份归档并导入
func (s *Service) Restore(ctx context.Context, name string) error {
	if s.target == nil {
		return fmt.Errorf("未配置备份目标")
	}
	rc, err := s.target.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("%w: 备份 %s 不存在", constant.ErrNotFound, name)
		}
		return err
	}
	defer rc.Close()

	archive, err := Decode(rc)
	if err != nil {
		return err
	}
	return s.Import(ctx, archive)
}

// List 列出备份目标中的归档，最新的在前
func (s *Service) List(ctx context.Context) ([]storage.FileInfo, error) {
	if s.target == nil {
		return nil, fmt.Errorf("未配置备份目标")
	}
	files, err := s.target.List(ctx)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if strings.HasPrefix(f.Name, archivePrefix) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}
