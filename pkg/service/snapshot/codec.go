/*
 * @Description: 带版本号的快照编解码与顺序迁移
 */
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
)

// Envelope 是落盘的快照外层结构
type Envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Migration 将 version 为 v 的 state 迁移为 v+1
type Migration func(state json.RawMessage) (json.RawMessage, error)

// Codec 负责某一个 store 的快照格式
type Codec struct {
	current    int
	migrations map[int]Migration
}

// NewCodec 创建编解码器。migrations[v] 负责 v -> v+1，必须覆盖 0..current-1。
func NewCodec(current int, migrations map[int]Migration) *Codec {
	for v := 0; v < current; v++ {
		if migrations[v] == nil {
			panic(fmt.Sprintf("snapshot: 缺少 v%d -> v%d 的迁移", v, v+1))
		}
	}
	return &Codec{current: current, migrations: migrations}
}

// Version 当前版本号
func (c *Codec) Version() int {
	return c.current
}

// Encode 将 state 包装为当前版本的信封
func (c *Codec) Encode(state interface{}) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("序列化快照失败: %w", err)
	}
	return json.Marshal(Envelope{Version: c.current, State: raw})
}

// Upgrade 解析任意版本的快照，迁移到当前版本后返回 state 原文
func (c *Codec) Upgrade(data []byte) (json.RawMessage, int, error) {
	env, err := parseEnvelope(data)
	if err != nil {
		return nil, 0, err
	}
	from := env.Version
	if from < 0 {
		return nil, from, fmt.Errorf("%w: 版本号 %d 无效", constant.ErrInvalidSnapshot, from)
	}
	if from > c.current {
		return nil, from, fmt.Errorf("%w: v%d (当前支持 v%d)", constant.ErrUnsupportedVersion, from, c.current)
	}
	state := env.State
	for v := from; v < c.current; v++ {
		state, err = c.migrations[v](state)
		if err != nil {
			return nil, from, fmt.Errorf("快照迁移 v%d -> v%d 失败: %w", v, v+1, err)
		}
	}
	return state, from, nil
}

// Decode 迁移并反序列化到 into，返回原始版本号
func (c *Codec) Decode(data []byte, into interface{}) (int, error) {
	state, from, err := c.Upgrade(data)
	if err != nil {
		return from, err
	}
	if err := json.Unmarshal(state, into); err != nil {
		return from, fmt.Errorf("%w: %v", constant.ErrInvalidSnapshot, err)
	}
	return from, nil
}

// parseEnvelope 兼容三种形态：完整信封、缺少 version 的信封、以及没有信封的裸 state
func parseEnvelope(data []byte) (Envelope, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", constant.ErrInvalidSnapshot, err)
	}

	state, hasState := probe["state"]
	if !hasState {
		return Envelope{Version: 0, State: json.RawMessage(bytes.TrimSpace(data))}, nil
	}

	env := Envelope{State: state}
	if rawVersion, ok := probe["version"]; ok && !bytes.Equal(rawVersion, []byte("null")) {
		if err := json.Unmarshal(rawVersion, &env.Version); err != nil {
			return Envelope{}, fmt.Errorf("%w: version 字段无效", constant.ErrInvalidSnapshot)
		}
	}
	return env, nil
}

// Store 将编解码器与快照仓库绑定到一个固定的键上
type Store struct {
	repo  repository.SnapshotRepository
	key   string
	codec *Codec
}

// NewStore 创建绑定某个键的快照读写器
func NewStore(repo repository.SnapshotRepository, key string, codec *Codec) *Store {
	return &Store{repo: repo, key: key, codec: codec}
}

// Key 返回快照键
func (s *Store) Key() string {
	return s.key
}

// Load 读取并迁移快照，快照不存在时返回 false
func (s *Store) Load(ctx context.Context, into interface{}) (bool, error) {
	data, err := s.repo.Load(ctx, s.key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if _, err := s.codec.Decode(data, into); err != nil {
		return false, fmt.Errorf("加载快照 %s 失败: %w", s.key, err)
	}
	return true, nil
}

// Save 以当前版本写入快照
func (s *Store) Save(ctx context.Context, state interface{}) error {
	data, err := s.codec.Encode(state)
	if err != nil {
		return err
	}
	return s.repo.Save(ctx, s.key, data)
}

// Validate 检查一份外部快照能否被迁移并解析，不写入仓库
func (s *Store) Validate(data []byte, into interface{}) error {
	if _, err := s.codec.Decode(data, into); err != nil {
		return fmt.Errorf("快照 %s 校验失败: %w", s.key, err)
	}
	return nil
}
