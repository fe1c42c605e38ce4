/*
 * @Description: 主题 Store。状态变更是纯函数，变更后统一重新投影并发布。
 */
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/service/snapshot"
)

const stateVersion = 1

// Store 持有主题偏好及其最新投影
type Store struct {
	mu                sync.RWMutex
	pref              model.ThemePreference
	projection        model.ThemeProjection
	revision          uint64
	systemPrefersDark bool

	snap *snapshot.Store
	bus  event.Publisher
}

// NewStore 创建主题 Store，systemPrefersDark 用于解析 system 模式
func NewStore(repo repository.SnapshotRepository, bus event.Publisher, systemPrefersDark bool) *Store {
	if bus == nil {
		bus = event.NopPublisher{}
	}
	s := &Store{
		pref:              DefaultPreference(),
		systemPrefersDark: systemPrefersDark,
		snap: snapshot.NewStore(repo, constant.ThemeStorageKey, snapshot.NewCodec(stateVersion, map[int]snapshot.Migration{
			0: migrateV0ToV1,
		})),
		bus: bus,
	}
	s.projection = Project(s.pref, systemPrefersDark, 0)
	return s
}

// migrateV0ToV1 修正旧快照中的非法取值，并按配色名重新计算强调色
func migrateV0ToV1(raw json.RawMessage) (json.RawMessage, error) {
	var p model.ThemePreference
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("解析 v0 主题快照失败: %w", err)
	}
	return json.Marshal(normalize(p))
}

func normalize(p model.ThemePreference) model.ThemePreference {
	def := DefaultPreference()
	if !p.Theme.Valid() {
		p.Theme = def.Theme
	}
	if !p.FontFamily.Valid() {
		p.FontFamily = def.FontFamily
	}
	return withColorScheme(p, p.SelectedColorName)
}

// Load 读取偏好并生成初始投影
func (s *Store) Load(ctx context.Context) error {
	var p model.ThemePreference
	found, err := s.snap.Load(ctx, &p)
	if err != nil {
		return err
	}
	if !found {
		p = DefaultPreference()
	}
	_, err = s.apply(ctx, func(model.ThemePreference) model.ThemePreference { return normalize(p) }, false)
	return err
}

// apply 执行一次纯状态变换，然后重新投影、持久化并发布
func (s *Store) apply(ctx context.Context, transition func(model.ThemePreference) model.ThemePreference, persist bool) (model.ThemeProjection, error) {
	s.mu.Lock()
	s.pref = transition(s.pref)
	s.revision++
	s.projection = Project(s.pref, s.systemPrefersDark, s.revision)
	if persist {
		if err := s.snap.Save(ctx, s.pref); err != nil {
			s.mu.Unlock()
			log.Printf("[ThemeStore] 写入快照失败: %v", err)
			return model.ThemeProjection{}, fmt.Errorf("保存主题快照失败: %w", err)
		}
	}
	projection := copyProjection(s.projection)
	s.mu.Unlock()

	s.bus.Publish(event.ThemeProjected, copyProjection(projection))
	return projection, nil
}

// ToggleTheme 在 light -> dark -> system 之间循环
func (s *Store) ToggleTheme(ctx context.Context) (model.ThemeProjection, error) {
	return s.apply(ctx, func(p model.ThemePreference) model.ThemePreference {
		p.Theme = nextMode(p.Theme)
		return p
	}, true)
}

// SetTheme 设置明暗模式，配色变量会随投影一起刷新
func (s *Store) SetTheme(ctx context.Context, mode model.ThemeMode) (model.ThemeProjection, error) {
	if !mode.Valid() {
		return model.ThemeProjection{}, fmt.Errorf("%w: 未知的主题模式 %q", constant.ErrBadRequest, mode)
	}
	return s.apply(ctx, func(p model.ThemePreference) model.ThemePreference {
		p.Theme = mode
		return p
	}, true)
}

// SetColorScheme 设置配色，未知名称回退到调色板第一项
func (s *Store) SetColorScheme(ctx context.Context, name string) (model.ThemeProjection, error) {
	if _, found := LookupScheme(name); !found {
		log.Printf("[ThemeStore] 未知配色 %q，使用默认配色", name)
	}
	return s.apply(ctx, func(p model.ThemePreference) model.ThemePreference {
		return withColorScheme(p, name)
	}, true)
}

// SetFontFamily 设置字体
func (s *Store) SetFontFamily(ctx context.Context, font model.FontFamily) (model.ThemeProjection, error) {
	if !font.Valid() {
		return model.ThemeProjection{}, fmt.Errorf("%w: 未知的字体 %q", constant.ErrBadRequest, font)
	}
	return s.apply(ctx, func(p model.ThemePreference) model.ThemePreference {
		p.FontFamily = font
		return p
	}, true)
}

// SetSystemPrefersDark 更新系统明暗偏好。只影响 system 模式的解析，不写快照。
func (s *Store) SetSystemPrefersDark(ctx context.Context, dark bool) (model.ThemeProjection, error) {
	s.mu.Lock()
	unchanged := s.systemPrefersDark == dark
	s.systemPrefersDark = dark
	s.mu.Unlock()
	if unchanged {
		return s.Projection(), nil
	}
	return s.apply(ctx, func(p model.ThemePreference) model.ThemePreference { return p }, false)
}

// Preference 当前偏好
func (s *Store) Preference() model.ThemePreference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pref
}

// Projection 最新投影
func (s *Store) Projection() model.ThemeProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProjection(s.projection)
}

// Palette 可选配色
func (s *Store) Palette() []model.ColorScheme {
	return Palette()
}

// CSS 当前投影对应的 :root 规则
func (s *Store) CSS() string {
	return RenderCSS(s.Projection())
}

func copyProjection(p model.ThemeProjection) model.ThemeProjection {
	out := p
	out.Vars = make(map[string]string, len(p.Vars))
	for k, v := range p.Vars {
		out.Vars[k] = v
	}
	out.DataAttributes = make(map[string]string, len(p.DataAttributes))
	for k, v := range p.DataAttributes {
		out.DataAttributes[k] = v
	}
	return out
}

// SnapshotKey 返回主题快照键
func (s *Store) SnapshotKey() string {
	return s.snap.Key()
}

// ValidateSnapshot 校验一份待导入的主题快照
func (s *Store) ValidateSnapshot(data []byte) error {
	var p model.ThemePreference
	return s.snap.Validate(data, &p)
}
