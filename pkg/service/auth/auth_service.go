/*
 * @Description: 会话 Store。只有登出和登录两种状态，登录不校验凭证，切换为固定的演示用户。
 */
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/service/snapshot"
)

const stateVersion = 1

// DemoUser 返回登录后使用的固定演示用户
func DemoUser() model.User {
	return model.User{
		ID:       "u-1001",
		Name:     "Alex Chen",
		Email:    "alex@binaryblogs.dev",
		Avatar:   "https://i.pravatar.cc/150?u=alex",
		Bio:      "Backend engineer who writes about tooling.",
		JoinDate: "2023-09-01",
		Role:     model.RoleAdmin,
		SocialLinks: &model.SocialLinks{
			Github:  "https://github.com/binary-blogs",
			Website: "https://binaryblogs.dev",
		},
	}
}

// GuestUser 返回游客登录使用的固定用户
func GuestUser() model.User {
	return model.User{
		ID:       "u-guest",
		Name:     "Guest Reader",
		Email:    "guest@binaryblogs.dev",
		Avatar:   "https://i.pravatar.cc/150?u=guest",
		JoinDate: "2024-01-01",
		Role:     model.RoleUser,
	}
}

// Store 持有当前会话，每次变更后写快照
type Store struct {
	mu      sync.RWMutex
	session model.Session
	snap    *snapshot.Store
	bus     event.Publisher
}

// NewStore 创建会话 Store，初始为登出状态
func NewStore(repo repository.SnapshotRepository, bus event.Publisher) *Store {
	if bus == nil {
		bus = event.NopPublisher{}
	}
	return &Store{
		snap: snapshot.NewStore(repo, constant.AuthStorageKey, snapshot.NewCodec(stateVersion, map[int]snapshot.Migration{
			0: migrateV0ToV1,
		})),
		bus: bus,
	}
}

// migrateV0ToV1 旧快照没有会话 ID，已登录的会话补一个新的
func migrateV0ToV1(raw json.RawMessage) (json.RawMessage, error) {
	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("解析 v0 会话快照失败: %w", err)
	}
	if s.User == nil {
		s.IsAuthenticated = false
	}
	if s.IsAuthenticated && s.SessionID == "" {
		s.SessionID = uuid.NewString()
	}
	return json.Marshal(s)
}

// Load 从快照恢复会话
func (s *Store) Load(ctx context.Context) error {
	var st model.Session
	found, err := s.snap.Load(ctx, &st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !found {
		s.session = model.Session{}
		return nil
	}
	if st.IsAuthenticated && st.User == nil {
		log.Printf("[AuthStore] 快照标记为已登录但缺少用户，按登出处理")
		st = model.Session{}
	}
	s.session = st
	if s.session.IsAuthenticated {
		log.Printf("[AuthStore] 恢复会话: 用户 %s", s.session.User.ID)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.snap.Save(ctx, s.session); err != nil {
		log.Printf("[AuthStore] 写入快照失败: %v", err)
		return fmt.Errorf("保存会话快照失败: %w", err)
	}
	return nil
}

// Login 忽略凭证，激活演示用户并开启新会话
func (s *Store) Login(ctx context.Context, email, password string) (model.Session, error) {
	return s.activate(ctx, DemoUser())
}

// GuestLogin 激活游客用户
func (s *Store) GuestLogin(ctx context.Context) (model.Session, error) {
	return s.activate(ctx, GuestUser())
}

func (s *Store) activate(ctx context.Context, user model.User) (model.Session, error) {
	s.mu.Lock()
	s.session = model.Session{
		User:            &user,
		IsAuthenticated: true,
		SessionID:       uuid.NewString(),
	}
	if err := s.persistLocked(ctx); err != nil {
		s.mu.Unlock()
		return model.Session{}, err
	}
	current := s.copyLocked()
	s.mu.Unlock()

	log.Printf("[AuthStore] 用户 %s 登录，会话 %s", user.ID, current.SessionID)
	s.bus.Publish(event.SessionChanged, event.SessionEvent{UserID: user.ID, SessionID: current.SessionID, LoggedIn: true})
	return current, nil
}

// Logout 清空会话和游客统计
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	var userID string
	if s.session.User != nil {
		userID = s.session.User.ID
	}
	s.session = model.Session{}
	if err := s.persistLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.bus.Publish(event.SessionChanged, event.SessionEvent{UserID: userID, LoggedIn: false})
	return nil
}

// UpdateUser 浅合并用户资料。未登录时不做任何修改并返回 nil。
func (s *Store) UpdateUser(ctx context.Context, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.IsAuthenticated || s.session.User == nil {
		return nil, nil
	}

	u := *s.session.User
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.SocialLinks != nil {
		links := *patch.SocialLinks
		u.SocialLinks = &links
	}
	s.session.User = &u
	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}
	out := u
	return &out, nil
}

// SetGuestAnalytics 附加一份演示用的统计数据
func (s *Store) SetGuestAnalytics(ctx context.Context, data model.GuestAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.GuestAnalytics = copyAnalytics(data)
	return s.persistLocked(ctx)
}

// Current 返回当前会话的副本
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// ActiveSessionID 返回当前会话 ID，登出状态为空
func (s *Store) ActiveSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.IsAuthenticated {
		return ""
	}
	return s.session.SessionID
}

func (s *Store) copyLocked() model.Session {
	out := s.session
	if s.session.User != nil {
		u := *s.session.User
		if u.SocialLinks != nil {
			links := *u.SocialLinks
			u.SocialLinks = &links
		}
		out.User = &u
	}
	out.GuestAnalytics = copyAnalytics(s.session.GuestAnalytics)
	return out
}

func copyAnalytics(data model.GuestAnalytics) model.GuestAnalytics {
	if data == nil {
		return nil
	}
	out := make(model.GuestAnalytics, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// SnapshotKey 返回会话快照键
func (s *Store) SnapshotKey() string {
	return s.snap.Key()
}

// ValidateSnapshot 校验一份待导入的会话快照
func (s *Store) ValidateSnapshot(data []byte) error {
	var st model.Session
	if err := s.snap.Validate(data, &st); err != nil {
		return err
	}
	if st.IsAuthenticated && st.User == nil {
		return fmt.Errorf("%w: 已登录的会话缺少用户", constant.ErrInvalidSnapshot)
	}
	return nil
}
