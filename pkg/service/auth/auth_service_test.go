package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/binary-blogs/binary-blogs/internal/infra/persistence/snapshot"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/service/utility"
)

func newTestRepo(t *testing.T) repository.SnapshotRepository {
	t.Helper()
	cache := utility.NewMemoryCacheService()
	t.Cleanup(func() { cache.Close() })
	return snapshot.NewKVRepository(cache)
}

func newLoadedStore(t *testing.T, repo repository.SnapshotRepository) *Store {
	t.Helper()
	s := NewStore(repo, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }

func TestLoginLogoutCycle(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, newTestRepo(t))

	if cur := s.Current(); cur.IsAuthenticated || cur.User != nil {
		t.Fatalf("初始状态应为登出, got %+v", cur)
	}

	session, err := s.Login(ctx, "anyone@example.com", "whatever")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !session.IsAuthenticated || session.User.ID != DemoUser().ID || session.SessionID == "" {
		t.Fatalf("登录后会话不正确: %+v", session)
	}

	if err := s.SetGuestAnalytics(ctx, model.GuestAnalytics{"visits": 12}); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	cur := s.Current()
	if cur.IsAuthenticated || cur.User != nil || cur.GuestAnalytics != nil || s.ActiveSessionID() != "" {
		t.Errorf("登出后应清空会话和统计, got %+v", cur)
	}
}

func TestGuestLogin(t *testing.T) {
	s := newLoadedStore(t, newTestRepo(t))
	session, err := s.GuestLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if session.User.ID != GuestUser().ID || session.User.Role != model.RoleUser {
		t.Errorf("游客登录用户不正确: %+v", session.User)
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, newTestRepo(t))

	if u, err := s.UpdateUser(ctx, model.UserPatch{Name: strPtr("X")}); u != nil || err != nil {
		t.Fatalf("未登录时应无操作, got %+v, %v", u, err)
	}

	s.Login(ctx, "", "")
	u, err := s.UpdateUser(ctx, model.UserPatch{Name: strPtr("New Name"), Bio: strPtr("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "New Name" || u.Bio != "hi" || u.Email != DemoUser().Email {
		t.Errorf("浅合并结果不正确: %+v", u)
	}
	if s.Current().User.Name != "New Name" {
		t.Error("修改应写入当前会话")
	}
}

func TestSessionSurvivesReload(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	s := newLoadedStore(t, repo)
	session, _ := s.Login(ctx, "", "")

	reloaded := newLoadedStore(t, repo)
	if reloaded.ActiveSessionID() != session.SessionID {
		t.Errorf("重新加载后会话 ID = %q, want %q", reloaded.ActiveSessionID(), session.SessionID)
	}
}

func TestLegacySessionGetsID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	legacy := `{"state":{"user":{"id":"u-1001","name":"Alex"},"isAuthenticated":true},"version":0}`
	repo.Save(ctx, constant.AuthStorageKey, []byte(legacy))

	s := newLoadedStore(t, repo)
	if s.ActiveSessionID() == "" {
		t.Error("旧的已登录会话应补充会话 ID")
	}
}

func TestTokenRejectedAfterLogout(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, newTestRepo(t))
	tokens, err := NewTokenService("test-secret", time.Hour, s)
	if err != nil {
		t.Fatal(err)
	}

	session, _ := s.Login(ctx, "", "")
	resp, err := tokens.GenerateSessionToken(ctx, session)
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}
	claims, err := tokens.ParseAccessToken(ctx, resp.AccessToken)
	if err != nil || claims.UserID != DemoUser().ID {
		t.Fatalf("ParseAccessToken() = %+v, %v", claims, err)
	}

	testCases := []struct {
		name    string
		prepare func()
		wantErr error
	}{
		{name: "重新登录后旧令牌失效", prepare: func() { s.Login(ctx, "", "") }, wantErr: constant.ErrSessionEnded},
		{name: "登出后令牌失效", prepare: func() { s.Logout(ctx) }, wantErr: constant.ErrSessionEnded},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.prepare()
			if _, err := tokens.ParseAccessToken(ctx, resp.AccessToken); !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseAccessToken() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTokenSignatureChecked(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, newTestRepo(t))
	issuer, _ := NewTokenService("secret-a", time.Hour, s)
	verifier, _ := NewTokenService("secret-b", time.Hour, s)

	session, _ := s.Login(ctx, "", "")
	resp, _ := issuer.GenerateSessionToken(ctx, session)
	if _, err := verifier.ParseAccessToken(ctx, resp.AccessToken); !errors.Is(err, constant.ErrInvalidToken) {
		t.Errorf("错误密钥应返回 ErrInvalidToken, got %v", err)
	}
	if _, err := issuer.GenerateSessionToken(ctx, model.Session{}); !errors.Is(err, constant.ErrUnauthorized) {
		t.Errorf("未登录会话不应签发令牌, got %v", err)
	}
}

func TestAuthenticatedWithoutUser(t *testing.T) {
	ctx := context.Background()
	broken := []byte(`{"version":1,"state":{"isAuthenticated":true,"user":null,"sessionId":"s-1"}}`)

	repo := newTestRepo(t)
	repo.Save(ctx, constant.AuthStorageKey, broken)
	s := newLoadedStore(t, repo)
	if cur := s.Current(); cur.IsAuthenticated || cur.User != nil || s.ActiveSessionID() != "" {
		t.Errorf("缺少用户的会话应按登出处理, got %+v", cur)
	}

	testCases := []struct {
		name string
		data string
	}{
		{name: "已登录但没有用户", data: string(broken)},
		{name: "负数版本", data: `{"version":-1,"state":{}}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.ValidateSnapshot([]byte(tc.data)); !errors.Is(err, constant.ErrInvalidSnapshot) {
				t.Errorf("ValidateSnapshot() error = %v, want ErrInvalidSnapshot", err)
			}
		})
	}
	if err := s.ValidateSnapshot([]byte(`{"version":1,"state":{"isAuthenticated":false}}`)); err != nil {
		t.Errorf("登出状态的快照应通过校验, got %v", err)
	}
}
