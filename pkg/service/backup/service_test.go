package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/binary-blogs/binary-blogs/internal/infra/persistence/snapshot"
	"github.com/binary-blogs/binary-blogs/internal/infra/storage"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/service/auth"
	"github.com/binary-blogs/binary-blogs/pkg/service/blog"
	"github.com/binary-blogs/binary-blogs/pkg/service/theme"
	"github.com/binary-blogs/binary-blogs/pkg/service/utility"
)

type stores struct {
	repo  repository.SnapshotRepository
	blogs *blog.Store
	auth  *auth.Store
	theme *theme.Store
}

func newStores(t *testing.T) *stores {
	t.Helper()
	cache := utility.NewMemoryCacheService()
	t.Cleanup(func() { cache.Close() })
	repo := snapshot.NewKVRepository(cache)

	s := &stores{
		repo:  repo,
		blogs: blog.NewStore(repo, blog.Options{}),
		auth:  auth.NewStore(repo, nil),
		theme: theme.NewStore(repo, nil, false),
	}
	ctx := context.Background()
	for _, load := range []func(context.Context) error{s.blogs.Load, s.auth.Load, s.theme.Load} {
		if err := load(ctx); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func (s *stores) service(target storage.IStorageProvider) *Service {
	return NewService(s.repo, target, s.blogs, s.auth, s.theme)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newStores(t)
	added, err := src.blogs.AddBlog(ctx, model.BlogDraft{
		Title:   "Backup Me",
		Content: "# hi",
		Author:  model.Author{ID: "u-1001", Name: "Alex Chen"},
	})
	if err != nil {
		t.Fatal(err)
	}
	src.blogs.ToggleBookmark(ctx, added.ID)
	src.theme.SetTheme(ctx, model.ThemeDark)
	src.auth.Login(ctx, "", "")

	archive, err := src.service(nil).Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(archive.Snapshots) != 3 {
		t.Fatalf("应导出 3 个快照, got %d", len(archive.Snapshots))
	}

	var buf bytes.Buffer
	if err := Encode(&buf, archive); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	dst := newStores(t)
	if err := dst.service(nil).Import(ctx, decoded); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	got := dst.blogs.GetBlog(added.ID)
	if got == nil || !got.Bookmarked {
		t.Fatalf("导入后文章或收藏丢失: %+v", got)
	}
	if dst.theme.Preference().Theme != model.ThemeDark {
		t.Error("导入后主题未恢复")
	}
	if !dst.auth.Current().IsAuthenticated {
		t.Error("导入后会话未恢复")
	}
}

func TestImportRejectsInvalidArchive(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name      string
		snapshots map[string]string
		wantErr   error
	}{
		{name: "空归档", snapshots: map[string]string{}, wantErr: constant.ErrBadRequest},
		{name: "未知键", snapshots: map[string]string{"other-storage": `{}`}, wantErr: constant.ErrBadRequest},
		{name: "未来版本", snapshots: map[string]string{
			constant.ThemeStorageKey: `{"version":1,"state":{"theme":"dark"}}`,
			constant.BlogStorageKey:  `{"version":99,"state":{}}`,
		}, wantErr: constant.ErrUnsupportedVersion},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStores(t)
			raw := &Archive{Snapshots: toRaw(tc.snapshots)}
			if err := s.service(nil).Import(ctx, raw); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Import() error = %v, want %v", err, tc.wantErr)
			}
			// 校验失败时不应写入任何快照
			if s.theme.Preference().Theme != theme.DefaultPreference().Theme {
				t.Error("校验失败后主题不应改变")
			}
			if data, _ := s.repo.Load(ctx, constant.ThemeStorageKey); data != nil {
				t.Error("校验失败后不应写入仓库")
			}
		})
	}
}

func toRaw(in map[string]string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = json.RawMessage(v)
	}
	return out
}

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	target, err := storage.NewLocalProvider(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := newStores(t)
	src.theme.SetColorScheme(ctx, "Teal")
	svc := src.service(target)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }

	name, err := svc.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if name != "binary-blogs-20260301-080000.000.json" {
		t.Errorf("Backup() name = %s", name)
	}

	files, err := svc.List(ctx)
	if err != nil || len(files) != 1 || files[0].Name != name {
		t.Fatalf("List() = %+v, %v", files, err)
	}

	dst := newStores(t)
	if err := dst.service(target).Restore(ctx, name); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if dst.theme.Preference().SelectedColorName != "Teal" {
		t.Errorf("恢复后配色 = %s", dst.theme.Preference().SelectedColorName)
	}
	if err := dst.service(target).Restore(ctx, "binary-blogs-missing.json"); !errors.Is(err, constant.ErrNotFound) {
		t.Errorf("Restore(missing) error = %v", err)
	}
}
