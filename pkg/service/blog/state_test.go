package blog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

const legacyBlob = `{
  "state": {
    "blogs": [
      {"id": "1", "title": "Flagged", "slug": "flagged", "content": "a", "tags": ["x"],
       "author": {"id": "u-1", "name": "A", "avatar": ""}, "bookmarked": true,
       "createdAt": "2024-01-02T03:04:05Z", "updatedAt": 1704164645000,
       "views": 3, "likes": 1, "comments": [{"id": "c1", "content": "hi", "createdAt": "2024-01-03"}]},
      {"id": "2", "title": "Listed", "slug": "listed", "content": "b", "tags": [],
       "author": {"id": "u-1", "name": "A", "avatar": ""}, "bookmarked": false,
       "createdAt": 1704067200000, "updatedAt": 1704067200000, "views": 0, "likes": 0, "comments": []},
      {"id": "3", "title": "Neither", "slug": "neither", "content": "c", "tags": [],
       "author": {"id": "u-2", "name": "B", "avatar": ""},
       "createdAt": 1704067200000, "updatedAt": 1704067200000, "views": 0, "likes": 0, "comments": []}
    ],
    "bookmarkedBlogs": ["2"],
    "likedBlogs": ["1", "1"]
  },
  "version": 0
}`

func TestLegacyMigrationUnionsBookmarks(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	if err := repo.Save(ctx, constant.BlogStorageKey, []byte(legacyBlob)); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, repo, nil)

	if s.Len() != 3 {
		t.Fatalf("迁移后文章数 = %d, want 3", s.Len())
	}
	bookmarked := map[string]bool{}
	for _, b := range s.GetBookmarkedBlogs() {
		bookmarked[b.ID] = true
	}
	if len(bookmarked) != 2 || !bookmarked["1"] || !bookmarked["2"] {
		t.Errorf("收藏集合应为两处来源的并集, got %v", bookmarked)
	}
	if !s.IsLikedByUser("1") || s.IsLikedByUser("2") {
		t.Error("点赞集合迁移不正确")
	}

	first := s.GetBlog("1")
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli()
	if first.CreatedAt != want {
		t.Errorf("字符串日期应转换为毫秒, got %d want %d", first.CreatedAt, want)
	}
	if first.Comments[0].CreatedAt != time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("评论日期未转换: %d", first.Comments[0].CreatedAt)
	}
	if !s.Seeded() {
		t.Error("有数据的旧快照应视为已导入过演示数据")
	}

	// 迁移后新建文章不应与旧 ID 冲突
	b, err := s.AddBlog(ctx, sampleDraft("After migration"))
	if err != nil {
		t.Fatal(err)
	}
	if b.ID == "1" || b.ID == "2" || b.ID == "3" {
		t.Errorf("新 ID %s 与旧 ID 冲突", b.ID)
	}
}

func TestLegacyFlag(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    bool
		wantErr bool
	}{
		{name: "布尔真", raw: `true`, want: true},
		{name: "布尔假", raw: `false`, want: false},
		{name: "字符串", raw: `"true"`, want: true},
		{name: "null", raw: `null`, want: false},
		{name: "无法解析的字符串", raw: `"maybe"`, wantErr: true},
		{name: "对象", raw: `{"v":1}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := legacyFlag(json.RawMessage(tc.raw))
			if (err != nil) != tc.wantErr {
				t.Fatalf("legacyFlag(%s) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("legacyFlag(%s) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestMalformedBookmarkFlagLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	ctx := context.Background()
	repo := newTestRepo(t)
	blob := `{"state":{"blogs":[
	  {"id":"1","title":"A","bookmarked":"yes"},
	  {"id":"2","title":"B","bookmarked":{"v":1}},
	  {"id":"3","title":"C","bookmarked":"true"}
	],"bookmarkedBlogs":["1"]},"version":0}`
	if err := repo.Save(ctx, constant.BlogStorageKey, []byte(blob)); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, repo, nil)

	bookmarked := map[string]bool{}
	for _, b := range s.GetBookmarkedBlogs() {
		bookmarked[b.ID] = true
	}
	if len(bookmarked) != 2 || !bookmarked["1"] || !bookmarked["3"] {
		t.Errorf("收藏集合 = %v, want 1 和 3", bookmarked)
	}
	if strings.Count(buf.String(), "[BlogStore]") < 2 || !strings.Contains(buf.String(), "bookmarked") {
		t.Errorf("无法解析的标记应记录日志, got %q", buf.String())
	}
}

func TestBareLegacyStateWithoutEnvelope(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bare := `{"blogs": [], "bookmarkedBlogs": [], "likedBlogs": []}`
	if err := repo.Save(ctx, constant.BlogStorageKey, []byte(bare)); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, repo, nil)
	if s.Len() != 0 || s.Seeded() {
		t.Errorf("空的旧快照: len=%d seeded=%v", s.Len(), s.Seeded())
	}
}

func TestFutureVersionRejected(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	repo.Save(ctx, constant.BlogStorageKey, []byte(`{"version": 99, "state": {}}`))

	s := NewStore(repo, Options{})
	err := s.Load(ctx)
	if !errors.Is(err, constant.ErrUnsupportedVersion) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedVersion", err)
	}
}

func intPtr(n int) *int { return &n }

func demoPosts() []model.DemoPost {
	return []model.DemoPost{
		{ID: "demo-1", Title: "Demo One", Content: "one", Tags: []string{"a"}, CreatedAt: "2024-03-01", Views: intPtr(7)},
		{ID: "demo-2", Title: "Demo Two", Content: "two", Tags: []string{"b"}, CreatedAt: "2024-03-02 10:00:00",
			Comments: []model.DemoComment{{UserName: "R", Content: "nice", CreatedAt: "2024-03-03"}}},
	}
}

func TestInitializeStoreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)

	added, err := s.InitializeStore(ctx, demoPosts())
	if err != nil || added != 2 {
		t.Fatalf("第一次导入 = %d, %v", added, err)
	}
	added, err = s.InitializeStore(ctx, demoPosts())
	if err != nil || added != 0 {
		t.Fatalf("第二次导入 = %d, %v; want 0", added, err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	one := s.GetBlog("demo-1")
	if one.Views != 7 {
		t.Errorf("给定的 views 应保留, got %d", one.Views)
	}
	if one.Likes < 10 || one.Likes > 109 {
		t.Errorf("随机 likes 越界: %d", one.Likes)
	}
	if one.Slug != "demo-one" {
		t.Errorf("缺省 slug 应由标题生成, got %q", one.Slug)
	}
	if one.CreatedAt != time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("日期未规范化: %d", one.CreatedAt)
	}
	two := s.GetBlog("demo-2")
	if two.Views < 100 || two.Views > 1099 {
		t.Errorf("随机 views 越界: %d", two.Views)
	}
	if len(two.Comments) != 1 || two.Comments[0].ID == "" {
		t.Errorf("演示评论应补全 ID: %+v", two.Comments)
	}
	if !s.Seeded() {
		t.Error("导入后 seeded 应为 true")
	}
}

func TestInitializeStoreThreshold(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	for _, title := range []string{"a", "b", "c", "d"} {
		s.AddBlog(ctx, sampleDraft(title))
	}

	added, err := s.InitializeStore(ctx, demoPosts())
	if err != nil || added != 0 {
		t.Fatalf("超过阈值时不应导入, got %d, %v", added, err)
	}

	added, err = s.ForceSeed(ctx, demoPosts())
	if err != nil || added != 2 {
		t.Fatalf("ForceSeed() = %d, %v", added, err)
	}
	all := s.AllBlogs()
	if all[len(all)-1].ID != "demo-2" {
		t.Error("演示文章应追加在末尾")
	}
}
