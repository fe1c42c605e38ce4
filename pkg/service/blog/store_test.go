package blog

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/binary-blogs/binary-blogs/internal/infra/persistence/snapshot"
	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/service/parser"
	"github.com/binary-blogs/binary-blogs/pkg/service/utility"
)

// recordingPublisher 记录发布过的事件
type recordingPublisher struct {
	mu     sync.Mutex
	topics []event.Topic
}

func (p *recordingPublisher) Publish(topic event.Topic, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

func (p *recordingPublisher) has(topic event.Topic) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		if t == topic {
			return true
		}
	}
	return false
}

// stepClock 每次调用前进一秒
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestRepo(t *testing.T) repository.SnapshotRepository {
	t.Helper()
	cache := utility.NewMemoryCacheService()
	t.Cleanup(func() { cache.Close() })
	return snapshot.NewKVRepository(cache)
}

func newTestStore(t *testing.T, repo repository.SnapshotRepository, pub event.Publisher) *Store {
	t.Helper()
	clock := &stepClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(repo, Options{
		Publisher: pub,
		Excerpter: parser.NewService(),
		Now:       clock.Now,
		Rand:      rand.New(rand.NewSource(42)),
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func sampleDraft(title string) model.BlogDraft {
	return model.BlogDraft{
		Title:   title,
		Content: "# " + title + "\n\nSome **bold** body text.",
		Tags:    []string{"go", "testing"},
		Author:  model.Author{ID: "u-1", Name: "Tester"},
	}
}

func TestAddBlogThenFindBySlug(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := newTestStore(t, newTestRepo(t), pub)

	created, err := s.AddBlog(ctx, sampleDraft("Hello World"))
	if err != nil {
		t.Fatalf("AddBlog() error = %v", err)
	}
	if created.ID == "" || created.Slug != "hello-world" {
		t.Fatalf("AddBlog() = id %q slug %q", created.ID, created.Slug)
	}
	if created.Views != 0 || created.Likes != 0 || len(created.Comments) != 0 {
		t.Errorf("新文章计数应为零: %+v", created.Blog)
	}
	if created.CreatedAt != created.UpdatedAt {
		t.Errorf("createdAt(%d) != updatedAt(%d)", created.CreatedAt, created.UpdatedAt)
	}
	if created.Excerpt == "" {
		t.Error("未提供摘要时应自动生成")
	}

	found := s.GetBlogBySlug("hello-world")
	if found == nil || found.ID != created.ID {
		t.Fatalf("GetBlogBySlug() = %+v, want id %s", found, created.ID)
	}
	if !pub.has(event.BlogCreated) {
		t.Error("应发布 BlogCreated 事件")
	}
}

func TestAddBlogPrependsAndSlugFirstMatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)

	first, _ := s.AddBlog(ctx, sampleDraft("Same Title"))
	second, _ := s.AddBlog(ctx, sampleDraft("Same Title"))
	if first.ID == second.ID {
		t.Fatal("两篇文章的 ID 不应相同")
	}

	all := s.AllBlogs()
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("最新文章应位于最前: %v", all)
	}
	if got := s.GetBlogBySlug("same-title"); got == nil || got.ID != second.ID {
		t.Errorf("slug 重复时应返回最新的一篇, got %+v", got)
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	s := newTestStore(t, repo, nil)
	if _, err := s.AddBlog(ctx, sampleDraft("Existing")); err != nil {
		t.Fatal(err)
	}
	before, _ := repo.Load(ctx, constant.BlogStorageKey)

	title := "changed"
	testCases := []struct {
		name string
		call func() (bool, error)
	}{
		{name: "更新", call: func() (bool, error) {
			v, err := s.UpdateBlog(ctx, "missing", model.BlogPatch{Title: &title})
			return v != nil, err
		}},
		{name: "删除", call: func() (bool, error) { return s.DeleteBlog(ctx, "missing") }},
		{name: "收藏", call: func() (bool, error) {
			v, err := s.ToggleBookmark(ctx, "missing")
			return v != nil, err
		}},
		{name: "点赞", call: func() (bool, error) {
			v, err := s.LikeBlog(ctx, "missing")
			return v != nil, err
		}},
		{name: "评论", call: func() (bool, error) {
			v, err := s.AddComment(ctx, "missing", model.CommentDraft{Content: "hi"})
			return v != nil, err
		}},
		{name: "浏览", call: func() (bool, error) {
			v, err := s.IncrementView(ctx, "missing")
			return v != nil, err
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			changed, err := tc.call()
			if err != nil || changed {
				t.Fatalf("未知 ID 应无操作, got changed=%v err=%v", changed, err)
			}
			after, _ := repo.Load(ctx, constant.BlogStorageKey)
			if !bytes.Equal(before, after) {
				t.Error("未知 ID 不应改写快照")
			}
		})
	}

	if s.GetBlog("missing") != nil || s.GetBlogBySlug("missing") != nil {
		t.Error("查询未知文章应返回 nil")
	}
	if s.IsLikedByUser("missing") {
		t.Error("未知文章不应处于点赞状态")
	}
}

func TestToggleBookmarkSymmetry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	b, _ := s.AddBlog(ctx, sampleDraft("Bookmark me"))

	on, _ := s.ToggleBookmark(ctx, b.ID)
	if !on.Bookmarked {
		t.Fatal("第一次切换后应已收藏")
	}
	if got := s.GetBookmarkedBlogs(); len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("GetBookmarkedBlogs() = %v", got)
	}

	off, _ := s.ToggleBookmark(ctx, b.ID)
	if off.Bookmarked {
		t.Fatal("第二次切换后应取消收藏")
	}
	if got := s.GetBookmarkedBlogs(); len(got) != 0 {
		t.Errorf("取消后收藏列表应为空, got %d", len(got))
	}
}

func TestLikeBlogToggle(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := newTestStore(t, newTestRepo(t), pub)
	b, _ := s.AddBlog(ctx, sampleDraft("Like me"))

	liked, _ := s.LikeBlog(ctx, b.ID)
	if liked.Likes != 1 || !liked.Liked || !s.IsLikedByUser(b.ID) {
		t.Fatalf("第一次点赞后 likes=%d liked=%v", liked.Likes, liked.Liked)
	}
	if liked.UpdatedAt <= b.UpdatedAt {
		t.Error("点赞应刷新 updatedAt")
	}

	unliked, _ := s.LikeBlog(ctx, b.ID)
	if unliked.Likes != 0 || unliked.Liked || s.IsLikedByUser(b.ID) {
		t.Fatalf("第二次点赞后 likes=%d liked=%v", unliked.Likes, unliked.Liked)
	}
	if !pub.has(event.BlogLiked) {
		t.Error("应发布 BlogLiked 事件")
	}
}

func TestIncrementViewMonotonic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	b, _ := s.AddBlog(ctx, sampleDraft("Views"))

	prev := 0
	for i := 1; i <= 5; i++ {
		v, err := s.IncrementView(ctx, b.ID)
		if err != nil {
			t.Fatal(err)
		}
		if v.Views != prev+1 {
			t.Fatalf("第 %d 次浏览后 views=%d, want %d", i, v.Views, prev+1)
		}
		prev = v.Views
	}
}

func TestAddCommentOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	b, _ := s.AddBlog(ctx, sampleDraft("Comments"))

	for _, content := range []string{"first", "second", "third"} {
		c, err := s.AddComment(ctx, b.ID, model.CommentDraft{UserID: "u-2", UserName: "R", Content: content})
		if err != nil || c == nil || c.ID == "" {
			t.Fatalf("AddComment(%s) = %+v, %v", content, c, err)
		}
	}

	got := s.GetBlog(b.ID).Comments
	if len(got) != 3 {
		t.Fatalf("评论数 = %d, want 3", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Content != want {
			t.Errorf("comments[%d] = %q, want %q", i, got[i].Content, want)
		}
	}
	if got[0].CreatedAt > got[2].CreatedAt {
		t.Error("评论时间应非递减")
	}
}

func TestUpdateBlogMergesFields(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := newTestStore(t, newTestRepo(t), pub)
	b, _ := s.AddBlog(ctx, sampleDraft("Original Title"))

	title := "New Title"
	cover := "https://example.com/cover.png"
	updated, err := s.UpdateBlog(ctx, b.ID, model.BlogPatch{Title: &title, CoverImage: &cover})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != title || updated.Content != b.Content {
		t.Errorf("合并结果不正确: %+v", updated.Blog)
	}
	if updated.Slug != "original-title" {
		t.Errorf("slug 不应随标题变化, got %q", updated.Slug)
	}
	if updated.UpdatedAt <= b.UpdatedAt {
		t.Error("更新应刷新 updatedAt")
	}
	if !pub.has(event.BlogCoverChanged) {
		t.Error("封面变化应发布 BlogCoverChanged")
	}
}

func TestSetPrimaryColorDiscardsStaleCover(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	draft := sampleDraft("Cover")
	draft.CoverImage = "https://example.com/a.png"
	b, _ := s.AddBlog(ctx, draft)

	if ok, _ := s.SetPrimaryColor(ctx, b.ID, "https://example.com/old.png", "#ffffff"); ok {
		t.Error("封面已变化时不应写入主色")
	}
	if ok, _ := s.SetPrimaryColor(ctx, b.ID, draft.CoverImage, "#112233"); !ok {
		t.Fatal("封面一致时应写入主色")
	}
	if got := s.GetBlog(b.ID).PrimaryColor; got != "#112233" {
		t.Errorf("PrimaryColor = %q", got)
	}
}

func TestDeleteBlogDropsFromSets(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	b, _ := s.AddBlog(ctx, sampleDraft("Delete me"))
	s.ToggleBookmark(ctx, b.ID)
	s.LikeBlog(ctx, b.ID)

	ok, err := s.DeleteBlog(ctx, b.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteBlog() = %v, %v", ok, err)
	}
	if s.GetBlog(b.ID) != nil || s.Len() != 0 {
		t.Error("删除后不应再能找到文章")
	}
	if s.IsLikedByUser(b.ID) || len(s.GetBookmarkedBlogs()) != 0 {
		t.Error("删除后应从收藏与点赞集合中移除")
	}
}

func TestSnapshotReload(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	s := newTestStore(t, repo, nil)

	a, _ := s.AddBlog(ctx, sampleDraft("Alpha"))
	b, _ := s.AddBlog(ctx, sampleDraft("Beta"))
	s.ToggleBookmark(ctx, a.ID)
	s.LikeBlog(ctx, b.ID)
	s.AddComment(ctx, a.ID, model.CommentDraft{Content: "kept"})

	reloaded := newTestStore(t, repo, nil)
	if reloaded.Len() != 2 {
		t.Fatalf("重新加载后文章数 = %d", reloaded.Len())
	}
	if got := reloaded.GetBlog(a.ID); got == nil || !got.Bookmarked || len(got.Comments) != 1 {
		t.Errorf("Alpha 状态丢失: %+v", got)
	}
	if !reloaded.IsLikedByUser(b.ID) || reloaded.GetBlog(b.ID).Likes != 1 {
		t.Error("Beta 的点赞状态丢失")
	}

	// ID 序列也会恢复，新文章不会撞号
	c, _ := reloaded.AddBlog(ctx, sampleDraft("Gamma"))
	if c.ID == a.ID || c.ID == b.ID {
		t.Errorf("重新加载后生成了重复 ID %s", c.ID)
	}
}

func TestListBlogs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	for _, d := range []model.BlogDraft{
		{Title: "Go generics", Content: "x", Tags: []string{"go"}},
		{Title: "Redis streams", Content: "x", Tags: []string{"redis"}},
		{Title: "Go and Redis", Content: "x", Tags: []string{"go", "redis"}},
	} {
		s.AddBlog(ctx, d)
	}

	testCases := []struct {
		name      string
		opts      model.ListBlogsOptions
		wantTotal int
		wantLen   int
		wantFirst string
	}{
		{name: "全部", opts: model.ListBlogsOptions{}, wantTotal: 3, wantLen: 3, wantFirst: "Go and Redis"},
		{name: "按标签", opts: model.ListBlogsOptions{Tag: "go"}, wantTotal: 2, wantLen: 2, wantFirst: "Go and Redis"},
		{name: "关键字", opts: model.ListBlogsOptions{Keyword: "STREAMS"}, wantTotal: 1, wantLen: 1, wantFirst: "Redis streams"},
		{name: "关键字匹配标签", opts: model.ListBlogsOptions{Keyword: "redis", Tag: "go"}, wantTotal: 1, wantLen: 1, wantFirst: "Go and Redis"},
		{name: "分页", opts: model.ListBlogsOptions{Page: 2, PageSize: 2}, wantTotal: 3, wantLen: 1, wantFirst: "Go generics"},
		{name: "超出页数", opts: model.ListBlogsOptions{Page: 9, PageSize: 2}, wantTotal: 3, wantLen: 0},
		{name: "页码乘积溢出", opts: model.ListBlogsOptions{Page: math.MaxInt/50 + 2, PageSize: 100}, wantTotal: 3, wantLen: 0},
		{name: "页码为整数上限", opts: model.ListBlogsOptions{Page: math.MaxInt, PageSize: 50}, wantTotal: 3, wantLen: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.ListBlogs(tc.opts)
			if got.Total != tc.wantTotal || len(got.List) != tc.wantLen {
				t.Fatalf("ListBlogs() total=%d len=%d, want %d/%d", got.Total, len(got.List), tc.wantTotal, tc.wantLen)
			}
			if tc.wantFirst != "" && got.List[0].Title != tc.wantFirst {
				t.Errorf("first = %q, want %q", got.List[0].Title, tc.wantFirst)
			}
		})
	}

	tags := s.Tags()
	if len(tags) != 2 || tags[0].Count != 2 {
		t.Errorf("Tags() = %+v", tags)
	}
}

func TestGetUserBlogs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestRepo(t), nil)
	mine := sampleDraft("Mine")
	other := sampleDraft("Other")
	other.Author = model.Author{ID: "u-9", Name: "Someone"}
	s.AddBlog(ctx, mine)
	s.AddBlog(ctx, other)

	got := s.GetUserBlogs("u-1")
	if len(got) != 1 || got[0].Title != "Mine" {
		t.Errorf("GetUserBlogs() = %v", got)
	}
}
