/*
 * @Description: 文章 Store，持有全部文章、收藏集合与点赞集合，每次变更后写快照
 */
package blog

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
	"github.com/binary-blogs/binary-blogs/internal/pkg/strutil"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/idgen"
	"github.com/binary-blogs/binary-blogs/pkg/service/snapshot"
)

// DefaultSeedThreshold 文章数不超过该值时才会导入演示数据
const DefaultSeedThreshold = 3

var storeMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "binaryblogs",
	Subsystem: "blog_store",
	Name:      "mutations_total",
	Help:      "文章 Store 成功写入的变更次数",
}, []string{"op"})

func init() {
	prometheus.MustRegister(storeMutations)
}

// Excerpter 根据正文生成摘要，由解析服务实现
type Excerpter interface {
	Excerpt(ctx context.Context, content string, maxRunes int) string
}

// Options 是 Store 的可选依赖，零值可用
type Options struct {
	Publisher     event.Publisher
	Excerpter     Excerpter
	SeedThreshold int
	Now           func() time.Time
	Rand          *rand.Rand
}

// Store 是文章集合的唯一持有者。集合按创建时间倒序排列，最新的在最前。
type Store struct {
	mu        sync.RWMutex
	blogs     []*model.Blog
	bookmarks map[string]struct{}
	likes     map[string]struct{}
	seq       uint64
	seeded    bool

	snap          *snapshot.Store
	bus           event.Publisher
	excerpter     Excerpter
	seedThreshold int
	now           func() time.Time
	rnd           *rand.Rand
}

// NewStore 创建一个空的文章 Store，调用 Load 后才会读入快照
func NewStore(repo repository.SnapshotRepository, opts Options) *Store {
	s := &Store{
		bookmarks:     make(map[string]struct{}),
		likes:         make(map[string]struct{}),
		snap:          snapshot.NewStore(repo, constant.BlogStorageKey, newCodec()),
		bus:           opts.Publisher,
		excerpter:     opts.Excerpter,
		seedThreshold: opts.SeedThreshold,
		now:           opts.Now,
		rnd:           opts.Rand,
	}
	if s.bus == nil {
		s.bus = event.NopPublisher{}
	}
	if s.seedThreshold <= 0 {
		s.seedThreshold = DefaultSeedThreshold
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Load 从快照恢复状态，快照不存在时保持为空
func (s *Store) Load(ctx context.Context) error {
	var st persistedState
	found, err := s.snap.Load(ctx, &st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	if !found {
		log.Printf("[BlogStore] 未找到快照，使用空集合")
		return nil
	}

	for i := range st.Blogs {
		b := st.Blogs[i].Clone()
		s.blogs = append(s.blogs, &b)
	}
	for _, id := range st.Bookmarks {
		s.bookmarks[id] = struct{}{}
	}
	for _, id := range st.Likes {
		s.likes[id] = struct{}{}
	}
	s.seq = st.Seq
	s.seeded = st.Seeded
	log.Printf("[BlogStore] 已加载 %d 篇文章", len(s.blogs))
	return nil
}

func (s *Store) reset() {
	s.blogs = nil
	s.bookmarks = make(map[string]struct{})
	s.likes = make(map[string]struct{})
	s.seq = 0
	s.seeded = false
}

// persistLocked 写快照，调用方必须持有写锁
func (s *Store) persistLocked(ctx context.Context, op string) error {
	st := persistedState{
		Blogs:     make([]model.Blog, 0, len(s.blogs)),
		Bookmarks: sortedKeys(s.bookmarks),
		Likes:     sortedKeys(s.likes),
		Seq:       s.seq,
		Seeded:    s.seeded,
	}
	for _, b := range s.blogs {
		st.Blogs = append(st.Blogs, b.Clone())
	}
	if err := s.snap.Save(ctx, st); err != nil {
		log.Printf("[BlogStore] 写入快照失败 (op=%s): %v", op, err)
		return fmt.Errorf("保存文章快照失败: %w", err)
	}
	storeMutations.WithLabelValues(op).Inc()
	return nil
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

func (s *Store) findLocked(id string) (int, *model.Blog) {
	for i, b := range s.blogs {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

func (s *Store) viewLocked(b *model.Blog) model.BlogView {
	_, bookmarked := s.bookmarks[b.ID]
	_, liked := s.likes[b.ID]
	return model.BlogView{Blog: b.Clone(), Bookmarked: bookmarked, Liked: liked}
}

// nextIDLocked 生成一个集合中不存在的公共 ID
func (s *Store) nextIDLocked() (string, error) {
	for {
		s.seq++
		id, err := idgen.GeneratePublicID(s.seq, idgen.EntityTypeBlog)
		if err != nil {
			return "", err
		}
		if _, existing := s.findLocked(id); existing == nil {
			return id, nil
		}
	}
}

// AddBlog 新建文章并放到集合最前面。slug 只在创建时由标题生成一次。
func (s *Store) AddBlog(ctx context.Context, draft model.BlogDraft) (*model.BlogView, error) {
	excerpt := strings.TrimSpace(draft.Excerpt)
	if excerpt == "" && s.excerpter != nil {
		excerpt = s.excerpter.Excerpt(ctx, draft.Content, 0)
	}
	tags := append([]string{}, draft.Tags...)

	s.mu.Lock()
	id, err := s.nextIDLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("生成文章ID失败: %w", err)
	}
	slug := strutil.Slugify(draft.Title)
	if slug == "" {
		slug = id
	}
	now := s.nowMillis()
	b := &model.Blog{
		ID:         id,
		Title:      draft.Title,
		Slug:       slug,
		Content:    draft.Content,
		Excerpt:    excerpt,
		CoverImage: draft.CoverImage,
		Author:     draft.Author,
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
		Comments:   []model.Comment{},
	}
	s.blogs = append([]*model.Blog{b}, s.blogs...)
	if err := s.persistLocked(ctx, "add"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	view := s.viewLocked(b)
	s.mu.Unlock()

	s.bus.Publish(event.BlogCreated, event.BlogEvent{BlogID: id})
	if b.CoverImage != "" {
		s.bus.Publish(event.BlogCoverChanged, event.BlogEvent{BlogID: id, CoverImage: b.CoverImage})
	}
	return &view, nil
}

// UpdateBlog 浅合并补丁字段。id 不存在时返回 nil 且不做任何修改。
func (s *Store) UpdateBlog(ctx context.Context, id string, patch model.BlogPatch) (*model.BlogView, error) {
	s.mu.Lock()
	_, b := s.findLocked(id)
	if b == nil {
		s.mu.Unlock()
		return nil, nil
	}

	coverChanged := false
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Content != nil {
		b.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		b.Excerpt = *patch.Excerpt
	}
	if patch.CoverImage != nil && *patch.CoverImage != b.CoverImage {
		b.CoverImage = *patch.CoverImage
		b.PrimaryColor = ""
		coverChanged = true
	}
	if patch.PrimaryColor != nil {
		b.PrimaryColor = *patch.PrimaryColor
	}
	if patch.Tags != nil {
		b.Tags = append([]string{}, (*patch.Tags)...)
	}
	b.UpdatedAt = s.nowMillis()

	if err := s.persistLocked(ctx, "update"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	view := s.viewLocked(b)
	s.mu.Unlock()

	s.bus.Publish(event.BlogUpdated, event.BlogEvent{BlogID: id})
	if coverChanged && view.CoverImage != "" {
		s.bus.Publish(event.BlogCoverChanged, event.BlogEvent{BlogID: id, CoverImage: view.CoverImage})
	}
	return &view, nil
}

// SetPrimaryColor 写入封面主色。封面已被替换时丢弃过期的结果。
func (s *Store) SetPrimaryColor(ctx context.Context, id, coverImage, color string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, b := s.findLocked(id)
	if b == nil || b.CoverImage != coverImage || b.PrimaryColor == color {
		return false, nil
	}
	b.PrimaryColor = color
	if err := s.persistLocked(ctx, "primary_color"); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteBlog 删除文章，同时从收藏和点赞集合中移除
func (s *Store) DeleteBlog(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	idx, b := s.findLocked(id)
	if b == nil {
		s.mu.Unlock()
		return false, nil
	}
	s.blogs = append(s.blogs[:idx:idx], s.blogs[idx+1:]...)
	delete(s.bookmarks, id)
	delete(s.likes, id)
	if err := s.persistLocked(ctx, "delete"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.bus.Publish(event.BlogDeleted, event.BlogEvent{BlogID: id})
	return true, nil
}

// ToggleBookmark 切换收藏状态
func (s *Store) ToggleBookmark(ctx context.Context, id string) (*model.BlogView, error) {
	s.mu.Lock()
	_, b := s.findLocked(id)
	if b == nil {
		s.mu.Unlock()
		return nil, nil
	}
	delta := 1
	if _, ok := s.bookmarks[id]; ok {
		delete(s.bookmarks, id)
		delta = -1
	} else {
		s.bookmarks[id] = struct{}{}
	}
	if err := s.persistLocked(ctx, "bookmark"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	view := s.viewLocked(b)
	s.mu.Unlock()

	s.bus.Publish(event.BlogBookmarked, event.BlogEvent{BlogID: id, Value: delta})
	return &view, nil
}

// LikeBlog 切换点赞。点赞数随之加一或减一，不做下限保护。
func (s *Store) LikeBlog(ctx context.Context, id string) (*model.BlogView, error) {
	s.mu.Lock()
	_, b := s.findLocked(id)
	if b == nil {
		s.mu.Unlock()
		return nil, nil
	}
	delta := 1
	if _, ok := s.likes[id]; ok {
		delete(s.likes, id)
		delta = -1
	} else {
		s.likes[id] = struct{}{}
	}
	b.Likes += delta
	b.UpdatedAt = s.nowMillis()
	if err := s.persistLocked(ctx, "like"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	view := s.viewLocked(b)
	s.mu.Unlock()

	s.bus.Publish(event.BlogLiked, event.BlogEvent{BlogID: id, Value: delta})
	return &view, nil
}

// IsLikedByUser 判断当前用户是否点赞过该文章
func (s *Store) IsLikedByUser(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likes[id]
	return ok
}

// AddComment 在评论列表末尾追加一条评论
func (s *Store) AddComment(ctx context.Context, blogID string, draft model.CommentDraft) (*model.Comment, error) {
	s.mu.Lock()
	_, b := s.findLocked(blogID)
	if b == nil {
		s.mu.Unlock()
		return nil, nil
	}
	now := s.nowMillis()
	comment := model.Comment{
		ID:         uuid.NewString(),
		UserID:     draft.UserID,
		UserName:   draft.UserName,
		UserAvatar: draft.UserAvatar,
		Content:    draft.Content,
		CreatedAt:  now,
	}
	b.Comments = append(b.Comments, comment)
	b.UpdatedAt = now
	if err := s.persistLocked(ctx, "comment"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.bus.Publish(event.CommentAdded, event.BlogEvent{BlogID: blogID})
	return &comment, nil
}

// IncrementView 浏览数加一
func (s *Store) IncrementView(ctx context.Context, id string) (*model.BlogView, error) {
	s.mu.Lock()
	_, b := s.findLocked(id)
	if b == nil {
		s.mu.Unlock()
		return nil, nil
	}
	b.Views++
	b.UpdatedAt = s.nowMillis()
	if err := s.persistLocked(ctx, "view"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	view := s.viewLocked(b)
	s.mu.Unlock()

	s.bus.Publish(event.BlogViewed, event.BlogEvent{BlogID: id, Value: 1})
	return &view, nil
}
