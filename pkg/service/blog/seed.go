// pkg/service/blog/seed.go
package blog

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
	"github.com/binary-blogs/binary-blogs/internal/pkg/strutil"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

// InitializeStore 在文章数不超过阈值时追加演示文章。已存在的 ID 会被跳过，重复调用不会产生重复数据。
func (s *Store) InitializeStore(ctx context.Context, posts []model.DemoPost) (int, error) {
	return s.seed(ctx, posts, false)
}

// ForceSeed 忽略阈值导入演示文章，仍按 ID 去重
func (s *Store) ForceSeed(ctx context.Context, posts []model.DemoPost) (int, error) {
	return s.seed(ctx, posts, true)
}

// Seeded 是否导入过演示数据
func (s *Store) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

func (s *Store) seed(ctx context.Context, posts []model.DemoPost, force bool) (int, error) {
	s.mu.Lock()
	if !force && len(s.blogs) > s.seedThreshold {
		s.mu.Unlock()
		log.Printf("[BlogStore] 已有 %d 篇文章，跳过演示数据", len(s.blogs))
		return 0, nil
	}

	added := 0
	for _, p := range posts {
		if p.ID == "" {
			continue
		}
		if _, existing := s.findLocked(p.ID); existing != nil {
			continue
		}
		b := s.normalizeDemoLocked(p)
		s.blogs = append(s.blogs, &b)
		added++
	}
	if added == 0 && s.seeded {
		s.mu.Unlock()
		return 0, nil
	}
	s.seeded = true
	if err := s.persistLocked(ctx, "seed"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.mu.Unlock()

	log.Printf("[BlogStore] 导入了 %d 篇演示文章", added)
	if added > 0 {
		s.bus.Publish(event.BlogsSeeded, event.BlogEvent{Value: added})
	}
	return added, nil
}

// normalizeDemoLocked 把演示文章转换为领域对象：日期转毫秒，缺失的计数用随机占位值
func (s *Store) normalizeDemoLocked(p model.DemoPost) model.Blog {
	now := s.now()
	created := now
	if t, ok := parseDate(p.CreatedAt); ok {
		created = t
	}
	updated := created
	if t, ok := parseDate(p.UpdatedAt); ok {
		updated = t
	}

	views := 100 + s.rnd.Intn(1000)
	if p.Views != nil {
		views = *p.Views
	}
	likes := 10 + s.rnd.Intn(100)
	if p.Likes != nil {
		likes = *p.Likes
	}

	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = strutil.Slugify(p.Title)
	}
	if slug == "" {
		slug = p.ID
	}

	comments := make([]model.Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		at := created
		if t, ok := parseDate(c.CreatedAt); ok {
			at = t
		}
		comments = append(comments, model.Comment{
			ID:         id,
			UserID:     c.UserID,
			UserName:   c.UserName,
			UserAvatar: c.UserAvatar,
			Content:    c.Content,
			CreatedAt:  at.UnixMilli(),
		})
	}

	return model.Blog{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       slug,
		Content:    p.Content,
		Excerpt:    p.Excerpt,
		CoverImage: p.CoverImage,
		Author:     p.Author,
		Tags:       append([]string{}, p.Tags...),
		CreatedAt:  created.UnixMilli(),
		UpdatedAt:  updated.UnixMilli(),
		Views:      views,
		Likes:      likes,
		Comments:   comments,
	}
}
