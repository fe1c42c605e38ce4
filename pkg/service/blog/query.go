// pkg/service/blog/query.go
package blog

import (
	"sort"
	"strings"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

// 分页默认值
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TagCount 标签及其文章数
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GetBlog 按 ID 查找
func (s *Store) GetBlog(id string) *model.BlogView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, b := s.findLocked(id)
	if b == nil {
		return nil
	}
	view := s.viewLocked(b)
	return &view
}

// GetBlogBySlug 按 slug 查找。slug 不唯一，返回集合中第一个匹配项，即最新的一篇。
func (s *Store) GetBlogBySlug(slug string) *model.BlogView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.blogs {
		if b.Slug == slug {
			view := s.viewLocked(b)
			return &view
		}
	}
	return nil
}

// GetBookmarkedBlogs 返回已收藏的文章，保持集合顺序
func (s *Store) GetBookmarkedBlogs() []model.BlogView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLocked(func(b *model.Blog) bool {
		_, ok := s.bookmarks[b.ID]
		return ok
	})
}

// GetUserBlogs 返回某个作者的文章
func (s *Store) GetUserBlogs(userID string) []model.BlogView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLocked(func(b *model.Blog) bool {
		return b.Author.ID == userID
	})
}

// AllBlogs 返回全部文章的副本
func (s *Store) AllBlogs() []model.BlogView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLocked(func(*model.Blog) bool { return true })
}

// Len 文章总数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blogs)
}

// ListBlogs 按标签和关键字过滤后分页
func (s *Store) ListBlogs(opts model.ListBlogsOptions) model.BlogListResult {
	page, pageSize := opts.Page, opts.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	keyword := strings.ToLower(strings.TrimSpace(opts.Keyword))
	tag := strings.TrimSpace(opts.Tag)

	s.mu.RLock()
	matched := s.filterLocked(func(b *model.Blog) bool {
		if tag != "" && !hasTag(b.Tags, tag) {
			return false
		}
		if keyword == "" {
			return true
		}
		if strings.Contains(strings.ToLower(b.Title), keyword) ||
			strings.Contains(strings.ToLower(b.Excerpt), keyword) {
			return true
		}
		for _, t := range b.Tags {
			if strings.Contains(strings.ToLower(t), keyword) {
				return true
			}
		}
		return false
	})
	s.mu.RUnlock()

	result := model.BlogListResult{List: []model.BlogView{}, Total: len(matched), Page: page, PageSize: pageSize}
	if page-1 >= (len(matched)+pageSize-1)/pageSize {
		return result
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	result.List = matched[start:end]
	return result
}

// Tags 统计所有标签，按文章数降序，数量相同按名称排序
func (s *Store) Tags() []TagCount {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, b := range s.blogs {
		for _, t := range b.Tags {
			counts[t]++
		}
	}
	s.mu.RUnlock()

	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) filterLocked(keep func(*model.Blog) bool) []model.BlogView {
	out := []model.BlogView{}
	for _, b := range s.blogs {
		if keep(b) {
			out = append(out, s.viewLocked(b))
		}
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
