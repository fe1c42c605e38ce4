/*
 * @Description: 作者仪表盘统计
 */
package dashboard

import (
	"sort"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

// TopPostLimit 热门文章数量
const TopPostLimit = 5

// BlogSource 提供某个作者的文章
type BlogSource interface {
	GetUserBlogs(authorID string) []model.BlogView
}

// PostSummary 热门文章条目
type PostSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Views    int    `json:"views"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
}

// TagUsage 标签使用次数
type TagUsage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Dashboard 是仪表盘返回的数据
type Dashboard struct {
	AuthorID       string               `json:"authorId"`
	PostCount      int                  `json:"postCount"`
	TotalViews     int                  `json:"totalViews"`
	TotalLikes     int                  `json:"totalLikes"`
	TotalComments  int                  `json:"totalComments"`
	TopPosts       []PostSummary        `json:"topPosts"`
	Tags           []TagUsage           `json:"tags"`
	GuestAnalytics model.GuestAnalytics `json:"guestAnalytics,omitempty"`
}

// Service 汇总作者的文章数据
type Service struct {
	blogs BlogSource
}

func NewService(blogs BlogSource) *Service {
	return &Service{blogs: blogs}
}

// ForAuthor 计算某个作者的仪表盘，analytics 原样附带返回
func (s *Service) ForAuthor(authorID string, analytics model.GuestAnalytics) Dashboard {
	posts := s.blogs.GetUserBlogs(authorID)
	d := Dashboard{
		AuthorID:       authorID,
		PostCount:      len(posts),
		TopPosts:       []PostSummary{},
		Tags:           []TagUsage{},
		GuestAnalytics: analytics,
	}

	tagCounts := make(map[string]int)
	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		d.TotalViews += p.Views
		d.TotalLikes += p.Likes
		d.TotalComments += len(p.Comments)
		for _, t := range p.Tags {
			tagCounts[t]++
		}
		summaries = append(summaries, PostSummary{
			ID: p.ID, Title: p.Title, Slug: p.Slug,
			Views: p.Views, Likes: p.Likes, Comments: len(p.Comments),
		})
	}

	// 浏览数相同时保持集合原有顺序（新文章在前）
	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].Views > summaries[j].Views })
	if len(summaries) > TopPostLimit {
		summaries = summaries[:TopPostLimit]
	}
	d.TopPosts = append(d.TopPosts, summaries...)

	for name, n := range tagCounts {
		d.Tags = append(d.Tags, TagUsage{Name: name, Count: n})
	}
	sort.Slice(d.Tags, func(i, j int) bool {
		if d.Tags[i].Count != d.Tags[j].Count {
			return d.Tags[i].Count > d.Tags[j].Count
		}
		return d.Tags[i].Name < d.Tags[j].Name
	})
	return d
}
