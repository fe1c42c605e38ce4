/*
 * @Description: 文章领域模型
 */
package model

// --- 核心领域对象 (Domain Object) ---

// Author 是创建文章时对作者信息的快照，之后用户资料变更不会回写到已有文章。
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio,omitempty"`
}

// Blog 是文章的核心领域模型。
// 收藏状态不在文章上保存，由 BlogStore 的收藏集合在读取时派生。
type Blog struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt"`
	CoverImage   string    `json:"coverImage"`
	PrimaryColor string    `json:"primaryColor,omitempty"`
	Author       Author    `json:"author"`
	Tags         []string  `json:"tags"`
	CreatedAt    int64     `json:"createdAt"` // 毫秒时间戳
	UpdatedAt    int64     `json:"updatedAt"` // 毫秒时间戳
	Views        int       `json:"views"`
	Likes        int       `json:"likes"`
	Comments     []Comment `json:"comments"`
}

// Clone 返回深拷贝，store 对外只暴露副本
func (b *Blog) Clone() Blog {
	c := *b
	c.Tags = append([]string(nil), b.Tags...)
	c.Comments = append([]Comment(nil), b.Comments...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return c
}

// BlogView 是对外返回的文章视图，附带派生的收藏和点赞状态
type BlogView struct {
	Blog
	Bookmarked bool `json:"bookmarked"`
	Liked      bool `json:"liked"`
}

// --- API 数据传输对象 (Data Transfer Objects) ---

// BlogDraft 是新建文章的输入。store 层不做校验，校验由 Handler 负责。
type BlogDraft struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	Author     Author   `json:"author"`
}

// BlogPatch 是更新文章的部分字段，nil 表示不修改
type BlogPatch struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	Excerpt      *string   `json:"excerpt"`
	CoverImage   *string   `json:"coverImage"`
	PrimaryColor *string   `json:"primaryColor"`
	Tags         *[]string `json:"tags"`
}

// IsEmpty 判断补丁是否没有任何字段
func (p BlogPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Excerpt == nil &&
		p.CoverImage == nil && p.PrimaryColor == nil && p.Tags == nil
}

// CreateBlogRequest 定义了创建文章的请求体
type CreateBlogRequest struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags" binding:"required,min=1"`
}

// UpdateBlogRequest 定义了更新文章的请求体
type UpdateBlogRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt"`
	CoverImage *string   `json:"coverImage"`
	Tags       *[]string `json:"tags"`
}

// ListBlogsOptions 列表查询参数
type ListBlogsOptions struct {
	Tag      string
	Keyword  string
	Page     int
	PageSize int
}

// BlogListResult 分页结果
type BlogListResult struct {
	List     []BlogView `json:"list"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// RenderedBlog 是详情页返回的结构，包含渲染后的 HTML 和目录
type RenderedBlog struct {
	BlogView
	HTML    string        `json:"html"`
	Outline []HeadingItem `json:"outline"`
}

// HeadingItem 是文章目录中的一项
type HeadingItem struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}
