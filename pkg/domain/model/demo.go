package model

// DemoPost 是演示数据集中的一篇文章。日期为字符串，计数可缺省，
// 写入 store 前会被规范化。
type DemoPost struct {
	ID         string        `yaml:"id" json:"id"`
	Title      string        `yaml:"title" json:"title"`
	Slug       string        `yaml:"slug" json:"slug"`
	Excerpt    string        `yaml:"excerpt" json:"excerpt"`
	Content    string        `yaml:"content" json:"content"`
	CoverImage string        `yaml:"coverImage" json:"coverImage"`
	Author     Author        `yaml:"author" json:"author"`
	Tags       []string      `yaml:"tags" json:"tags"`
	CreatedAt  string        `yaml:"createdAt" json:"createdAt"`
	UpdatedAt  string        `yaml:"updatedAt" json:"updatedAt"`
	Views      *int          `yaml:"views" json:"views"`
	Likes      *int          `yaml:"likes" json:"likes"`
	Comments   []DemoComment `yaml:"comments" json:"comments"`
}

// DemoComment 是演示文章下的评论
type DemoComment struct {
	ID         string `yaml:"id" json:"id"`
	UserID     string `yaml:"userId" json:"userId"`
	UserName   string `yaml:"userName" json:"userName"`
	UserAvatar string `yaml:"userAvatar" json:"userAvatar"`
	Content    string `yaml:"content" json:"content"`
	CreatedAt  string `yaml:"createdAt" json:"createdAt"`
}
