package model

// Comment 是文章评论。只追加，不修改也不删除。
type Comment struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"createdAt"` // 毫秒时间戳
}

// CommentDraft 是新评论的输入
type CommentDraft struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
	Content    string `json:"content"`
}

// CreateCommentRequest 定义了发表评论的请求体
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}
