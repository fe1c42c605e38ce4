/*
 * @Description: 用户与会话领域模型
 */
package model

// UserRole 用户角色
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// SocialLinks 用户的社交链接
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// User 是当前会话中的用户
type User struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Avatar      string       `json:"avatar"`
	Bio         string       `json:"bio"`
	JoinDate    string       `json:"joinDate"`
	Role        UserRole     `json:"role"`
	SocialLinks *SocialLinks `json:"socialLinks,omitempty"`
}

// AsAuthor 生成写入文章的作者快照
func (u *User) AsAuthor() Author {
	return Author{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Bio: u.Bio}
}

// UserPatch 是资料更新的浅合并补丁
type UserPatch struct {
	Name        *string      `json:"name"`
	Email       *string      `json:"email"`
	Avatar      *string      `json:"avatar"`
	Bio         *string      `json:"bio"`
	SocialLinks *SocialLinks `json:"socialLinks"`
}

// GuestAnalytics 是附加在会话上的演示统计数据
type GuestAnalytics map[string]interface{}

// Session 是 AuthStore 的完整状态快照
type Session struct {
	User            *User          `json:"user"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	SessionID       string         `json:"sessionId,omitempty"`
	GuestAnalytics  GuestAnalytics `json:"guestAnalytics,omitempty"`
}

// LoginRequest 定义了登录请求体，凭证不会被校验
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse 登录成功后的返回
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
	User        *User  `json:"user"`
}
