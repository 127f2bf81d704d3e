package model

import "time"

// User 结构体表示用户模型
type User struct {
	ID               int        `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // 密码哈希不应在JSON中暴露
	Fname            string     `json:"fname"`
	Lname            string     `json:"lname"`
	Bio              string     `json:"bio"`
	ProfilePicture   string     `json:"profile_picture"`
	ProfilePictureID string     `json:"-"` // 远程资源句柄不对外暴露
	Role             string     `json:"role"`
	Followers        []int      `json:"followers"`
	Following        []int      `json:"following"`
	FollowerCount    int        `json:"follower_count"`
	FollowingCount   int        `json:"following_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at"`
}

// RefreshToken 服务端持久化的刷新令牌，可据此撤销
type RefreshToken struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
