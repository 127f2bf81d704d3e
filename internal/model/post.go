package model

import "time"

// 反应类型，一个用户对同一帖子最多持有一种
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

type Post struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Text      string    `json:"text"`
	PostImage string    `json:"post_image"`
	// 媒体托管方的资源句柄，删除远程图片时使用
	PostImageID string    `json:"-"`
	Time        time.Time `json:"time"`
	User        *User     `json:"user,omitempty"`
	Likes       []int     `json:"likes"`
	Dislikes    []int     `json:"dislikes"`
}

type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	UserID    int       `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// Reaction 表示用户对帖子的点赞或点踩记录
type Reaction struct {
	UserID int    `json:"user_id"`
	PostID int    `json:"post_id"`
	Kind   string `json:"kind"`
}
