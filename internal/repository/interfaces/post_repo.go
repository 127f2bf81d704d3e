package interfaces

import (
	"time"

	"github.com/yashyenugu/NeonGram/internal/model"
)

// PostRepository 定义了帖子相关的数据库操作接口
type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id int) (*model.Post, error)
	// ListFeed 返回时间严格小于 lastTime 的帖子，按时间倒序。
	// lastTime 为 nil 时返回最新一页
	ListFeed(lastTime *time.Time, limit int) ([]*model.Post, error)
	ListFeedFromUsers(userIDs []int, lastTime *time.Time, limit int) ([]*model.Post, error)
	ListByUser(userID int) ([]*model.Post, error)
	Delete(id int) error

	// AddReaction 写入一种反应并隐式清除另一种；
	// RemoveReaction 只删除指定类型的反应
	AddReaction(userID, postID int, kind string) error
	RemoveReaction(userID, postID int, kind string) error
	GetReactions(postID int) (likes []int, dislikes []int, err error)
}
