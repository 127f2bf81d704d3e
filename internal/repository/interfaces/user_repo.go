package interfaces

import "github.com/yashyenugu/NeonGram/internal/model"

// UserRepository 接口定义了用户仓库应该实现的方法
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByUsernameOrEmail(username, email string) (*model.User, error)
	Update(user *model.User) error
	UpdateProfilePicture(userID int, url, assetID string) error
	SearchByUsername(substring string) ([]*model.User, error)

	// 关注关系的两侧必须在同一事务中提交或一起回滚
	Follow(followerID, followedID int) error
	Unfollow(followerID, followedID int) error
	IsFollowing(followerID, followedID int) (bool, error)
	GetFollowers(userID int) ([]int, error)
	GetFollowing(userID int) ([]int, error)
}
