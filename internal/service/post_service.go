package service

import (
	"time"

	"github.com/yashyenugu/NeonGram/config"
	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/repository/interfaces"
)

// 路由参数中的反应集合名到存储层类型的映射
var reactionKinds = map[string]string{
	"likes":    model.ReactionLike,
	"dislikes": model.ReactionDislike,
}

// PostService 处理帖子和反应相关的业务逻辑
type PostService struct {
	postRepo interfaces.PostRepository
	userRepo interfaces.UserRepository
}

func NewPostService(postRepo interfaces.PostRepository, userRepo interfaces.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (s *PostService) CreatePost(post *model.Post) error {
	return s.postRepo.Create(post)
}

// GetPostByID 获取帖子，不存在时返回 ErrPostNotFound
func (s *PostService) GetPostByID(id int) (*model.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	return post, nil
}

// GetFeed 返回一页按时间倒序的帖子。lastTime 非空时
// 只返回严格早于它的帖子，页大小由配置决定
func (s *PostService) GetFeed(lastTime *time.Time) ([]*model.Post, error) {
	return s.postRepo.ListFeed(lastTime, config.AppConfig.FeedPageSize)
}

// GetFollowingFeed 返回关注的用户（含自己）的帖子页
func (s *PostService) GetFollowingFeed(userID int, lastTime *time.Time) ([]*model.Post, error) {
	following, err := s.userRepo.GetFollowing(userID)
	if err != nil {
		return nil, err
	}
	authors := append(following, userID)
	return s.postRepo.ListFeedFromUsers(authors, lastTime, config.AppConfig.FeedPageSize)
}

// GetUserPosts 返回某用户名下的全部帖子
func (s *PostService) GetUserPosts(username string) ([]*model.Post, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return s.postRepo.ListByUser(user.ID)
}

// React 写入点赞或点踩。同一用户先前的另一种反应被同一条
// 原子语句清除，因此稳定状态下两个集合互斥
func (s *PostService) React(userID, postID int, kind string) error {
	if kind != model.ReactionLike && kind != model.ReactionDislike {
		return errors.New(errors.ErrInvalidReaction, "unknown reaction")
	}

	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}

	return s.postRepo.AddReaction(userID, postID, kind)
}

// RemoveReaction 按路由参数（likes 或 dislikes）删除对应反应。
// 删除不存在的反应是无操作
func (s *PostService) RemoveReaction(userID, postID int, reaction string) error {
	kind, ok := reactionKinds[reaction]
	if !ok {
		return errors.New(errors.ErrInvalidReaction, "unknown reaction")
	}

	return s.postRepo.RemoveReaction(userID, postID, kind)
}

// DeletePost 删除帖子记录。远程图片的删除由调用方先行完成
func (s *PostService) DeletePost(id int) error {
	return s.postRepo.Delete(id)
}
