package client

import (
	"sync"

	"github.com/yashyenugu/NeonGram/internal/model"
)

// reactor 是坐标器依赖的最小服务端接口，便于测试替换
type reactor interface {
	React(postID int, kind string) (*model.Post, error)
	RemoveReaction(postID int, reaction string) (*model.Post, error)
}

// ReactionCoordinator 维护单个帖子反应集合的本地视图。
// 操作先乐观地更新本地状态再请求服务端；
// 请求失败时按精确的逆操作回滚，不做全量刷新
type ReactionCoordinator struct {
	api    reactor
	userID int

	mu       sync.Mutex
	postID   int
	likes    map[int]bool
	dislikes map[int]bool
}

func NewReactionCoordinator(api reactor, userID int, post *model.Post) *ReactionCoordinator {
	rc := &ReactionCoordinator{
		api:      api,
		userID:   userID,
		postID:   post.ID,
		likes:    make(map[int]bool),
		dislikes: make(map[int]bool),
	}
	for _, id := range post.Likes {
		rc.likes[id] = true
	}
	for _, id := range post.Dislikes {
		rc.dislikes[id] = true
	}
	return rc
}

// Liked 返回当前用户是否点过赞
func (rc *ReactionCoordinator) Liked() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.likes[rc.userID]
}

// Disliked 返回当前用户是否点过踩
func (rc *ReactionCoordinator) Disliked() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.dislikes[rc.userID]
}

// Counts 返回当前的赞/踩计数
func (rc *ReactionCoordinator) Counts() (likes, dislikes int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.likes), len(rc.dislikes)
}

// Like 点赞。本地先把自己加入赞集合并从踩集合移除，
// 服务端失败时恢复两个集合到操作前的状态
func (rc *ReactionCoordinator) Like() error {
	rc.mu.Lock()
	hadLike := rc.likes[rc.userID]
	hadDislike := rc.dislikes[rc.userID]
	rc.likes[rc.userID] = true
	delete(rc.dislikes, rc.userID)
	rc.mu.Unlock()

	if _, err := rc.api.React(rc.postID, model.ReactionLike); err != nil {
		rc.mu.Lock()
		if !hadLike {
			delete(rc.likes, rc.userID)
		}
		if hadDislike {
			rc.dislikes[rc.userID] = true
		}
		rc.mu.Unlock()
		return err
	}
	return nil
}

// Dislike 点踩，回滚逻辑与 Like 对称
func (rc *ReactionCoordinator) Dislike() error {
	rc.mu.Lock()
	hadDislike := rc.dislikes[rc.userID]
	hadLike := rc.likes[rc.userID]
	rc.dislikes[rc.userID] = true
	delete(rc.likes, rc.userID)
	rc.mu.Unlock()

	if _, err := rc.api.React(rc.postID, model.ReactionDislike); err != nil {
		rc.mu.Lock()
		if !hadDislike {
			delete(rc.dislikes, rc.userID)
		}
		if hadLike {
			rc.likes[rc.userID] = true
		}
		rc.mu.Unlock()
		return err
	}
	return nil
}

// RemoveLike 撤销点赞
func (rc *ReactionCoordinator) RemoveLike() error {
	rc.mu.Lock()
	had := rc.likes[rc.userID]
	delete(rc.likes, rc.userID)
	rc.mu.Unlock()

	if _, err := rc.api.RemoveReaction(rc.postID, "likes"); err != nil {
		rc.mu.Lock()
		if had {
			rc.likes[rc.userID] = true
		}
		rc.mu.Unlock()
		return err
	}
	return nil
}

// RemoveDislike 撤销点踩
func (rc *ReactionCoordinator) RemoveDislike() error {
	rc.mu.Lock()
	had := rc.dislikes[rc.userID]
	delete(rc.dislikes, rc.userID)
	rc.mu.Unlock()

	if _, err := rc.api.RemoveReaction(rc.postID, "dislikes"); err != nil {
		rc.mu.Lock()
		if had {
			rc.dislikes[rc.userID] = true
		}
		rc.mu.Unlock()
		return err
	}
	return nil
}

// ToggleLike 实现点击行为：已赞再点则撤销，否则点赞
func (rc *ReactionCoordinator) ToggleLike() error {
	if rc.Liked() {
		return rc.RemoveLike()
	}
	return rc.Like()
}

// ToggleDislike 与 ToggleLike 对称
func (rc *ReactionCoordinator) ToggleDislike() error {
	if rc.Disliked() {
		return rc.RemoveDislike()
	}
	return rc.Dislike()
}
