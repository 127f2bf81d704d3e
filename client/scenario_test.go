package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yashyenugu/NeonGram/internal/model"
)

// statefulReactor 模拟服务端的反应集合语义：
// 同一用户写入一种反应时另一种被同时清除
type statefulReactor struct {
	userID   int
	likes    map[int]bool
	dislikes map[int]bool
}

func newStatefulReactor(userID int) *statefulReactor {
	return &statefulReactor{
		userID:   userID,
		likes:    map[int]bool{},
		dislikes: map[int]bool{},
	}
}

func (s *statefulReactor) React(postID int, kind string) (*model.Post, error) {
	if kind == model.ReactionLike {
		s.likes[s.userID] = true
		delete(s.dislikes, s.userID)
	} else {
		s.dislikes[s.userID] = true
		delete(s.likes, s.userID)
	}
	return &model.Post{ID: postID}, nil
}

func (s *statefulReactor) RemoveReaction(postID int, reaction string) (*model.Post, error) {
	if reaction == "likes" {
		delete(s.likes, s.userID)
	} else {
		delete(s.dislikes, s.userID)
	}
	return &model.Post{ID: postID}, nil
}

// TestLikeThenDislikeScenario 走一遍完整的点击路径：
// alice 点赞一个空白帖子，然后改成点踩。
// 本地视图与服务端状态在每一步都一致
func TestLikeThenDislikeScenario(t *testing.T) {
	const aliceID = 1

	server := newStatefulReactor(aliceID)
	rc := NewReactionCoordinator(server, aliceID, &model.Post{ID: 10})

	// alice 点赞：likes={alice}
	assert.NoError(t, rc.Like())
	likes, dislikes := rc.Counts()
	assert.Equal(t, 1, likes)
	assert.Equal(t, 0, dislikes)
	assert.True(t, rc.Liked())
	assert.True(t, server.likes[aliceID])

	// alice 改为点踩：likes={}, dislikes={alice}
	assert.NoError(t, rc.Dislike())
	likes, dislikes = rc.Counts()
	assert.Equal(t, 0, likes)
	assert.Equal(t, 1, dislikes)
	assert.False(t, rc.Liked())
	assert.True(t, rc.Disliked())
	assert.False(t, server.likes[aliceID])
	assert.True(t, server.dislikes[aliceID])

	// 再点一次踩的切换：撤销
	assert.NoError(t, rc.ToggleDislike())
	_, dislikes = rc.Counts()
	assert.Equal(t, 0, dislikes)
	assert.False(t, server.dislikes[aliceID])
}
