package post

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
)

// Like 给帖子点赞，同时移除同一用户的点踩
func (h *PostHandler) Like(c *gin.Context) {
	h.react(c, model.ReactionLike)
}

// Dislike 给帖子点踩，同时移除同一用户的点赞
func (h *PostHandler) Dislike(c *gin.Context) {
	h.react(c, model.ReactionDislike)
}

func (h *PostHandler) react(c *gin.Context, kind string) {
	userID := c.GetInt("user_id")

	postID, err := strconv.Atoi(c.Param("postID"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}

	if err := h.postService.React(userID, postID, kind); err != nil {
		errors.HandleError(c, err)
		return
	}

	post, err := h.postService.GetPostByID(postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, post, "")
}

// RemoveReaction 撤销当前用户在帖子上的指定反应
func (h *PostHandler) RemoveReaction(c *gin.Context) {
	userID := c.GetInt("user_id")

	postID, err := strconv.Atoi(c.Param("postID"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}

	if err := h.postService.RemoveReaction(userID, postID, c.Param("reaction")); err != nil {
		errors.HandleError(c, err)
		return
	}

	post, err := h.postService.GetPostByID(postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, post, "")
}
