package comment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/service"
)

// CommentHandler 处理帖子评论相关的HTTP请求
type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService}
}

// Add 在帖子下新增评论
func (h *CommentHandler) Add(c *gin.Context) {
	userID := c.GetInt("user_id")

	postID, err := strconv.Atoi(c.Param("postID"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}

	var commentData struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&commentData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "评论内容不能为空", err))
		return
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: commentData.Content,
	}
	if err := h.commentService.AddComment(comment); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, errors.SuccessResponse{
		Code:    http.StatusCreated,
		Message: "评论成功",
		Data:    comment,
	})
}

// List 按时间顺序返回帖子的全部评论
func (h *CommentHandler) List(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("postID"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}

	comments, err := h.commentService.GetComments(postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, comments, "")
}
