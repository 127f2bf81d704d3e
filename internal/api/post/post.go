package post

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"

	"github.com/yashyenugu/NeonGram/internal/common"
	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/service"
	"github.com/yashyenugu/NeonGram/internal/storage"
	"github.com/yashyenugu/NeonGram/internal/util"
)

// PostHandler 处理帖子相关的HTTP请求
type PostHandler struct {
	postService *service.PostService
	storage     storage.Storage
}

func NewPostHandler(postService *service.PostService, storage storage.Storage) *PostHandler {
	return &PostHandler{postService, storage}
}

// Create 创建带图片的新帖子
func (h *PostHandler) Create(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("postImage")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "帖子必须包含图片", err))
		return
	}
	text := c.PostForm("text")

	path := fmt.Sprintf("posts/%d/%s", userID, util.GenerateUniqueFilename(file.Filename))
	url, assetID, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("帖子图片上传失败", zap.Int("user_id", userID), zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrStorage, "图片上传失败", err))
		return
	}

	post := &model.Post{
		UserID:      userID,
		Text:        text,
		PostImage:   url,
		PostImageID: assetID,
	}
	if err := h.postService.CreatePost(post); err != nil {
		// 建档失败时回收已上传的图片
		if delErr := h.storage.DeleteFile(assetID); delErr != nil {
			util.Logger.Warn("孤儿图片清理失败",
				zap.String("asset_id", assetID), zap.Error(delErr))
		}
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, errors.SuccessResponse{
		Code:    http.StatusCreated,
		Message: "帖子创建成功",
		Data:    post,
	})
}

// Feed 返回全站时间线，lastTime 之前的一页
func (h *PostHandler) Feed(c *gin.Context) {
	lastTime, err := parseLastTime(c.Query("lastTime"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的 lastTime 参数", err))
		return
	}

	posts, err := h.postService.GetFeed(lastTime)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, posts, "")
}

// FromFollowing 返回关注用户（含自己）的时间线一页
func (h *PostHandler) FromFollowing(c *gin.Context) {
	userID := c.GetInt("user_id")

	lastTime, err := parseLastTime(c.Query("lastTime"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的 lastTime 参数", err))
		return
	}

	posts, err := h.postService.GetFollowingFeed(userID, lastTime)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, posts, "")
}

// UserPosts 返回指定用户名的全部帖子
func (h *PostHandler) UserPosts(c *gin.Context) {
	username := c.Param("username")

	posts, err := h.postService.GetUserPosts(username)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, posts, "")
}

// Get 返回单个帖子
func (h *PostHandler) Get(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("postID"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}

	post, err := h.postService.GetPostByID(postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, post, "")
}

// Delete 删除帖子：先删远端图片，成功后再删记录
func (h *PostHandler) Delete(c *gin.Context) {
	userID := c.GetInt("user_id")

	postID, err := strconv.Atoi(c.Param("postID"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}

	post, err := h.postService.GetPostByID(postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if post.UserID != userID {
		errors.HandleError(c, errors.New(errors.ErrForbidden, "只能删除自己的帖子"))
		return
	}

	if post.PostImageID != "" {
		if err := common.WithRetry(func() error {
			return h.storage.DeleteFile(post.PostImageID)
		}, 3); err != nil {
			util.Logger.Error("帖子图片远端删除失败",
				zap.Int("post_id", postID),
				zap.String("asset_id", post.PostImageID),
				zap.Error(err))
			errors.HandleError(c, errors.Wrap(errors.ErrStorage, "帖子删除失败", err))
			return
		}
	}

	if err := h.postService.DeletePost(postID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "帖子已删除")
}

// parseLastTime 解析游标参数，空串表示第一页
func parseLastTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
