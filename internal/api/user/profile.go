package user

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"

	"github.com/yashyenugu/NeonGram/internal/common"
	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/service"
	"github.com/yashyenugu/NeonGram/internal/storage"
	"github.com/yashyenugu/NeonGram/internal/util"
)

// ProfileHandler 处理用户资料相关的HTTP请求
type ProfileHandler struct {
	userService service.UserServiceInterface
	storage     storage.Storage
}

func NewProfileHandler(userService service.UserServiceInterface, storage storage.Storage) *ProfileHandler {
	return &ProfileHandler{userService, storage}
}

// GetDetails 按用户名返回公开资料
func (h *ProfileHandler) GetDetails(c *gin.Context) {
	username := c.Param("username")

	user, err := h.userService.GetProfile(username)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, user, "")
}

// UpdateDetails 部分更新当前用户的资料字段
func (h *ProfileHandler) UpdateDetails(c *gin.Context) {
	userID := c.GetInt("user_id")

	var updateData struct {
		Fname *string `json:"fname"`
		Lname *string `json:"lname"`
		Bio   *string `json:"bio"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	fields := make(map[string]string)
	if updateData.Fname != nil {
		fields["fname"] = *updateData.Fname
	}
	if updateData.Lname != nil {
		fields["lname"] = *updateData.Lname
	}
	if updateData.Bio != nil {
		fields["bio"] = *updateData.Bio
	}

	if err := h.userService.UpdateDetails(userID, fields); err != nil {
		errors.HandleError(c, err)
		return
	}

	user, err := h.userService.GetProfileByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, user, "资料更新成功")
}

// AddProfilePic 上传头像，替换旧头像时先删除旧的远端资源
func (h *ProfileHandler) AddProfilePic(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("profilePicture")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "需要上传头像文件", err))
		return
	}

	current, err := h.userService.GetUserByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	path := fmt.Sprintf("profile_pictures/%d/%s", userID, util.GenerateUniqueFilename(file.Filename))
	url, assetID, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("头像上传失败", zap.Int("user_id", userID), zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrStorage, "头像上传失败", err))
		return
	}

	// 先写库再清理旧资源，避免上传成功但记录未更新
	if err := h.userService.UpdateProfilePicture(userID, url, assetID); err != nil {
		errors.HandleError(c, err)
		return
	}

	if current.ProfilePictureID != "" {
		if delErr := common.WithRetry(func() error {
			return h.storage.DeleteFile(current.ProfilePictureID)
		}, 3); delErr != nil {
			// 清理失败只记录，不影响本次上传结果
			util.Logger.Warn("旧头像清理失败",
				zap.Int("user_id", userID),
				zap.String("asset_id", current.ProfilePictureID),
				zap.Error(delErr))
		}
	}

	user, err := h.userService.GetProfileByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, user, "头像上传成功")
}

// DeleteProfilePic 删除头像：先删远端资源，再清空记录
func (h *ProfileHandler) DeleteProfilePic(c *gin.Context) {
	userID := c.GetInt("user_id")

	current, err := h.userService.GetUserByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	if current.ProfilePictureID != "" {
		if err := common.WithRetry(func() error {
			return h.storage.DeleteFile(current.ProfilePictureID)
		}, 3); err != nil {
			util.Logger.Error("头像远端删除失败",
				zap.Int("user_id", userID),
				zap.String("asset_id", current.ProfilePictureID),
				zap.Error(err))
			errors.HandleError(c, errors.Wrap(errors.ErrStorage, "头像删除失败", err))
			return
		}
	}

	if err := h.userService.UpdateProfilePicture(userID, "", ""); err != nil {
		errors.HandleError(c, err)
		return
	}

	user, err := h.userService.GetProfileByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, user, "头像已删除")
}

// Search 按用户名模糊搜索（不区分大小写）
func (h *ProfileHandler) Search(c *gin.Context) {
	pattern := c.Query("username")
	if pattern == "" {
		errors.HandleError(c, errors.New(errors.ErrValidation, "需要提供 username 查询参数"))
		return
	}

	users, err := h.userService.SearchUsers(pattern)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, users, "")
}

// Follow 关注指定用户
func (h *ProfileHandler) Follow(c *gin.Context) {
	userID := c.GetInt("user_id")

	targetID, err := strconv.Atoi(c.Param("followingUserId"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	if err := h.userService.Follow(userID, targetID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "关注成功")
}

// Unfollow 取消关注指定用户
func (h *ProfileHandler) Unfollow(c *gin.Context) {
	userID := c.GetInt("user_id")

	targetID, err := strconv.Atoi(c.Param("followingUserId"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	if err := h.userService.Unfollow(userID, targetID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "已取消关注")
}
