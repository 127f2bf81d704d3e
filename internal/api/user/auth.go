package user

import (
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"

	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/service"
	"github.com/yashyenugu/NeonGram/internal/util"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService service.UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Email    string `json:"email" binding:"required,email"`
		Fname    string `json:"fname"`
		Lname    string `json:"lname"`
		Username string `json:"username" binding:"required,username"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user := &model.User{
		Email:        registerData.Email,
		Fname:        registerData.Fname,
		Lname:        registerData.Lname,
		Username:     registerData.Username,
		PasswordHash: registerData.Password,
	}

	if err := h.userService.Register(user); err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrUserExists {
			util.Logger.Warn("注册失败，用户已存在",
				zap.String("username", user.Username))
			errors.HandleError(c, err)
			return
		}
		util.Logger.Error("注册失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "注册失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user_id": user.ID,
	}, "注册成功")
}

// Login 处理用户登录请求，返回访问令牌和刷新令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	accessToken, refreshToken, err := h.userService.Login(loginData.Username, loginData.Password)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "登录失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "登录成功")
}

// Token 用刷新令牌换取新的访问令牌
func (h *AuthHandler) Token(c *gin.Context) {
	var tokenData struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := c.ShouldBindJSON(&tokenData); err != nil || tokenData.RefreshToken == "" {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "需要刷新令牌"))
		return
	}

	accessToken, err := h.userService.RefreshAccessToken(tokenData.RefreshToken)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "刷新令牌失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"accessToken": accessToken}, "令牌刷新成功")
}

// Logout 撤销刷新令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	var logoutData struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&logoutData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.userService.Logout(logoutData.RefreshToken); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "登出失败", err))
		return
	}
	errors.HandleSuccess(c, nil, "已成功登出")
}

// Verify 返回当前认证主体的资料
func (h *AuthHandler) Verify(c *gin.Context) {
	userID := c.GetInt("user_id")

	user, err := h.userService.GetProfileByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, user, "")
}
