package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/util"
)

// AuthMiddleware 校验访问令牌并将用户ID写入请求上下文。
// 缺失令牌返回 401，签名无效或已过期返回 403
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "需要认证"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "无效的认证格式"))
			c.Abort()
			return
		}

		userID, err := util.ValidateAccessToken(parts[1])
		if err != nil {
			if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
				errors.HandleError(c, errors.Wrap(errors.ErrTokenExpired, "令牌已过期", err))
			} else {
				errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "无效的令牌", err))
			}
			util.Logger.Warn("令牌校验失败",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
