package util

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/yashyenugu/NeonGram/config"
)

// GenerateAccessToken 生成短期访问令牌，24小时后过期
func GenerateAccessToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
		"iat":     time.Now().Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.AccessTokenSecret))
}

// GenerateRefreshToken 生成长期刷新令牌，不携带过期时间，
// 有效性由服务端持久化的令牌表决定
func GenerateRefreshToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.RefreshTokenSecret))
}

// ValidateAccessToken 校验访问令牌并返回用户ID
func ValidateAccessToken(tokenString string) (int, error) {
	return validateToken(tokenString, config.AppConfig.AccessTokenSecret)
}

// ValidateRefreshToken 校验刷新令牌的签名并返回用户ID。
// 调用方还需检查令牌是否存在于服务端的刷新令牌表中
func ValidateRefreshToken(tokenString string) (int, error) {
	return validateToken(tokenString, config.AppConfig.RefreshTokenSecret)
}

func validateToken(tokenString, secret string) (int, error) {
	if tokenString == "" {
		return 0, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("意外的签名方法")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return 0, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(float64)
		if !ok {
			return 0, errors.New("无效的用户ID")
		}
		return int(userID), nil
	}

	return 0, errors.New("无效的令牌")
}
