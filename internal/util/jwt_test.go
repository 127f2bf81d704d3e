package util

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	"github.com/yashyenugu/NeonGram/config"
)

func init() {
	config.AppConfig.AccessTokenSecret = "test-access-secret"
	config.AppConfig.RefreshTokenSecret = "test-refresh-secret"
}

// TestAccessTokenRoundTrip 测试访问令牌签发和校验
func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42)
	assert.NoError(t, err)

	userID, err := ValidateAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, 42, userID)
}

// TestTokenSecretsAreSeparate 测试两种令牌不能互换使用
func TestTokenSecretsAreSeparate(t *testing.T) {
	accessToken, _ := GenerateAccessToken(1)
	refreshToken, _ := GenerateRefreshToken(1)

	_, err := ValidateRefreshToken(accessToken)
	assert.Error(t, err)
	_, err = ValidateAccessToken(refreshToken)
	assert.Error(t, err)
}

// TestExpiredAccessToken 测试过期令牌被拒绝且携带过期标记
func TestExpiredAccessToken(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, _ := expired.SignedString([]byte(config.AppConfig.AccessTokenSecret))

	_, err := ValidateAccessToken(tokenString)
	assert.Error(t, err)

	vErr, ok := err.(*jwt.ValidationError)
	assert.True(t, ok)
	assert.NotZero(t, vErr.Errors&jwt.ValidationErrorExpired)
}

// TestForgedToken 测试错误密钥签名的令牌被拒绝
func TestForgedToken(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
	})
	tokenString, _ := forged.SignedString([]byte("wrong-secret"))

	_, err := ValidateAccessToken(tokenString)
	assert.Error(t, err)
}

// TestEmptyToken 测试空令牌
func TestEmptyToken(t *testing.T) {
	_, err := ValidateAccessToken("")
	assert.Error(t, err)
}
