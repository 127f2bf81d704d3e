package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/service"
	"github.com/yashyenugu/NeonGram/internal/util"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("username", util.ValidateUsername)
	}
}

// MockUserService 是 UserServiceInterface 的模拟实现
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserService) Login(username, password string) (string, string, error) {
	args := m.Called(username, password)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockUserService) RefreshAccessToken(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) Logout(refreshToken string) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}

func (m *MockUserService) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetProfile(username string) (*model.User, error) {
	args := m.Called(username)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetProfileByID(id int) (*model.User, error) {
	args := m.Called(id)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateDetails(userID int, details map[string]string) error {
	args := m.Called(userID, details)
	return args.Error(0)
}

func (m *MockUserService) UpdateProfilePicture(userID int, url, assetID string) error {
	args := m.Called(userID, url, assetID)
	return args.Error(0)
}

func (m *MockUserService) SearchUsers(substring string) ([]*model.User, error) {
	args := m.Called(substring)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserService) Follow(followerID, followedID int) error {
	args := m.Called(followerID, followedID)
	return args.Error(0)
}

func (m *MockUserService) Unfollow(followerID, followedID int) error {
	args := m.Called(followerID, followedID)
	return args.Error(0)
}

func (m *MockUserService) IsFollowing(followerID, followedID int) (bool, error) {
	args := m.Called(followerID, followedID)
	return args.Bool(0), args.Error(1)
}

// 确保 MockUserService 实现了 UserServiceInterface
var _ service.UserServiceInterface = (*MockUserService)(nil)

// TestRegister 测试注册处理器
func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.Default()
	router.POST("/register", handler.Register)

	// 模拟成功注册
	mockService.On("Register", mock.AnythingOfType("*model.User")).Return(nil).Once()

	body := []byte(`{"username": "testuser", "email": "test@example.com", "password": "StrongP@ssw0rd", "fname": "Test", "lname": "User"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	// 模拟注册失败（用户已存在）
	mockService.On("Register", mock.AnythingOfType("*model.User")).
		Return(apperrors.New(apperrors.ErrUserExists, "User exists")).Once()

	req, _ = http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

// TestRegisterValidation 测试非法注册数据被拒绝
func TestRegisterValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.Default()
	router.POST("/register", handler.Register)

	cases := []string{
		`{"username": "testuser", "password": "secret123"}`,               // 缺少邮箱
		`{"username": "testuser", "email": "not-an-email", "password": "secret123"}`, // 非法邮箱
		`{"username": "testuser", "email": "a@b.com", "password": "123"}`, // 密码太短
	}

	for _, body := range cases {
		req, _ := http.NewRequest("POST", "/register", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
	mockService.AssertNotCalled(t, "Register")
}

// TestLogin 测试登录处理器
func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.Default()
	router.POST("/login", handler.Login)

	// 模拟成功登录
	mockService.On("Login", "testuser", "password123").
		Return("access-token", "refresh-token", nil).Once()

	body := []byte(`{"username": "testuser", "password": "password123"}`)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data map[string]string `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "access-token", response.Data["accessToken"])
	assert.Equal(t, "refresh-token", response.Data["refreshToken"])
	mockService.AssertExpectations(t)

	// 模拟登录失败
	mockService.On("Login", "testuser", "wrongpassword").
		Return("", "", apperrors.New(apperrors.ErrInvalidCredentials, "Invalid credentials")).Once()

	body = []byte(`{"username": "testuser", "password": "wrongpassword"}`)
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

// TestToken 测试刷新令牌换取访问令牌
func TestToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.Default()
	router.POST("/token", handler.Token)

	// 有效刷新令牌
	mockService.On("RefreshAccessToken", "valid-refresh").
		Return("new-access", nil).Once()

	req, _ := http.NewRequest("POST", "/token", bytes.NewBufferString(`{"refreshToken": "valid-refresh"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data map[string]string `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "new-access", response.Data["accessToken"])

	// 缺少刷新令牌 → 401
	req, _ = http.NewRequest("POST", "/token", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 已撤销的刷新令牌 → 401
	mockService.On("RefreshAccessToken", "revoked-refresh").
		Return("", apperrors.New(apperrors.ErrTokenRevoked, "令牌已撤销")).Once()

	req, _ = http.NewRequest("POST", "/token", bytes.NewBufferString(`{"refreshToken": "revoked-refresh"}`))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 签名非法的刷新令牌 → 403
	mockService.On("RefreshAccessToken", "forged-refresh").
		Return("", apperrors.New(apperrors.ErrInvalidToken, "无效令牌")).Once()

	req, _ = http.NewRequest("POST", "/token", bytes.NewBufferString(`{"refreshToken": "forged-refresh"}`))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

// TestVerify 测试返回当前用户资料
func TestVerify(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.Default()
	router.POST("/verify", func(c *gin.Context) {
		c.Set("user_id", 7)
		handler.Verify(c)
	})

	mockUser := &model.User{ID: 7, Username: "testuser"}
	mockService.On("GetProfileByID", 7).Return(mockUser, nil).Once()

	req, _ := http.NewRequest("POST", "/verify", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data model.User `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "testuser", response.Data.Username)
	mockService.AssertExpectations(t)
}
