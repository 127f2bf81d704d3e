package service

import (
	"fmt"

	"go.uber.org/zap"

	"golang.org/x/crypto/bcrypt"

	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/repository/interfaces"
	"github.com/yashyenugu/NeonGram/internal/util"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenRepository
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, tokenRepo interfaces.TokenRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// Register 注册新用户。用户名或邮箱已被占用时返回 ErrUserExists
func (s *UserService) Register(user *model.User) error {
	existing, err := s.userRepo.FindByUsernameOrEmail(user.Username, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New(errors.ErrUserExists, "User exists")
	}

	// 生成密码哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	return s.userRepo.Create(user)
}

// Login 验证凭据并签发访问/刷新令牌对。
// 刷新令牌在签发时写入服务端令牌表
func (s *UserService) Login(username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", errors.New(errors.ErrInvalidCredentials, "Invalid username")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", errors.Wrap(errors.ErrInvalidCredentials, "密码不正确", err)
	}

	accessToken, err = util.GenerateAccessToken(user.ID)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = util.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}

	if err := s.tokenRepo.Save(refreshToken, user.ID); err != nil {
		return "", "", err
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return accessToken, refreshToken, nil
}

// RefreshAccessToken 用刷新令牌换取新的访问令牌。
// 令牌必须同时通过签名校验和服务端令牌表查验；
// 不在表中的令牌即使签名有效也会被拒绝
func (s *UserService) RefreshAccessToken(refreshToken string) (string, error) {
	found, err := s.tokenRepo.Exists(refreshToken)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.New(errors.ErrTokenRevoked, "刷新令牌已撤销")
	}

	userID, err := util.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidToken, "无效的刷新令牌", err)
	}

	return util.GenerateAccessToken(userID)
}

// Logout 撤销刷新令牌，之后该令牌不能再换取访问令牌
func (s *UserService) Logout(refreshToken string) error {
	return s.tokenRepo.Delete(refreshToken)
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

// GetProfile 通过用户名获取资料，附带 followers/following 集合
func (s *UserService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return s.attachFollowSets(user)
}

// GetProfileByID 与 GetProfile 相同，按ID查找
func (s *UserService) GetProfileByID(id int) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	return s.attachFollowSets(user)
}

func (s *UserService) attachFollowSets(user *model.User) (*model.User, error) {
	followers, err := s.userRepo.GetFollowers(user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.userRepo.GetFollowing(user.ID)
	if err != nil {
		return nil, err
	}
	user.Followers = followers
	user.Following = following
	return user, nil
}

// UpdateDetails 部分更新资料字段，未提交的字段保持不变
func (s *UserService) UpdateDetails(userID int, details map[string]string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if v, ok := details["fname"]; ok {
		user.Fname = v
	}
	if v, ok := details["lname"]; ok {
		user.Lname = v
	}
	if v, ok := details["bio"]; ok {
		user.Bio = v
	}

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("更新用户失败: %w", err)
	}
	return nil
}

// UpdateProfilePicture 更新头像的URL和远程资源句柄
func (s *UserService) UpdateProfilePicture(userID int, url, assetID string) error {
	return s.userRepo.UpdateProfilePicture(userID, url, assetID)
}

// SearchUsers 用户名子串搜索，不区分大小写
func (s *UserService) SearchUsers(substring string) ([]*model.User, error) {
	return s.userRepo.SearchByUsername(substring)
}

// Follow 建立关注关系。两个端点都必须存在且不相同；
// 底层写入在单个事务中完成，失败时不留下任何一侧的变更
func (s *UserService) Follow(followerID, followedID int) error {
	if err := s.checkFollowPair(followerID, followedID); err != nil {
		return err
	}

	if err := s.userRepo.Follow(followerID, followedID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建关注失败", err)
	}
	return nil
}

// Unfollow 解除关注关系，前置条件与 Follow 相同
func (s *UserService) Unfollow(followerID, followedID int) error {
	if err := s.checkFollowPair(followerID, followedID); err != nil {
		return err
	}

	if err := s.userRepo.Unfollow(followerID, followedID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除关注失败", err)
	}
	return nil
}

// 进入事务前先校验关系边的两个端点
func (s *UserService) checkFollowPair(followerID, followedID int) error {
	if followerID == followedID {
		return errors.New(errors.ErrSelfFollow, "不能关注自己")
	}

	for _, id := range []int{followerID, followedID} {
		user, err := s.userRepo.FindByID(id)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New(errors.ErrUserNotFound, "user not found")
		}
	}
	return nil
}

// IsFollowing 查询关注状态
func (s *UserService) IsFollowing(followerID, followedID int) (bool, error) {
	return s.userRepo.IsFollowing(followerID, followedID)
}

// UserServiceInterface 供处理器依赖和测试替身使用
type UserServiceInterface interface {
	Register(user *model.User) error
	Login(username, password string) (string, string, error)
	RefreshAccessToken(refreshToken string) (string, error)
	Logout(refreshToken string) error
	GetUserByID(id int) (*model.User, error)
	GetProfile(username string) (*model.User, error)
	GetProfileByID(id int) (*model.User, error)
	UpdateDetails(userID int, details map[string]string) error
	UpdateProfilePicture(userID int, url, assetID string) error
	SearchUsers(substring string) ([]*model.User, error)
	Follow(followerID, followedID int) error
	Unfollow(followerID, followedID int) error
	IsFollowing(followerID, followedID int) (bool, error)
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
