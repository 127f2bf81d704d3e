package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/util"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

const userColumns = `id, username, email, password_hash, fname, lname, bio,
              profile_picture, profile_picture_id, role, follower_count, following_count,
              created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Fname, &user.Lname, &user.Bio,
		&user.ProfilePicture, &user.ProfilePictureID, &user.Role,
		&user.FollowerCount, &user.FollowingCount,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (username, email, password_hash, fname, lname, bio, profile_picture, profile_picture_id)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, user.Username, user.Email, user.PasswordHash,
		user.Fname, user.Lname, user.Bio, user.ProfilePicture, user.ProfilePictureID)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = int(id)
	user.Role = "user" // 设置默认角色
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindByUsernameOrEmail 注册时用于查重
func (r *userRepository) FindByUsernameOrEmail(username, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? OR email = ?`
	user, err := scanUser(r.db.QueryRow(query, username, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Update 更新用户信息
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET username = ?, email = ?, fname = ?, lname = ?, bio = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.Email, user.Fname, user.Lname, user.Bio, time.Now(), user.ID)
	return err
}

// UpdateProfilePicture 更新头像URL及其远程资源句柄
func (r *userRepository) UpdateProfilePicture(userID int, url, assetID string) error {
	_, err := r.db.Exec(`
		UPDATE users SET profile_picture = ?, profile_picture_id = ?, updated_at = ?
		WHERE id = ?`,
		url, assetID, time.Now(), userID)
	return err
}

// SearchByUsername 用户名不区分大小写的子串匹配
func (r *userRepository) SearchByUsername(substring string) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
              WHERE username LIKE CONCAT('%', ?, '%') AND deleted_at IS NULL
              ORDER BY username ASC`

	rows, err := r.db.Query(query, substring)
	if err != nil {
		util.Logger.Error("搜索用户失败", zap.Error(err), zap.String("substring", substring))
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Follow 在同一事务中写入关注边并更新双方的计数。
// 重复关注是幂等的无操作
func (r *userRepository) Follow(followerID, followedID int) error {
	util.Logger.Info("开始创建关注",
		zap.Int("follower_id", followerID),
		zap.Int("followed_id", followedID))

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT IGNORE INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, NOW())`,
		followerID, followedID)
	if err != nil {
		util.Logger.Error("创建关注失败", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	// 边已存在时跳过计数更新，保证幂等
	if affected > 0 {
		if _, err := tx.Exec(
			`UPDATE users SET follower_count = follower_count + 1 WHERE id = ?`,
			followedID); err != nil {
			util.Logger.Error("更新粉丝计数失败", zap.Error(err))
			return err
		}

		if _, err := tx.Exec(
			`UPDATE users SET following_count = following_count + 1 WHERE id = ?`,
			followerID); err != nil {
			util.Logger.Error("更新关注计数失败", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	util.Logger.Info("关注创建成功",
		zap.Int("follower_id", followerID),
		zap.Int("followed_id", followedID))
	return nil
}

// Unfollow 对称地删除关注边并回退计数
func (r *userRepository) Unfollow(followerID, followedID int) error {
	util.Logger.Info("开始删除关注",
		zap.Int("follower_id", followerID),
		zap.Int("followed_id", followedID))

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID)
	if err != nil {
		util.Logger.Error("删除关注失败", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	// 取消未关注的对象同样是无操作
	if affected > 0 {
		if _, err := tx.Exec(
			`UPDATE users SET follower_count = follower_count - 1 WHERE id = ? AND follower_count > 0`,
			followedID); err != nil {
			util.Logger.Error("更新粉丝计数失败", zap.Error(err))
			return err
		}

		if _, err := tx.Exec(
			`UPDATE users SET following_count = following_count - 1 WHERE id = ? AND following_count > 0`,
			followerID); err != nil {
			util.Logger.Error("更新关注计数失败", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	util.Logger.Info("关注删除成功")
	return nil
}

func (r *userRepository) IsFollowing(followerID, followedID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM follows
            WHERE follower_id = ? AND followed_id = ?
        )
    `, followerID, followedID).Scan(&exists)
	return exists, err
}

// GetFollowers 返回关注该用户的用户ID集合
func (r *userRepository) GetFollowers(userID int) ([]int, error) {
	return r.queryIDs(
		`SELECT follower_id FROM follows WHERE followed_id = ? ORDER BY created_at DESC`,
		userID)
}

// GetFollowing 返回该用户关注的用户ID集合
func (r *userRepository) GetFollowing(userID int) ([]int, error) {
	return r.queryIDs(
		`SELECT followed_id FROM follows WHERE follower_id = ? ORDER BY created_at DESC`,
		userID)
}

func (r *userRepository) queryIDs(query string, args ...interface{}) ([]int, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
