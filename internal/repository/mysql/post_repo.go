package mysql

import (
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/util"
)

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *model.Post) error {
	query := `INSERT INTO posts (user_id, text, post_image, post_image_id, time)
              VALUES (?, ?, ?, ?, NOW())`
	result, err := r.db.Exec(query, post.UserID, post.Text, post.PostImage, post.PostImageID)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		return err
	}

	postID, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新帖子ID失败", zap.Error(err))
		return err
	}
	post.ID = int(postID)

	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID))
	return nil
}

func (r *postRepository) FindByID(id int) (*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.text, p.post_image, p.post_image_id, p.time,
               u.username, u.fname, u.lname, u.profile_picture
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id
        WHERE p.id = ?`

	var post model.Post
	var user model.User
	err := r.db.QueryRow(query, id).Scan(
		&post.ID, &post.UserID, &post.Text, &post.PostImage, &post.PostImageID, &post.Time,
		&user.Username, &user.Fname, &user.Lname, &user.ProfilePicture,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.ID = post.UserID
	post.User = &user

	if err := r.attachReactions([]*model.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListFeed 按时间倒序返回一页帖子。lastTime 非空时只返回严格早于它的帖子
func (r *postRepository) ListFeed(lastTime *time.Time, limit int) ([]*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.text, p.post_image, p.post_image_id, p.time,
               u.username, u.fname, u.lname, u.profile_picture
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id`

	args := []interface{}{}
	if lastTime != nil {
		query += ` WHERE p.time < ?`
		args = append(args, *lastTime)
	}
	query += ` ORDER BY p.time DESC LIMIT ?`
	args = append(args, limit)

	return r.queryPosts(query, args...)
}

// ListFeedFromUsers 与 ListFeed 相同，但只包含给定作者的帖子
func (r *postRepository) ListFeedFromUsers(userIDs []int, lastTime *time.Time, limit int) ([]*model.Post, error) {
	if len(userIDs) == 0 {
		return []*model.Post{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(userIDs)), ",")
	query := `
        SELECT p.id, p.user_id, p.text, p.post_image, p.post_image_id, p.time,
               u.username, u.fname, u.lname, u.profile_picture
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id
        WHERE p.user_id IN (` + placeholders + `)`

	args := make([]interface{}, 0, len(userIDs)+2)
	for _, id := range userIDs {
		args = append(args, id)
	}
	if lastTime != nil {
		query += ` AND p.time < ?`
		args = append(args, *lastTime)
	}
	query += ` ORDER BY p.time DESC LIMIT ?`
	args = append(args, limit)

	return r.queryPosts(query, args...)
}

func (r *postRepository) ListByUser(userID int) ([]*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.text, p.post_image, p.post_image_id, p.time,
               u.username, u.fname, u.lname, u.profile_picture
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id
        WHERE p.user_id = ?
        ORDER BY p.time DESC`

	return r.queryPosts(query, userID)
}

func (r *postRepository) Delete(id int) error {
	util.Logger.Info("开始删除帖子", zap.Int("post_id", id))

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reactions WHERE post_id = ?`, id); err != nil {
		util.Logger.Error("删除帖子反应失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}
	if _, err := tx.Exec(`DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		util.Logger.Error("删除帖子评论失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	util.Logger.Info("帖子删除成功", zap.Int("post_id", id))
	return nil
}

// AddReaction 单条语句完成写入：以 (user_id, post_id) 为主键，
// 同一用户的另一种反应会被覆盖而不是并存
func (r *postRepository) AddReaction(userID, postID int, kind string) error {
	query := `INSERT INTO reactions (user_id, post_id, kind) VALUES (?, ?, ?)
              ON DUPLICATE KEY UPDATE kind = VALUES(kind)`
	_, err := r.db.Exec(query, userID, postID, kind)
	if err != nil {
		util.Logger.Error("写入反应失败",
			zap.Error(err),
			zap.Int("post_id", postID),
			zap.String("kind", kind))
	}
	return err
}

// RemoveReaction 只删除指定类型的反应，不影响另一种
func (r *postRepository) RemoveReaction(userID, postID int, kind string) error {
	query := `DELETE FROM reactions WHERE user_id = ? AND post_id = ? AND kind = ?`
	_, err := r.db.Exec(query, userID, postID, kind)
	if err != nil {
		util.Logger.Error("删除反应失败",
			zap.Error(err),
			zap.Int("post_id", postID),
			zap.String("kind", kind))
	}
	return err
}

func (r *postRepository) GetReactions(postID int) ([]int, []int, error) {
	rows, err := r.db.Query(`SELECT user_id, kind FROM reactions WHERE post_id = ?`, postID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	likes := []int{}
	dislikes := []int{}
	for rows.Next() {
		var userID int
		var kind string
		if err := rows.Scan(&userID, &kind); err != nil {
			return nil, nil, err
		}
		if kind == model.ReactionLike {
			likes = append(likes, userID)
		} else {
			dislikes = append(dislikes, userID)
		}
	}
	return likes, dislikes, rows.Err()
}

func (r *postRepository) queryPosts(query string, args ...interface{}) ([]*model.Post, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("查询帖子失败", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		var post model.Post
		var user model.User
		err := rows.Scan(
			&post.ID, &post.UserID, &post.Text, &post.PostImage, &post.PostImageID, &post.Time,
			&user.Username, &user.Fname, &user.Lname, &user.ProfilePicture,
		)
		if err != nil {
			return nil, err
		}
		user.ID = post.UserID
		post.User = &user
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachReactions(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachReactions 为一页帖子批量填充 likes/dislikes 集合
func (r *postRepository) attachReactions(posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[int]*model.Post, len(posts))
	args := make([]interface{}, 0, len(posts))
	for _, post := range posts {
		post.Likes = []int{}
		post.Dislikes = []int{}
		byID[post.ID] = post
		args = append(args, post.ID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(posts)), ",")
	rows, err := r.db.Query(
		`SELECT post_id, user_id, kind FROM reactions WHERE post_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID, userID int
		var kind string
		if err := rows.Scan(&postID, &userID, &kind); err != nil {
			return err
		}
		post := byID[postID]
		if post == nil {
			continue
		}
		if kind == model.ReactionLike {
			post.Likes = append(post.Likes, userID)
		} else {
			post.Dislikes = append(post.Dislikes, userID)
		}
	}
	return rows.Err()
}
