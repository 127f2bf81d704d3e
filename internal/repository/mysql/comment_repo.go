package mysql

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/util"
)

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	query := `INSERT INTO comments (post_id, user_id, content, created_at)
              VALUES (?, ?, ?, NOW())`
	result, err := r.db.Exec(query, comment.PostID, comment.UserID, comment.Content)
	if err != nil {
		util.Logger.Error("创建评论失败",
			zap.Error(err),
			zap.Int("post_id", comment.PostID),
			zap.Int("user_id", comment.UserID))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新评论ID失败", zap.Error(err))
		return err
	}
	comment.ID = int(id)

	util.Logger.Info("评论创建成功", zap.Int("comment_id", comment.ID))
	return nil
}

// ListByPost 返回帖子的评论，附带作者的用户名和头像
func (r *commentRepository) ListByPost(postID int) ([]*model.Comment, error) {
	query := `
        SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
               u.username, u.profile_picture
        FROM comments c
        LEFT JOIN users u ON c.user_id = u.id
        WHERE c.post_id = ?
        ORDER BY c.created_at ASC`

	rows, err := r.db.Query(query, postID)
	if err != nil {
		util.Logger.Error("查询评论失败", zap.Error(err), zap.Int("post_id", postID))
		return nil, err
	}
	defer rows.Close()

	comments := []*model.Comment{}
	for rows.Next() {
		var comment model.Comment
		var user model.User
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.UserID, &comment.Content, &comment.CreatedAt,
			&user.Username, &user.ProfilePicture,
		)
		if err != nil {
			return nil, err
		}
		user.ID = comment.UserID
		comment.User = &user
		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}
