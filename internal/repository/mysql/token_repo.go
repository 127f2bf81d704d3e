package mysql

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/yashyenugu/NeonGram/internal/util"
)

type tokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *tokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Save(token string, userID int) error {
	_, err := r.db.Exec(
		`INSERT INTO refresh_tokens (token, user_id, created_at) VALUES (?, ?, NOW())`,
		token, userID)
	if err != nil {
		util.Logger.Error("保存刷新令牌失败", zap.Error(err), zap.Int("user_id", userID))
	}
	return err
}

func (r *tokenRepository) Exists(token string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE token = ?)`,
		token).Scan(&exists)
	return exists, err
}

func (r *tokenRepository) Delete(token string) error {
	_, err := r.db.Exec(`DELETE FROM refresh_tokens WHERE token = ?`, token)
	return err
}
