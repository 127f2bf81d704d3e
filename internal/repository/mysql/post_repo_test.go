package mysql

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/yashyenugu/NeonGram/internal/model"
)

// TestAddReactionUpsert 测试一条语句同时写入反应并覆盖另一种
func TestAddReactionUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	mock.ExpectExec("INSERT INTO reactions .+ON DUPLICATE KEY UPDATE").
		WithArgs(1, 10, model.ReactionLike).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.AddReaction(1, 10, model.ReactionLike))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRemoveReactionOnlyTargetsKind 测试撤销只删指定类型
func TestRemoveReactionOnlyTargetsKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	mock.ExpectExec("DELETE FROM reactions WHERE user_id = \\? AND post_id = \\? AND kind = \\?").
		WithArgs(1, 10, model.ReactionDislike).
		WillReturnResult(sqlmock.NewResult(0, 0)) // 不存在时是无操作

	assert.NoError(t, repo.RemoveReaction(1, 10, model.ReactionDislike))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestListFeedCursor 测试游标页使用严格小于的时间条件
func TestListFeedCursor(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	cursor := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "text", "post_image", "post_image_id", "time",
		"username", "fname", "lname", "profile_picture",
	}).AddRow(9, 2, "hello", "http://img/9.jpg", "asset-9", cursor.Add(-time.Hour), "bob", "Bob", "B", "")

	mock.ExpectQuery("WHERE p.time < \\?.+ORDER BY p.time DESC LIMIT \\?").
		WithArgs(cursor, 6).
		WillReturnRows(rows)
	// 批量附加反应集合
	mock.ExpectQuery("FROM reactions WHERE post_id IN").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "user_id", "kind"}).
			AddRow(9, 5, model.ReactionLike))

	posts, err := repo.ListFeed(&cursor, 6)
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, []int{5}, posts[0].Likes)
	assert.Empty(t, posts[0].Dislikes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestListFeedFirstPage 测试第一页不带时间条件
func TestListFeedFirstPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	mock.ExpectQuery("ORDER BY p.time DESC LIMIT \\?").
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "text", "post_image", "post_image_id", "time",
			"username", "fname", "lname", "profile_picture",
		}))

	posts, err := repo.ListFeed(nil, 6)
	assert.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
