package service

import (
	"github.com/yashyenugu/NeonGram/internal/errors"
	"github.com/yashyenugu/NeonGram/internal/model"
	"github.com/yashyenugu/NeonGram/internal/repository/interfaces"
)

// CommentService 处理评论相关的业务逻辑
type CommentService struct {
	commentRepo interfaces.CommentRepository
	postRepo    interfaces.PostRepository
}

func NewCommentService(commentRepo interfaces.CommentRepository, postRepo interfaces.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *CommentService) AddComment(comment *model.Comment) error {
	post, err := s.postRepo.FindByID(comment.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}

	return s.commentRepo.Create(comment)
}

func (s *CommentService) GetComments(postID int) ([]*model.Comment, error) {
	return s.commentRepo.ListByPost(postID)
}
