package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/repository"
	"yatube-backend/internal/shared/auth"
)

type commentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func NewCommentService(posts repository.PostRepository, comments repository.CommentRepository) CommentService {
	return &commentService{posts: posts, comments: comments}
}

// Create adds a comment by the viewer to an existing post.
func (s *commentService) Create(ctx context.Context, viewer auth.Viewer, postID int64, form model.CommentForm) (*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, model.AsFormError(err)
	}

	comment := &model.Comment{PostID: postID, AuthorID: viewer.UserID, Text: form.Text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	log.Info().Int64("post_id", postID).Int64("comment_id", comment.ID).Msg("Comment added")
	return comment, nil
}
