package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/repository"
	"yatube-backend/internal/domains/user"
	"yatube-backend/internal/shared/auth"
)

type followService struct {
	follows repository.FollowRepository
	users   user.Repository
}

func NewFollowService(follows repository.FollowRepository, users user.Repository) FollowService {
	return &followService{follows: follows, users: users}
}

// Follow subscribes the viewer to username.
// The pre-check gives the common case a clean error; the unique constraint closes the race.
func (s *followService) Follow(ctx context.Context, viewer auth.Viewer, username string) error {
	author, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	if viewer.Is(author.ID) {
		return model.ErrSelfFollow
	}

	exists, err := s.follows.Exists(ctx, viewer.UserID, author.ID)
	if err != nil {
		return fmt.Errorf("check follow: %w", err)
	}
	if exists {
		return model.ErrAlreadyFollowing
	}

	if err := s.follows.Create(ctx, &model.Follow{UserID: viewer.UserID, AuthorID: author.ID}); err != nil {
		if errors.Is(err, model.ErrAlreadyFollowing) || errors.Is(err, model.ErrSelfFollow) {
			return err
		}
		return fmt.Errorf("create follow: %w", err)
	}

	log.Info().Str("user", viewer.Username).Str("author", author.Username).Msg("Followed author")
	return nil
}

func (s *followService) Unfollow(ctx context.Context, viewer auth.Viewer, username string) error {
	author, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}

	removed, err := s.follows.Delete(ctx, viewer.UserID, author.ID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if removed > 0 {
		log.Info().Str("user", viewer.Username).Str("author", author.Username).Msg("Unfollowed author")
	}
	return nil
}

func (s *followService) lookup(ctx context.Context, username string) (*user.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("load author: %w", err)
	}
	return u, nil
}
