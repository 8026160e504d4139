package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/repository"
	"yatube-backend/internal/shared/utils"
)

const maxSlugLength = 50

type groupService struct {
	groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) GroupService {
	return &groupService{groups: groups}
}

// Create derives the slug from the title when none is given.
func (s *groupService) Create(ctx context.Context, req model.CreateGroupRequest) (*model.Group, error) {
	req.Normalize()
	if req.Slug == "" {
		req.Slug = utils.GenerateSlug(req.Title)
		if len(req.Slug) > maxSlugLength {
			req.Slug = strings.TrimRight(req.Slug[:maxSlugLength], "-")
		}
	}
	if err := req.Validate(); err != nil {
		return nil, model.AsFormError(err)
	}
	if req.Slug == "" {
		return nil, model.NewFieldError("slug", "cannot be derived from the title")
	}

	group := &model.Group{Title: req.Title, Slug: req.Slug, Description: req.Description}
	if err := s.groups.Create(ctx, group); err != nil {
		if errors.Is(err, model.ErrGroupSlugTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create group: %w", err)
	}

	log.Info().Int64("group_id", group.ID).Str("slug", group.Slug).Msg("Group created")
	return group, nil
}

func (s *groupService) List(ctx context.Context) ([]*model.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Delete removes the group; its posts stay and lose the group.
func (s *groupService) Delete(ctx context.Context, slug string) error {
	if err := s.groups.Delete(ctx, slug); err != nil {
		return err
	}
	log.Info().Str("slug", slug).Msg("Group deleted")
	return nil
}
