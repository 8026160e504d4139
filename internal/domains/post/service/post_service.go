package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/repository"
	"yatube-backend/internal/domains/user"
	"yatube-backend/internal/infrastructure/storage"
	"yatube-backend/internal/shared/auth"
	"yatube-backend/internal/shared/pagination"
)

type postService struct {
	posts     repository.PostRepository
	groups    repository.GroupRepository
	comments  repository.CommentRepository
	follows   repository.FollowRepository
	users     user.Repository
	images    ImageService
	processor *storage.ImageProcessor
}

func NewPostService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	users user.Repository,
	images ImageService,
	processor *storage.ImageProcessor,
) PostService {
	return &postService{
		posts:     posts,
		groups:    groups,
		comments:  comments,
		follows:   follows,
		users:     users,
		images:    images,
		processor: processor,
	}
}

func (s *postService) Index(ctx context.Context, pageParam string) (*model.FeedPage, error) {
	return s.feed(ctx, repository.All(), pageParam)
}

func (s *postService) GroupFeed(ctx context.Context, slug, pageParam string) (*model.GroupView, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	feed, err := s.feed(ctx, repository.ByGroup(group.ID), pageParam)
	if err != nil {
		return nil, err
	}
	return &model.GroupView{Group: group, Feed: *feed}, nil
}

func (s *postService) Profile(ctx context.Context, viewer auth.Viewer, username, pageParam string) (*model.ProfileView, error) {
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}

	feed, err := s.feed(ctx, repository.ByAuthor(author.ID), pageParam)
	if err != nil {
		return nil, err
	}

	following := false
	if viewer.IsAuthenticated() {
		following, err = s.follows.Exists(ctx, viewer.UserID, author.ID)
		if err != nil {
			return nil, fmt.Errorf("check following: %w", err)
		}
	}

	return &model.ProfileView{
		Author:     model.PostAuthor{ID: author.ID, Username: author.Username, FullName: author.FullName},
		PostsCount: feed.Page.Total,
		Following:  following,
		Feed:       *feed,
	}, nil
}

func (s *postService) FollowFeed(ctx context.Context, viewer auth.Viewer, pageParam string) (*model.FeedPage, error) {
	authorIDs, err := s.follows.ListAuthorIDs(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list followed authors: %w", err)
	}
	return s.feed(ctx, repository.ByAuthors(authorIDs), pageParam)
}

func (s *postService) Detail(ctx context.Context, postID int64) (*model.PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.posts.Count(ctx, repository.ByAuthor(post.AuthorID))
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return &model.PostDetail{Post: post, AuthorPostsCount: count, Comments: comments}, nil
}

func (s *postService) ListGroups(ctx context.Context) ([]*model.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Create publishes a post authored by the viewer.
func (s *postService) Create(ctx context.Context, viewer auth.Viewer, form model.PostForm) (*model.Post, error) {
	form.Normalize()
	groupID, upload, err := s.clean(ctx, form)
	if err != nil {
		return nil, err
	}

	post := &model.Post{Text: form.Text, AuthorID: viewer.UserID, GroupID: groupID}
	if upload != nil {
		if post.Image, err = s.images.Save(ctx, upload); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.Image != "" {
			s.images.Discard(ctx, 0, post.Image)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	if post.Image != "" {
		if err := s.images.Track(ctx, post.ID, post.Image); err != nil {
			log.Warn().Err(err).Int64("post_id", post.ID).Msg("Image tracking failed, original will be shown")
		}
	}

	log.Info().
		Int64("post_id", post.ID).
		Str("author", viewer.Username).
		Msg("Post created")
	return post, nil
}

func (s *postService) GetForEdit(ctx context.Context, viewer auth.Viewer, postID int64) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !viewer.Is(post.AuthorID) {
		return nil, model.ErrNotAuthor
	}
	return post, nil
}

// Edit updates text, group and image in place; pub date and author never change.
func (s *postService) Edit(ctx context.Context, viewer auth.Viewer, postID int64, form model.PostForm) (*model.Post, error) {
	post, err := s.GetForEdit(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}

	form.Normalize()
	groupID, upload, err := s.clean(ctx, form)
	if err != nil {
		return nil, err
	}

	oldImage := post.Image
	oldThumb := post.Thumbnail
	post.Text = form.Text
	post.GroupID = groupID
	if upload != nil {
		if post.Image, err = s.images.Save(ctx, upload); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			s.images.Discard(ctx, post.ID, post.Image)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if post.Image != oldImage {
		post.Thumbnail = ""
		if err := s.images.Track(ctx, post.ID, post.Image); err != nil {
			log.Warn().Err(err).Int64("post_id", post.ID).Msg("Image tracking failed, original will be shown")
		}
		s.images.Discard(ctx, post.ID, oldImage, oldThumb)
	}

	log.Info().Int64("post_id", post.ID).Msg("Post updated")
	return post, nil
}

// clean validates the form and resolves the group and image.
// All field errors are reported together, like a re-rendered form expects.
func (s *postService) clean(ctx context.Context, form model.PostForm) (*int64, *Upload, error) {
	errs := validation.Errors{}
	if err := form.Validate(); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return nil, nil, err
		}
		errs = verrs
	}

	groupID, err := form.Group()
	if err == nil && groupID != nil {
		if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
			if !errors.Is(err, model.ErrGroupNotFound) {
				return nil, nil, fmt.Errorf("load group: %w", err)
			}
			errs["group"] = errors.New("Select a valid choice. That choice is not one of the available choices.")
		}
	}

	var upload *Upload
	if form.Image != nil {
		upload, err = ReadUpload(form.Image, s.processor)
		if err != nil {
			var ferr *model.FormError
			if !errors.As(err, &ferr) {
				return nil, nil, err
			}
			for k, v := range ferr.Fields {
				errs[k] = v
			}
		}
	}

	if len(errs) > 0 {
		return nil, nil, &model.FormError{Fields: errs}
	}
	return groupID, upload, nil
}

func (s *postService) feed(ctx context.Context, filter repository.PostFilter, pageParam string) (*model.FeedPage, error) {
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	page := pagination.Paginate(total, pageParam)
	posts, err := s.posts.List(ctx, filter, page.Limit(), page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &model.FeedPage{Posts: posts, Page: page}, nil
}

func (s *postService) author(ctx context.Context, username string) (*user.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("load author: %w", err)
	}
	return u, nil
}
