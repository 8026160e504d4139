package service

import (
	"context"
	"time"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/shared/auth"
)

// PostService covers the feeds, post pages and the post lifecycle.
type PostService interface {
	Index(ctx context.Context, pageParam string) (*model.FeedPage, error)
	GroupFeed(ctx context.Context, slug, pageParam string) (*model.GroupView, error)
	Profile(ctx context.Context, viewer auth.Viewer, username, pageParam string) (*model.ProfileView, error)
	FollowFeed(ctx context.Context, viewer auth.Viewer, pageParam string) (*model.FeedPage, error)
	Detail(ctx context.Context, postID int64) (*model.PostDetail, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)

	Create(ctx context.Context, viewer auth.Viewer, form model.PostForm) (*model.Post, error)
	// GetForEdit returns ErrNotAuthor unless the viewer wrote the post.
	GetForEdit(ctx context.Context, viewer auth.Viewer, postID int64) (*model.Post, error)
	Edit(ctx context.Context, viewer auth.Viewer, postID int64, form model.PostForm) (*model.Post, error)
}

type CommentService interface {
	Create(ctx context.Context, viewer auth.Viewer, postID int64, form model.CommentForm) (*model.Comment, error)
}

type FollowService interface {
	Follow(ctx context.Context, viewer auth.Viewer, username string) error
	// Unfollow is a no-op when no edge exists.
	Unfollow(ctx context.Context, viewer auth.Viewer, username string) error
}

// GroupService is the admin side of groups.
type GroupService interface {
	Create(ctx context.Context, req model.CreateGroupRequest) (*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
	Delete(ctx context.Context, slug string) error
}

// ImageService stores uploads and drives background thumbnailing.
type ImageService interface {
	// Save validates and uploads an image, returning its object key.
	Save(ctx context.Context, upload *Upload) (string, error)
	// Track records the post's current image and enqueues its thumbnail.
	Track(ctx context.Context, postID int64, key string) error
	// Discard schedules removal of the post's previous image objects.
	Discard(ctx context.Context, postID int64, keys ...string)

	ProcessImage(ctx context.Context, postID int64, key string) error
	DeleteObjects(ctx context.Context, keys []string) error
	SweepStale(ctx context.Context, staleAfter time.Duration, limit int) (int, error)
}

// ObjectStore is the part of the object storage the image service needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	RemoveObjects(ctx context.Context, keys []string) error
}

// TaskQueue enqueues background image work.
type TaskQueue interface {
	EnqueueProcessImage(ctx context.Context, postID int64, key string) error
	EnqueueDeleteImages(ctx context.Context, keys ...string) error
}
