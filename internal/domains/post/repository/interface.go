package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"yatube-backend/internal/domains/post/model"
)

// PostFilter narrows a post listing; the zero value selects every post.
type PostFilter struct {
	GroupID   *int64
	AuthorID  *uuid.UUID
	AuthorIDs []uuid.UUID
	// ByAuthors restricts to AuthorIDs even when it is empty (follow feed of nobody).
	ByAuthors bool
}

// All posts, newest first.
func All() PostFilter { return PostFilter{} }

func ByGroup(groupID int64) PostFilter { return PostFilter{GroupID: &groupID} }

func ByAuthor(authorID uuid.UUID) PostFilter { return PostFilter{AuthorID: &authorID} }

func ByAuthors(authorIDs []uuid.UUID) PostFilter {
	return PostFilter{AuthorIDs: authorIDs, ByAuthors: true}
}

// PostRepository lists posts ordered by id descending.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// Update writes text, group and image only.
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*model.Post, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
}

// GroupRepository manages groups; deleting one clears its posts' group.
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	GetBySlug(ctx context.Context, slug string) (*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
	Delete(ctx context.Context, slug string) error
}

// CommentRepository is append-only; comments list oldest first.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByPost(ctx context.Context, postID int64) ([]*model.Comment, error)
}

// FollowRepository stores subscription edges; the (user, author) pair is unique.
type FollowRepository interface {
	Create(ctx context.Context, follow *model.Follow) error
	Exists(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
	// Delete reports how many edges were removed; zero is not an error.
	Delete(ctx context.Context, userID, authorID uuid.UUID) (int64, error)
	ListAuthorIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ImageRepository tracks background thumbnail generation per post.
type ImageRepository interface {
	Upsert(ctx context.Context, image *model.PostImage) error
	GetByPost(ctx context.Context, postID int64) (*model.PostImage, error)
	MarkReady(ctx context.Context, postID int64, originalKey, thumbnailKey string) error
	MarkFailed(ctx context.Context, postID int64, originalKey string) error
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*model.PostImage, error)
	Touch(ctx context.Context, postIDs []int64) error
}
