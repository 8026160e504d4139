package model

import (
	"time"

	"github.com/google/uuid"
)

// Group is a themed community posts can be tagged with
type Group struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
}

// PostAuthor is the slice of the user row shown next to posts and comments
type PostAuthor struct {
	ID       uuid.UUID `json:"id" db:"author_id"`
	Username string    `json:"username" db:"username"`
	FullName string    `json:"full_name" db:"full_name"`
}

func (a PostAuthor) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

// Post is a short text entry; newest first by id
type Post struct {
	ID       int64      `json:"id" db:"id"`
	Text     string     `json:"text" db:"text"`
	PubDate  time.Time  `json:"pub_date" db:"pub_date"`
	AuthorID uuid.UUID  `json:"author_id" db:"author_id"`
	GroupID  *int64     `json:"group_id,omitempty" db:"group_id"`
	Image    string     `json:"image,omitempty" db:"image"`
	Author   PostAuthor `json:"author"`
	Group    *Group     `json:"group,omitempty"`

	// Thumbnail is set once the worker has resized Image.
	Thumbnail string `json:"thumbnail,omitempty" db:"thumbnail_key"`
}

// DisplayImage prefers the generated thumbnail over the original upload.
func (p *Post) DisplayImage() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	return p.Image
}

// Comment is an immutable reply to a post; listed oldest first
type Comment struct {
	ID       int64      `json:"id" db:"id"`
	PostID   int64      `json:"post_id" db:"post_id"`
	AuthorID uuid.UUID  `json:"author_id" db:"author_id"`
	Text     string     `json:"text" db:"text"`
	Created  time.Time  `json:"created" db:"created"`
	Author   PostAuthor `json:"author"`
}

// Follow is a directed subscription edge from UserID to AuthorID
type Follow struct {
	ID       int64     `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	AuthorID uuid.UUID `json:"author_id" db:"author_id"`
}

type ImageStatus string

const (
	ImageStatusProcessing ImageStatus = "processing"
	ImageStatusReady      ImageStatus = "ready"
	ImageStatusFailed     ImageStatus = "failed"
)

// PostImage tracks thumbnail generation for a post's uploaded image
type PostImage struct {
	PostID       int64       `json:"post_id" db:"post_id"`
	OriginalKey  string      `json:"original_key" db:"original_key"`
	ThumbnailKey *string     `json:"thumbnail_key,omitempty" db:"thumbnail_key"`
	Status       ImageStatus `json:"status" db:"status"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}
