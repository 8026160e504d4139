package model

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"yatube-backend/internal/shared/pagination"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// FeedPage is one page of posts plus its pagination metadata.
type FeedPage struct {
	Posts []*Post
	Page  pagination.Page
}

// ProfileView is the data of an author's profile page.
type ProfileView struct {
	Author     PostAuthor
	PostsCount int
	Following  bool
	Feed       FeedPage
}

// GroupView is the data of a group page.
type GroupView struct {
	Group *Group
	Feed  FeedPage
}

// PostDetail is a post with the author's post count and its comments.
type PostDetail struct {
	Post             *Post
	AuthorPostsCount int
	Comments         []*Comment
}

// CreateGroupRequest is the admin API payload for a new group.
type CreateGroupRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (r *CreateGroupRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Description = strings.TrimSpace(r.Description)
}

func (r CreateGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&r.Slug,
			validation.Length(0, 50),
			validation.When(r.Slug != "", validation.Match(slugPattern).Error("slug may contain only lowercase letters, digits and hyphens")),
		),
	)
}
