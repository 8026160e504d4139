package model

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var textRules = []validation.Rule{
	validation.Required.Error("This field is required."),
	validation.RuneLength(0, MaxTextLength).Error("Post text must not exceed 200 characters"),
}

// PostForm is the create/edit post submission.
// GroupID is the raw select value; empty means no group.
type PostForm struct {
	Text    string                `json:"text" form:"text"`
	GroupID string                `json:"group" form:"group"`
	Image   *multipart.FileHeader `json:"image" form:"image"`
}

// Normalize trims surrounding whitespace like the rendered form does.
func (f *PostForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
	f.GroupID = strings.TrimSpace(f.GroupID)
}

func (f PostForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Text, textRules...),
		validation.Field(&f.GroupID,
			validation.When(f.GroupID != "", validation.By(func(interface{}) error {
				if _, err := f.Group(); err != nil {
					return errors.New("Select a valid choice.")
				}
				return nil
			})),
		),
	)
}

// Group returns the selected group id, nil when none was chosen.
func (f PostForm) Group() (*int64, error) {
	if f.GroupID == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(f.GroupID, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrGroupNotFound
	}
	return &id, nil
}

// FormFromPost prefills the edit form.
func FormFromPost(p *Post) PostForm {
	form := PostForm{Text: p.Text}
	if p.GroupID != nil {
		form.GroupID = strconv.FormatInt(*p.GroupID, 10)
	}
	return form
}

// CommentForm is the comment submission.
type CommentForm struct {
	Text string `json:"text" form:"text"`
}

func (f *CommentForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
}

func (f CommentForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Text,
			validation.Required.Error("This field is required."),
			validation.RuneLength(0, MaxTextLength).Error("Comment text must not exceed 200 characters"),
		),
	)
}
