package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrImageNotFound  = errors.New("post image not found")

	// ErrViewerNotFound means a signed token outlived its account.
	ErrViewerNotFound = errors.New("signed-in account no longer exists")

	ErrNotAuthor        = errors.New("only the author can edit this post")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this author")
	ErrGroupSlugTaken   = errors.New("group slug already exists")
)

// FormError carries field level validation failures of a submitted form.
type FormError struct {
	Fields validation.Errors
}

func (e *FormError) Error() string {
	return "form validation failed: " + e.Fields.Error()
}

func (e *FormError) Unwrap() error {
	return e.Fields
}

// NewFieldError builds a FormError for a single field.
func NewFieldError(field, message string) *FormError {
	return &FormError{Fields: validation.Errors{field: errors.New(message)}}
}

// AsFormError wraps ozzo validation errors, passing anything else through.
func AsFormError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return &FormError{Fields: verrs}
	}
	return err
}
