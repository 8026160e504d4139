package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"yatube-backend/internal/domains/post/model"
)

func TestForeignKeyError(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"posts_author_id_fkey", model.ErrViewerNotFound},
		{"posts_group_id_fkey", model.ErrGroupNotFound},
		{"comments_author_id_fkey", model.ErrViewerNotFound},
		{"comments_post_id_fkey", model.ErrPostNotFound},
		{"follows_user_id_fkey", model.ErrViewerNotFound},
		{"follows_author_id_fkey", model.ErrAuthorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: tt.constraint})
			assert.ErrorIs(t, foreignKeyError(err), tt.want)
		})
	}

	assert.NoError(t, foreignKeyError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "unknown_fkey"}))
	assert.NoError(t, foreignKeyError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "posts_author_id_fkey"}))
	assert.NoError(t, foreignKeyError(errors.New("connection reset")))
}
