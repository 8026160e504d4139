package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"yatube-backend/internal/domains/post/model"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// Foreign keys keep the default <table>_<column>_fkey names from the migrations.
var foreignKeyErrors = map[string]error{
	"posts_author_id_fkey":    model.ErrViewerNotFound,
	"posts_group_id_fkey":     model.ErrGroupNotFound,
	"comments_author_id_fkey": model.ErrViewerNotFound,
	"comments_post_id_fkey":   model.ErrPostNotFound,
	"follows_user_id_fkey":    model.ErrViewerNotFound,
	"follows_author_id_fkey":  model.ErrAuthorNotFound,
}

// foreignKeyError maps a violated reference onto the missing row's sentinel, nil otherwise.
func foreignKeyError(err error) error {
	code, constraint := pgErrorCode(err)
	if code != pgForeignKeyViolation {
		return nil
	}
	return foreignKeyErrors[constraint]
}

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
