package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"yatube-backend/internal/domains/post/model"
)

type followRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) FollowRepository {
	return &followRepository{pool: pool}
}

// Create maps the pair constraint to ErrAlreadyFollowing and the self check to ErrSelfFollow.
func (r *followRepository) Create(ctx context.Context, follow *model.Follow) error {
	query := `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1, $2)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query, follow.UserID, follow.AuthorID).Scan(&follow.ID)
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgUniqueViolation:
			return model.ErrAlreadyFollowing
		case pgCheckViolation:
			return model.ErrSelfFollow
		}
		if mapped := foreignKeyError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)`,
		userID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	if err != nil {
		return 0, fmt.Errorf("delete follow: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *followRepository) ListAuthorIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT author_id FROM follows WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list followed authors: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan followed author: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
