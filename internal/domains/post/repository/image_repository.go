package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"yatube-backend/internal/domains/post/model"
)

type imageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) ImageRepository {
	return &imageRepository{pool: pool}
}

// Upsert starts (or restarts) thumbnail tracking for the post's current image.
func (r *imageRepository) Upsert(ctx context.Context, image *model.PostImage) error {
	query := `
		INSERT INTO post_images (post_id, original_key, thumbnail_key, status, updated_at)
		VALUES ($1, $2, NULL, $3, NOW())
		ON CONFLICT (post_id) DO UPDATE
		SET original_key = EXCLUDED.original_key,
		    thumbnail_key = NULL,
		    status = EXCLUDED.status,
		    updated_at = NOW()
		RETURNING updated_at
	`
	if image.Status == "" {
		image.Status = model.ImageStatusProcessing
	}
	err := r.pool.QueryRow(ctx, query, image.PostID, image.OriginalKey, image.Status).Scan(&image.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert post image %d: %w", image.PostID, err)
	}
	image.ThumbnailKey = nil
	return nil
}

func (r *imageRepository) GetByPost(ctx context.Context, postID int64) (*model.PostImage, error) {
	query := `
		SELECT post_id, original_key, thumbnail_key, status, updated_at
		FROM post_images
		WHERE post_id = $1
	`
	var img model.PostImage
	err := r.pool.QueryRow(ctx, query, postID).Scan(
		&img.PostID, &img.OriginalKey, &img.ThumbnailKey, &img.Status, &img.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post image %d: %w", postID, err)
	}
	return &img, nil
}

// MarkReady only applies while the row still tracks originalKey, so a newer upload wins.
func (r *imageRepository) MarkReady(ctx context.Context, postID int64, originalKey, thumbnailKey string) error {
	return r.setStatus(ctx, postID, originalKey, model.ImageStatusReady, &thumbnailKey)
}

func (r *imageRepository) MarkFailed(ctx context.Context, postID int64, originalKey string) error {
	return r.setStatus(ctx, postID, originalKey, model.ImageStatusFailed, nil)
}

func (r *imageRepository) setStatus(ctx context.Context, postID int64, originalKey string, status model.ImageStatus, thumbnailKey *string) error {
	query := `
		UPDATE post_images
		SET status = $3, thumbnail_key = $4, updated_at = NOW()
		WHERE post_id = $1 AND original_key = $2
	`
	tag, err := r.pool.Exec(ctx, query, postID, originalKey, status, thumbnailKey)
	if err != nil {
		return fmt.Errorf("update post image %d: %w", postID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrImageNotFound
	}
	return nil
}

func (r *imageRepository) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*model.PostImage, error) {
	query := `
		SELECT post_id, original_key, thumbnail_key, status, updated_at
		FROM post_images
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, model.ImageStatusProcessing, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale images: %w", err)
	}
	defer rows.Close()

	var images []*model.PostImage
	for rows.Next() {
		var img model.PostImage
		if err := rows.Scan(&img.PostID, &img.OriginalKey, &img.ThumbnailKey, &img.Status, &img.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stale image: %w", err)
		}
		images = append(images, &img)
	}
	return images, rows.Err()
}

// Touch bumps updated_at so re-enqueued images are not picked up by the next sweep.
func (r *imageRepository) Touch(ctx context.Context, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE post_images SET updated_at = NOW() WHERE post_id = ANY($1::bigint[])`,
		pq.Array(postIDs),
	)
	if err != nil {
		return fmt.Errorf("touch post images: %w", err)
	}
	return nil
}
