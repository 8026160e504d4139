package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"yatube-backend/internal/domains/post/model"
)

const selectPosts = `
	SELECT p.id, p.text, p.pub_date, p.author_id, p.group_id, p.image,
	       u.username, u.full_name,
	       g.title, g.slug, g.description,
	       COALESCE(pi.thumbnail_key, '')
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id
	LEFT JOIN post_images pi ON pi.post_id = p.id AND pi.status = 'ready' AND pi.original_key = p.image
`

type postRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (text, author_id, group_id, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id, pub_date
	`
	err := r.pool.QueryRow(ctx, query,
		post.Text,
		post.AuthorID,
		post.GroupID,
		post.Image,
	).Scan(&post.ID, &post.PubDate)
	if err != nil {
		if mapped := foreignKeyError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	row := r.pool.QueryRow(ctx, selectPosts+` WHERE p.id = $1`, id)
	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET text = $2, group_id = $3, image = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, post.ID, post.Text, post.GroupID, post.Image)
	if err != nil {
		if mapped := foreignKeyError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*model.Post, error) {
	where, args := buildPostFilter(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf("%s %s ORDER BY p.id DESC LIMIT $%d OFFSET $%d",
		selectPosts, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int, error) {
	where, args := buildPostFilter(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts p `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

func buildPostFilter(filter PostFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		clauses = append(clauses, fmt.Sprintf("p.group_id = $%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if filter.ByAuthors {
		args = append(args, pq.Array(uuidStrings(filter.AuthorIDs)))
		clauses = append(clauses, fmt.Sprintf("p.author_id = ANY($%d::uuid[])", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var (
		post             model.Post
		groupTitle       *string
		groupSlug        *string
		groupDescription *string
	)
	err := row.Scan(
		&post.ID,
		&post.Text,
		&post.PubDate,
		&post.AuthorID,
		&post.GroupID,
		&post.Image,
		&post.Author.Username,
		&post.Author.FullName,
		&groupTitle,
		&groupSlug,
		&groupDescription,
		&post.Thumbnail,
	)
	if err != nil {
		return nil, err
	}

	post.Author.ID = post.AuthorID
	if post.GroupID != nil && groupSlug != nil {
		post.Group = &model.Group{
			ID:          *post.GroupID,
			Title:       deref(groupTitle),
			Slug:        *groupSlug,
			Description: deref(groupDescription),
		}
	}
	return &post, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
