package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domain "vigil/internal/post"
	"vigil/pkg/platform/sentinel"
)

// PostgresStore persists posts through database/sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, post domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.AuthorID, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	query := `
		SELECT id, title, content, author_id, created_at
		FROM posts
		WHERE id = $1
	`
	var post domain.Post
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Post{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("scan post: %w", err)
	}
	return post, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Post, error) {
	query := `
		SELECT id, title, content, author_id, created_at
		FROM posts
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (s *PostgresStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	query := `
		SELECT id, title, content, author_id, created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (s *PostgresStore) Update(ctx context.Context, post domain.Post) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, post.ID, post.Title, post.Content)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanPosts(rows *sql.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}
