// Package post implements post management with per-owner authorization.
// Standard users see and touch only their own posts; admins see everything.
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vigil/internal/audit"
	"vigil/internal/auth"
	"vigil/internal/platform/metrics"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/requestcontext"
)

// Store is the post persistence surface.
type Store interface {
	Create(ctx context.Context, post Post) error
	FindByID(ctx context.Context, id uuid.UUID) (Post, error)
	List(ctx context.Context) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Post, error)
	Update(ctx context.Context, post Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserLookup resolves the caller's user record for ownership checks.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (auth.User, error)
}

type Service struct {
	store   Store
	users   UserLookup
	audit   *audit.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, users UserLookup, auditSvc *audit.Service, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, users: users, audit: auditSvc, logger: logger, metrics: m}
}

func (s *Service) author(ctx context.Context, principal auth.Principal) (auth.User, error) {
	user, err := s.users.FindByUsername(ctx, principal.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return auth.User{}, dErrors.New(dErrors.CodeUnauthorized, "user no longer exists")
		}
		return auth.User{}, fmt.Errorf("find author: %w", err)
	}
	return user, nil
}

// Create adds a post owned by the caller.
func (s *Service) Create(ctx context.Context, principal auth.Principal, title, content string) (Post, error) {
	if title == "" {
		return Post{}, dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if content == "" {
		return Post{}, dErrors.New(dErrors.CodeInvalidInput, "content is required")
	}

	author, err := s.author(ctx, principal)
	if err != nil {
		return Post{}, err
	}

	created := Post{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		AuthorID:  author.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, created); err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}

	s.metrics.PostsCreated.Inc()
	s.logger.InfoContext(ctx, "post created",
		"post_id", created.ID,
		"actor", principal.Username,
		"request_id", requestcontext.RequestID(ctx),
	)
	if err := s.audit.Record(ctx, principal.Username, "create_post:"+title); err != nil {
		return Post{}, err
	}
	return created, nil
}

// List returns all posts for admins and only the caller's posts otherwise.
// Listing appends no audit entry.
func (s *Service) List(ctx context.Context, principal auth.Principal) ([]Post, error) {
	if principal.IsAdmin() {
		posts, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		return posts, nil
	}

	author, err := s.author(ctx, principal)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.ListByAuthor(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Update edits a post. Only the owner or an admin may edit.
func (s *Service) Update(ctx context.Context, principal auth.Principal, id uuid.UUID, title, content string) error {
	if title == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if content == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "content is required")
	}

	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return fmt.Errorf("find post: %w", err)
	}

	if err := s.requireOwnership(ctx, principal, target); err != nil {
		return err
	}

	target.Title = title
	target.Content = content
	if err := s.store.Update(ctx, target); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return s.audit.Record(ctx, principal.Username, "update_post:"+id.String())
}

// Delete removes a post. Only the owner or an admin may delete.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return fmt.Errorf("find post: %w", err)
	}

	if err := s.requireOwnership(ctx, principal, target); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return s.audit.Record(ctx, principal.Username, "delete_post:"+id.String())
}

func (s *Service) requireOwnership(ctx context.Context, principal auth.Principal, target Post) error {
	if principal.IsAdmin() {
		return nil
	}
	author, err := s.author(ctx, principal)
	if err != nil {
		return err
	}
	if target.AuthorID != author.ID {
		return dErrors.New(dErrors.CodeForbidden, "not the owner of this post")
	}
	return nil
}
