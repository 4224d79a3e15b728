// Package user implements administrative user management. Every mutation is
// gated on the caller's principal and recorded in the audit trail.
package user

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

// Store is the user persistence surface this service needs.
type Store interface {
	Create(ctx context.Context, user auth.User) error
	FindByUsername(ctx context.Context, username string) (auth.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (auth.User, error)
	List(ctx context.Context) ([]auth.User, error)
	Update(ctx context.Context, user auth.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store   Store
	audit   *audit.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, auditSvc *audit.Service, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, audit: auditSvc, logger: logger, metrics: m}
}

// Create adds a user account. Admin only.
func (s *Service) Create(ctx context.Context, principal auth.Principal, username, password string, role auth.Role) (auth.User, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return auth.User{}, err
	}
	if username == "" {
		return auth.User{}, dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	if role == "" {
		role = auth.RoleStandard
	}
	if !role.Valid() {
		return auth.User{}, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	if !auth.VerifyPasswordRequirements(password) {
		return auth.User{}, dErrors.New(dErrors.CodeInvalidInput, "password does not meet the strength policy")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return auth.User{}, err
	}
	created := auth.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, created); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return auth.User{}, dErrors.New(dErrors.CodeConflict, "username already exists")
		}
		return auth.User{}, fmt.Errorf("create user: %w", err)
	}

	s.metrics.UsersCreated.Inc()
	s.logger.InfoContext(ctx, "user created",
		"username", username,
		"role", role,
		"actor", principal.Username,
		"request_id", requestcontext.RequestID(ctx),
	)
	if err := s.audit.Record(ctx, principal.Username, "create_user:"+username); err != nil {
		return auth.User{}, err
	}
	return created, nil
}

// List returns all users. Admin only; listing appends no audit entry.
func (s *Service) List(ctx context.Context, principal auth.Principal) ([]auth.User, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return nil, err
	}
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRequest carries the optional fields of an admin user update. Nil
// means leave unchanged.
type UpdateRequest struct {
	Username *string
	Password *string
	Role     *auth.Role
}

// Update applies an admin update to a user record.
func (s *Service) Update(ctx context.Context, principal auth.Principal, id uuid.UUID, req UpdateRequest) error {
	if err := auth.RequireAdmin(principal); err != nil {
		return err
	}

	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}

	if req.Username != nil && *req.Username != "" {
		target.Username = *req.Username
	}
	if req.Password != nil {
		if !auth.VerifyPasswordRequirements(*req.Password) {
			return dErrors.New(dErrors.CodeInvalidInput, "password does not meet the strength policy")
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return err
		}
		target.PasswordHash = hash
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return dErrors.New(dErrors.CodeInvalidInput, "unknown role")
		}
		target.Role = *req.Role
	}

	if err := s.store.Update(ctx, target); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "username already exists")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return s.audit.Record(ctx, principal.Username, "update_user:"+id.String())
}

// Delete removes a user record. Admin only.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	if err := auth.RequireAdmin(principal); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return s.audit.Record(ctx, principal.Username, "delete_user:"+id.String())
}

// ChangePassword updates the caller's own password.
func (s *Service) ChangePassword(ctx context.Context, principal auth.Principal, newPassword string) error {
	if !auth.VerifyPasswordRequirements(newPassword) {
		return dErrors.New(dErrors.CodeInvalidInput, "password does not meet the strength policy")
	}

	target, err := s.store.FindByUsername(ctx, principal.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	target.PasswordHash = hash
	if err := s.store.Update(ctx, target); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.audit.Record(ctx, principal.Username, "update_password")
}
