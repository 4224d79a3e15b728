package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"vigil/internal/audit"
	"vigil/internal/platform/metrics"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/requestcontext"
)

// UserStore is the slice of the user store the auth service needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, user User) error
}

// Service owns authentication and the authorization gate: it verifies
// credentials, issues tokens, and resolves tokens back into principals.
type Service struct {
	users   UserStore
	tokens  *TokenService
	audit   *audit.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(users UserStore, tokens *TokenService, auditSvc *audit.Service, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		audit:   auditSvc,
		logger:  logger,
		metrics: m,
	}
}

// Tokens exposes the token service for transport wiring.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Login verifies credentials and issues an access token. Success appends
// exactly one "login" audit event; failures append nothing and collapse to a
// single unauthorized answer so usernames cannot be probed.
func (s *Service) Login(ctx context.Context, username, password string) (string, Principal, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.metrics.LoginFailure.Inc()
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", Principal{}, fmt.Errorf("find user: %w", err)
	}

	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		s.metrics.LoginFailure.Inc()
		s.logger.WarnContext(ctx, "login failed",
			"username", username,
			"request_id", requestcontext.RequestID(ctx),
		)
		return "", Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Generate(user.Username, user.Role, s.tokens.TTL())
	if err != nil {
		return "", Principal{}, fmt.Errorf("generate token: %w", err)
	}

	s.metrics.LoginSuccess.Inc()
	browser, browserVersion := "", ""
	ua := useragent.New(requestcontext.UserAgent(ctx))
	if ua != nil {
		browser, browserVersion = ua.Browser()
	}
	s.logger.InfoContext(ctx, "login succeeded",
		"username", user.Username,
		"role", user.Role,
		"browser", browser,
		"browser_version", browserVersion,
		"request_id", requestcontext.RequestID(ctx),
	)

	if err := s.audit.Record(ctx, user.Username, "login"); err != nil {
		return "", Principal{}, err
	}
	return token, Principal{Username: user.Username, Role: user.Role}, nil
}

// Logout records the logout in the audit trail. Tokens are stateless, so this
// does not and cannot invalidate the presented token.
func (s *Service) Logout(ctx context.Context, principal Principal) error {
	return s.audit.Record(ctx, principal.Username, "logout")
}

// ResolvePrincipal turns a bearer token into a principal backed by a live
// user record. A valid token whose subject has since been deleted is
// rejected: identity must exist at the moment of the call, not just at issue.
func (s *Service) ResolvePrincipal(ctx context.Context, token string) (Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return Principal{}, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "user no longer exists")
		}
		return Principal{}, fmt.Errorf("find user: %w", err)
	}
	return Principal{Username: user.Username, Role: user.Role}, nil
}

// RequireAdmin gates admin-only operations.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "admin role required")
	}
	return nil
}

// EnsureAdmin seeds the bootstrap admin account if it does not exist. The
// seed password passes through the same policy and truncation as any other,
// so the admin can always log back in with the configured value.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if !VerifyPasswordRequirements(password) {
		return dErrors.New(dErrors.CodeInvalidInput, "admin password does not meet the strength policy")
	}

	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("find admin user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	admin := User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		// Another instance may have seeded concurrently; that is fine.
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded admin account", "username", username)
	return nil
}
