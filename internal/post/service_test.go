package post_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/audit"
	"vigil/internal/auth"
	userstore "vigil/internal/auth/store/user"
	"vigil/internal/platform/metrics"
	"vigil/internal/post"
	poststore "vigil/internal/post/store/post"
	dErrors "vigil/pkg/domain-errors"
)

var (
	adminPrincipal = auth.Principal{Username: "admin", Role: auth.RoleAdmin}
	alicePrincipal = auth.Principal{Username: "alice", Role: auth.RoleStandard}
	bobPrincipal   = auth.Principal{Username: "bob", Role: auth.RoleStandard}
)

type postFixture struct {
	svc   *post.Service
	users *userstore.InMemoryStore
	audit *audit.Service
}

func newPostFixture(t *testing.T) postFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyring, err := audit.OpenKeyring(t.TempDir())
	require.NoError(t, err)
	auditSvc := audit.NewService(audit.NewLog(keyring, metrics.NewForTest()), logger)

	users := userstore.NewInMemoryStore()
	posts := poststore.NewInMemoryStore()
	f := postFixture{
		svc:   post.NewService(posts, users, auditSvc, logger, metrics.NewForTest()),
		users: users,
		audit: auditSvc,
	}
	for _, p := range []auth.Principal{adminPrincipal, alicePrincipal, bobPrincipal} {
		require.NoError(t, users.Create(context.Background(), auth.User{
			ID:        uuid.New(),
			Username:  p.Username,
			Role:      p.Role,
			CreatedAt: time.Now(),
		}))
	}
	return f
}

func (f postFixture) lastAuditAction(t *testing.T) string {
	t.Helper()
	events, err := f.audit.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return events[len(events)-1].Action
}

func TestCreatePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, alicePrincipal, "first post", "hello")
	require.NoError(t, err)
	assert.Equal(t, "first post", created.Title)

	author, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, author.ID, created.AuthorID)

	assert.Equal(t, "create_post:first post", f.lastAuditAction(t))
}

func TestCreatePostValidation(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alicePrincipal, "", "hello")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))

	_, err = f.svc.Create(ctx, alicePrincipal, "title", "")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}

func TestListPostsScopedByRole(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alicePrincipal, "alice post", "a")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, bobPrincipal, "bob post", "b")
	require.NoError(t, err)

	all, err := f.svc.List(ctx, adminPrincipal)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, alicePrincipal)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "alice post", mine[0].Title)
}

func TestUpdatePostOwnership(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, alicePrincipal, "original", "body")
	require.NoError(t, err)

	// Another standard user may not touch it.
	err = f.svc.Update(ctx, bobPrincipal, created.ID, "hijacked", "body")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))

	// The owner may.
	require.NoError(t, f.svc.Update(ctx, alicePrincipal, created.ID, "edited", "body"))
	assert.Equal(t, "update_post:"+created.ID.String(), f.lastAuditAction(t))

	// And an admin always may.
	require.NoError(t, f.svc.Update(ctx, adminPrincipal, created.ID, "moderated", "body"))

	posts, err := f.svc.List(ctx, alicePrincipal)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "moderated", posts[0].Title)
}

func TestDeletePostOwnership(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, alicePrincipal, "doomed", "body")
	require.NoError(t, err)

	err = f.svc.Delete(ctx, bobPrincipal, created.ID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))

	require.NoError(t, f.svc.Delete(ctx, alicePrincipal, created.ID))
	assert.Equal(t, "delete_post:"+created.ID.String(), f.lastAuditAction(t))

	err = f.svc.Delete(ctx, alicePrincipal, created.ID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestAdminDeletesAnotherUsersPost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, bobPrincipal, "spam", "body")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, adminPrincipal, created.ID))

	remaining, err := f.svc.List(ctx, adminPrincipal)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
