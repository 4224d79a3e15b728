package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/audit"
	"vigil/internal/auth"
	userstore "vigil/internal/auth/store/user"
	"vigil/internal/platform/metrics"
	"vigil/internal/user"
	dErrors "vigil/pkg/domain-errors"
)

var (
	adminPrincipal    = auth.Principal{Username: "admin", Role: auth.RoleAdmin}
	standardPrincipal = auth.Principal{Username: "alice", Role: auth.RoleStandard}
)

type userFixture struct {
	svc   *user.Service
	store *userstore.InMemoryStore
	audit *audit.Service
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyring, err := audit.OpenKeyring(t.TempDir())
	require.NoError(t, err)
	auditSvc := audit.NewService(audit.NewLog(keyring, metrics.NewForTest()), logger)
	store := userstore.NewInMemoryStore()
	return userFixture{
		svc:   user.NewService(store, auditSvc, logger, metrics.NewForTest()),
		store: store,
		audit: auditSvc,
	}
}

func (f userFixture) lastAuditAction(t *testing.T) string {
	t.Helper()
	events, err := f.audit.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return events[len(events)-1].Action
}

func TestCreateUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, adminPrincipal, "bob", "Valid123!", "")
	require.NoError(t, err)
	assert.Equal(t, "bob", created.Username)
	assert.Equal(t, auth.RoleStandard, created.Role)
	assert.NotEqual(t, "Valid123!", created.PasswordHash)

	assert.Equal(t, "create_user:bob", f.lastAuditAction(t))
}

func TestCreateUserForbiddenForStandardRole(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Create(context.Background(), standardPrincipal, "bob", "Valid123!", "")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))

	events, listErr := f.audit.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, events)
}

func TestCreateUserValidation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		role     auth.Role
		wantCode dErrors.Code
	}{
		{"missing username", "", "Valid123!", "", dErrors.CodeInvalidInput},
		{"weak password", "bob", "weak", "", dErrors.CodeInvalidInput},
		{"unknown role", "bob", "Valid123!", "superuser", dErrors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, adminPrincipal, tt.username, tt.password, tt.role)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, dErrors.CodeOf(err))
		})
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, adminPrincipal, "bob", "Valid123!", "")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, adminPrincipal, "bob", "Other456!", "")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestListUsersAdminOnly(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, adminPrincipal, "bob", "Valid123!", "")
	require.NoError(t, err)

	users, err := f.svc.List(ctx, adminPrincipal)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = f.svc.List(ctx, standardPrincipal)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))

	// Listing appends nothing beyond the create event.
	events, err := f.audit.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestUpdateUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, adminPrincipal, "bob", "Valid123!", "")
	require.NoError(t, err)

	newName := "robert"
	newRole := auth.RoleAdmin
	require.NoError(t, f.svc.Update(ctx, adminPrincipal, created.ID, user.UpdateRequest{
		Username: &newName,
		Role:     &newRole,
	}))

	updated, err := f.store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Username)
	assert.Equal(t, auth.RoleAdmin, updated.Role)

	assert.Equal(t, "update_user:"+created.ID.String(), f.lastAuditAction(t))
}

func TestUpdateUserNotFound(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.Update(context.Background(), adminPrincipal, uuid.New(), user.UpdateRequest{})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestUpdateUserWeakPasswordRejected(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, adminPrincipal, "bob", "Valid123!", "")
	require.NoError(t, err)

	weak := "weak"
	err = f.svc.Update(ctx, adminPrincipal, created.ID, user.UpdateRequest{Password: &weak})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}

func TestDeleteUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, adminPrincipal, "bob", "Valid123!", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, adminPrincipal, created.ID))
	assert.Equal(t, "delete_user:"+created.ID.String(), f.lastAuditAction(t))

	err = f.svc.Delete(ctx, adminPrincipal, created.ID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, adminPrincipal, "alice", "Valid123!", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ChangePassword(ctx, standardPrincipal, "Fresh456!"))
	assert.Equal(t, "update_password", f.lastAuditAction(t))

	updated, err := f.store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.VerifyPassword("Fresh456!", updated.PasswordHash))
	assert.Error(t, auth.VerifyPassword("Valid123!", updated.PasswordHash))
}

func TestChangePasswordWeakRejected(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.ChangePassword(context.Background(), standardPrincipal, "weak")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}
