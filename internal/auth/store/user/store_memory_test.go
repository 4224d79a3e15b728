package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/auth"
	"vigil/pkg/platform/sentinel"
)

func newUser(username string, createdAt time.Time) auth.User {
	return auth.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "$2a$10$hash",
		Role:         auth.RoleStandard,
		CreatedAt:    createdAt,
	}
}

func TestInMemoryStoreCreateAndFind(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	alice := newUser("alice", time.Now())
	require.NoError(t, store.Create(ctx, alice))

	byName, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice, byName)

	byID, err := store.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, byID)

	_, err = store.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreCreateConflict(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newUser("alice", time.Now())))
	err := store.Create(ctx, newUser("alice", time.Now()))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemoryStoreListOrderedByCreation(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	base := time.Now()
	third := newUser("carol", base.Add(2*time.Second))
	first := newUser("alice", base)
	second := newUser("bob", base.Add(time.Second))
	for _, u := range []auth.User{third, first, second} {
		require.NoError(t, store.Create(ctx, u))
	}

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{users[0].Username, users[1].Username, users[2].Username})
}

func TestInMemoryStoreUpdate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	alice := newUser("alice", time.Now())
	bob := newUser("bob", time.Now())
	require.NoError(t, store.Create(ctx, alice))
	require.NoError(t, store.Create(ctx, bob))

	alice.Role = auth.RoleAdmin
	require.NoError(t, store.Update(ctx, alice))
	updated, err := store.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, updated.Role)

	// Renaming onto an existing username is a conflict.
	alice.Username = "bob"
	assert.ErrorIs(t, store.Update(ctx, alice), sentinel.ErrConflict)

	missing := newUser("ghost", time.Now())
	assert.ErrorIs(t, store.Update(ctx, missing), sentinel.ErrNotFound)
}

func TestInMemoryStoreDelete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	alice := newUser("alice", time.Now())
	require.NoError(t, store.Create(ctx, alice))
	require.NoError(t, store.Delete(ctx, alice.ID))

	_, err := store.FindByID(ctx, alice.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, alice.ID), sentinel.ErrNotFound)
}
