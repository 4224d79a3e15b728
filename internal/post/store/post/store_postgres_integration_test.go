//go:build integration

package post

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/auth"
	userstore "vigil/internal/auth/store/user"
	domain "vigil/internal/post"
	"vigil/internal/storage"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, storage.Migrate(ctx, pc.DB))

	users := userstore.NewPostgres(pc.DB)
	store := NewPostgres(pc.DB)

	seedAuthor := func(t *testing.T, username string) uuid.UUID {
		t.Helper()
		author := auth.User{
			ID:           uuid.New(),
			Username:     username,
			PasswordHash: "$2a$10$hash",
			Role:         auth.RoleStandard,
			CreatedAt:    time.Now(),
		}
		require.NoError(t, users.Create(ctx, author))
		return author.ID
	}

	seedPost := func(t *testing.T, authorID uuid.UUID, title string) domain.Post {
		t.Helper()
		p := domain.Post{
			ID:        uuid.New(),
			Title:     title,
			Content:   "content",
			AuthorID:  authorID,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, store.Create(ctx, p))
		return p
	}

	reset := func(t *testing.T) {
		t.Helper()
		require.NoError(t, pc.TruncateTables(ctx, "posts", "users"))
	}

	t.Run("create and find", func(t *testing.T) {
		reset(t)
		author := seedAuthor(t, "alice")
		created := seedPost(t, author, "hello")

		found, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Title, found.Title)
		assert.Equal(t, author, found.AuthorID)

		_, err = store.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("list by author", func(t *testing.T) {
		reset(t)
		alice := seedAuthor(t, "alice")
		bob := seedAuthor(t, "bob")
		seedPost(t, alice, "first")
		time.Sleep(10 * time.Millisecond)
		seedPost(t, alice, "second")
		seedPost(t, bob, "other")

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := store.ListByAuthor(ctx, alice)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "first", mine[0].Title)
		assert.Equal(t, "second", mine[1].Title)
	})

	t.Run("update and delete", func(t *testing.T) {
		reset(t)
		author := seedAuthor(t, "alice")
		created := seedPost(t, author, "draft")

		created.Title = "published"
		require.NoError(t, store.Update(ctx, created))
		updated, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "published", updated.Title)

		require.NoError(t, store.Delete(ctx, created.ID))
		assert.ErrorIs(t, store.Delete(ctx, created.ID), sentinel.ErrNotFound)
		assert.ErrorIs(t, store.Update(ctx, created), sentinel.ErrNotFound)
	})

	t.Run("author deletion cascades", func(t *testing.T) {
		reset(t)
		author := seedAuthor(t, "alice")
		created := seedPost(t, author, "orphaned")

		require.NoError(t, users.Delete(ctx, author))
		_, err := store.FindByID(ctx, created.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
