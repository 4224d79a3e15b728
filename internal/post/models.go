package post

import (
	"time"

	"github.com/google/uuid"
)

// Post is a text post owned by a user. Ownership is by author ID so renaming
// a user keeps their posts.
type Post struct {
	ID        uuid.UUID
	Title     string
	Content   string
	AuthorID  uuid.UUID
	CreatedAt time.Time
}
