package post

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	domain "vigil/internal/post"
	"vigil/pkg/platform/sentinel"
)

// InMemoryStore keeps posts in a map for tests and single-node development.
type InMemoryStore struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]domain.Post
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{posts: make(map[uuid.UUID]domain.Post)}
}

func (s *InMemoryStore) Create(_ context.Context, post domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = post
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if post, ok := s.posts[id]; ok {
		return post, nil
	}
	return domain.Post{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]domain.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, post)
	}
	sortByCreation(posts)
	return posts, nil
}

func (s *InMemoryStore) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var posts []domain.Post
	for _, post := range s.posts {
		if post.AuthorID == authorID {
			posts = append(posts, post)
		}
	}
	sortByCreation(posts)
	return posts, nil
}

func (s *InMemoryStore) Update(_ context.Context, post domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.posts[post.ID] = post
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func sortByCreation(posts []domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
}
