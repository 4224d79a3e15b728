package user

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"vigil/internal/auth"
	"vigil/pkg/platform/sentinel"
)

// InMemoryStore keeps users in a map for tests and single-node development.
// It favors clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]auth.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[uuid.UUID]auth.User)}
}

func (s *InMemoryStore) Create(_ context.Context, user auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return sentinel.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return auth.User{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return auth.User{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]auth.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *InMemoryStore) Update(_ context.Context, user auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for id, existing := range s.users {
		if id != user.ID && existing.Username == user.Username {
			return sentinel.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
