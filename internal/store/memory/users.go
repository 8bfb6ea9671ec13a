package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func (s *Store) ListUsers(_ context.Context, skip, limit int) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, id := range sortedKeys(s.users) {
		out = append(out, s.users[id])
	}
	return page(out, skip, limit), nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) findUser(match func(domain.User) bool) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; match(u) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUserUnique(user, 0); err != nil {
		return nil, err
	}
	user.ID = s.allocID("user")
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := s.checkUserUnique(user, user.ID); err != nil {
		return nil, err
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = timePtr(time.Now().UTC())
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	for _, sale := range s.sales {
		if sale.UserID != nil && *sale.UserID == id {
			sale.UserID = nil
		}
	}
	return nil
}

func (s *Store) checkUserUnique(user domain.User, exceptID int64) error {
	for id, u := range s.users {
		if id == exceptID {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: email already registered", store.ErrConflict)
		}
		if u.Username == user.Username {
			return fmt.Errorf("%w: username already taken", store.ErrConflict)
		}
	}
	return nil
}
