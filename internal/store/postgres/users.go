package postgres

import (
	"context"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

const userColumns = `id, email, username, full_name, hashed_password, is_active, is_admin, created_at, updated_at`

func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	users := make([]domain.User, 0, 16)
	err := s.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, skip, limitOrAll(limit))
	return users, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, "username = $1", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "lower(email) = lower($1)", email)
}

func (s *Store) getUser(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var user domain.User
	if err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE `+cond, arg); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var created domain.User
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO users (email, username, full_name, hashed_password, is_active, is_admin, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		RETURNING `+userColumns,
		user.Email, user.Username, user.FullName, user.HashedPassword, user.IsActive, user.IsAdmin)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var updated domain.User
	err := s.db.GetContext(ctx, &updated, `
		UPDATE users
		SET email = $2, username = $3, full_name = $4, hashed_password = $5,
			is_active = $6, is_admin = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Email, user.Username, user.FullName, user.HashedPassword, user.IsActive, user.IsAdmin)
	if err != nil {
		return nil, notFound(mapError(err))
	}
	return &updated, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "users", id)
}

var _ store.Repository = (*Store)(nil)
