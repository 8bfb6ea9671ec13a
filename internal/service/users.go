package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/store"
)

const minPasswordLength = 6

var errInvalidCredentials = fmt.Errorf("%w: incorrect username or password", store.ErrUnauthorized)

func (s *Service) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	skip, limit = NormalizePage(skip, limit)
	return s.repo.ListUsers(ctx, skip, limit)
}

func (s *Service) GetUser(ctx context.Context, id int64) (domain.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.User{}, err
	}
	return s.loadUser(ctx, id)
}

// CurrentUser reloads the account behind a verified token. Deactivated
// accounts are rejected even while their token is still valid.
func (s *Service) CurrentUser(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.loadUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("%w: could not validate credentials", store.ErrUnauthorized)
	}
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsActive {
		return domain.User{}, fmt.Errorf("%w: Inactive user", store.ErrValidation)
	}
	return user, nil
}

func (s *Service) loadUser(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

// Register creates a regular account. Admin rights can only be granted
// through CreateUser.
func (s *Service) Register(ctx context.Context, req domain.UserCreateRequest) (domain.User, error) {
	req.IsAdmin = false
	req.IsActive = nil
	return s.createUser(ctx, req)
}

func (s *Service) CreateUser(ctx context.Context, req domain.UserCreateRequest) (domain.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.User{}, err
	}
	return s.createUser(ctx, req)
}

func (s *Service) createUser(ctx context.Context, req domain.UserCreateRequest) (domain.User, error) {
	user := domain.User{
		FullName:  strings.TrimSpace(req.FullName),
		IsActive:  true,
		IsAdmin:   req.IsAdmin,
		CreatedAt: s.clock(),
	}
	var err error
	if user.Email, err = requireText("email", req.Email, 1, 100); err != nil {
		return domain.User{}, err
	}
	if user.Email, err = validEmail("email", user.Email); err != nil {
		return domain.User{}, err
	}
	if user.Username, err = requireText("username", req.Username, 3, 50); err != nil {
		return domain.User{}, err
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if user.HashedPassword, err = newPasswordHash(req.Password); err != nil {
		return domain.User{}, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, user.Email); err == nil {
		return domain.User{}, fmt.Errorf("%w: email already registered", store.ErrConflict)
	}
	if _, err := s.repo.GetUserByUsername(ctx, user.Username); err == nil {
		return domain.User{}, fmt.Errorf("%w: username already taken", store.ErrConflict)
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	return *created, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req domain.UserUpdateRequest) (domain.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.User{}, err
	}
	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	updated := *existing
	if req.Email != nil {
		if updated.Email, err = requireText("email", *req.Email, 1, 100); err != nil {
			return domain.User{}, err
		}
		if updated.Email, err = validEmail("email", updated.Email); err != nil {
			return domain.User{}, err
		}
	}
	if req.Username != nil {
		if updated.Username, err = requireText("username", *req.Username, 3, 50); err != nil {
			return domain.User{}, err
		}
	}
	if req.FullName != nil {
		updated.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Password != nil {
		if updated.HashedPassword, err = newPasswordHash(*req.Password); err != nil {
			return domain.User{}, err
		}
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		updated.IsAdmin = *req.IsAdmin
	}

	saved, err := s.repo.UpdateUser(ctx, updated)
	if err != nil {
		return domain.User{}, err
	}
	return *saved, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if actor, _ := ActorFromContext(ctx); actor.UserID == id {
		return invalid("cannot delete your own account")
	}
	return s.repo.DeleteUser(ctx, id)
}

// Authenticate checks a username or email against the stored bcrypt hash.
func (s *Service) Authenticate(ctx context.Context, login, password string) (domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return domain.User{}, errInvalidCredentials
	}

	user, err := s.repo.GetUserByUsername(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.repo.GetUserByEmail(ctx, login)
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, errInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if !verifyPassword(user.HashedPassword, password) {
		return domain.User{}, errInvalidCredentials
	}
	if !user.IsActive {
		return domain.User{}, fmt.Errorf("%w: Inactive user", store.ErrValidation)
	}
	return *user, nil
}

// EnsureAdmin creates an admin account for email when none exists yet. It
// is a no-op when either value is empty.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}
	admin, err := s.createUser(ctx, domain.UserCreateRequest{
		Email:    email,
		Username: username,
		FullName: "Administrator",
		Password: password,
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}
	logger.Log.Info().Int64("user_id", admin.ID).Str("email", admin.Email).Msg("bootstrap admin created")
	return nil
}

func newPasswordHash(password string) (string, error) {
	if strings.TrimSpace(password) == "" || len(password) < minPasswordLength {
		return "", invalid("password must be at least %d characters", minPasswordLength)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
