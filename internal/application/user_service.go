package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/persistence"
)

// UserParams carries the input for registering a staff account.
type UserParams struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// UserService administers staff accounts.
type UserService struct {
	users       persistence.UserRepository
	idGenerator func() string
	now         func() time.Time
}

func NewUserService(users persistence.UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return &UserService{users: users, idGenerator: idGenerator, now: now}
}

// CreateUser registers a staff account. Only administrators may do so.
func (s *UserService) CreateUser(ctx context.Context, principal Principal, params UserParams) (user persistence.User, err error) {
	defer func() {
		if err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "create user failed",
				slog.String("error_kind", ErrorKind(err)),
				slog.String("error", err.Error()))
		}
	}()

	if !principal.IsAdmin {
		return persistence.User{}, fmt.Errorf("user management: %w", ErrForbidden)
	}

	validation := NewValidationError()
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		validation.Add("email", "must be a valid address")
	}
	if params.DisplayName == "" {
		validation.Add("display_name", "is required")
	}
	if len(params.Password) < 8 {
		validation.Add("password", "must be at least 8 characters")
	}
	if err := validation.ErrOrNil(); err != nil {
		return persistence.User{}, err
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return persistence.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user = persistence.User{
		ID:           s.idGenerator(),
		Email:        email,
		DisplayName:  params.DisplayName,
		PasswordHash: hash,
		IsAdmin:      params.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.User{}, fmt.Errorf("email %s: %w", email, ErrAlreadyExists)
		}
		return persistence.User{}, fmt.Errorf("store user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// ListUsers returns all staff accounts with password hashes blanked.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]persistence.User, error) {
	if !principal.IsAdmin {
		return nil, fmt.Errorf("user management: %w", ErrForbidden)
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
