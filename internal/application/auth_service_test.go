package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

type stubUserRepo struct {
	users map[string]persistence.User
}

func (r *stubUserRepo) CreateUser(_ context.Context, user persistence.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}
func (r *stubUserRepo) UpdateUser(_ context.Context, user persistence.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}
func (r *stubUserRepo) GetUser(_ context.Context, id string) (persistence.User, error) {
	user, ok := r.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}
func (r *stubUserRepo) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}
func (r *stubUserRepo) ListUsers(_ context.Context) ([]persistence.User, error) {
	var users []persistence.User
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}
func (r *stubUserRepo) DeleteUser(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("open sesame")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := VerifyPassword("open sesame", hash)
	if err != nil || !ok {
		t.Fatalf("correct password rejected: ok=%v err=%v", ok, err)
	}
	ok, err = VerifyPassword("close sesame", hash)
	if err != nil || ok {
		t.Fatalf("wrong password accepted: ok=%v err=%v", ok, err)
	}
	if _, err := VerifyPassword("whatever", "not-a-hash"); err == nil {
		t.Fatal("malformed hash must be rejected")
	}
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubUserRepo{users: map[string]persistence.User{
		"user-1": {ID: "user-1", Email: "admin@example.edu", PasswordHash: hash, IsAdmin: true},
	}}

	clock := time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
	service := NewAuthService(repo, []byte("test-secret"), time.Hour, func() time.Time { return clock })

	t.Run("valid credentials round-trip", func(t *testing.T) {
		token, err := service.Login(context.Background(), "admin@example.edu", "correct horse")
		if err != nil {
			t.Fatalf("login: %v", err)
		}

		principal, err := service.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if principal.UserID != "user-1" || !principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(context.Background(), "admin@example.edu", "incorrect horse")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(context.Background(), "ghost@example.edu", "whatever")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := service.Login(context.Background(), "admin@example.edu", "correct horse")
		if err != nil {
			t.Fatalf("login: %v", err)
		}

		late := NewAuthService(repo, []byte("test-secret"), time.Hour,
			func() time.Time { return clock.Add(2 * time.Hour) })
		if _, err := late.Verify(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for an expired token, got %v", err)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		other := NewAuthService(repo, []byte("another-secret"), time.Hour, func() time.Time { return clock })
		token, err := other.Login(context.Background(), "admin@example.edu", "correct horse")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if _, err := service.Verify(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for a foreign signature, got %v", err)
		}
	})
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()

	newService := func() (*UserService, *stubUserRepo) {
		repo := &stubUserRepo{users: map[string]persistence.User{}}
		sequence := 0
		return NewUserService(repo,
			func() string { sequence++; return "user-new" },
			func() time.Time { return time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC) },
		), repo
	}
	admin := Principal{UserID: "admin", IsAdmin: true}

	t.Run("admin registers an account", func(t *testing.T) {
		t.Parallel()
		service, repo := newService()

		user, err := service.CreateUser(context.Background(), admin, UserParams{
			Email: "Staff@Example.edu", DisplayName: "Staff", Password: "long enough",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if user.Email != "staff@example.edu" {
			t.Fatalf("email not normalized: %q", user.Email)
		}
		if user.PasswordHash != "" {
			t.Fatal("password hash must not leave the service")
		}
		stored := repo.users["user-new"]
		if ok, _ := VerifyPassword("long enough", stored.PasswordHash); !ok {
			t.Fatal("stored hash does not verify")
		}
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		t.Parallel()
		service, _ := newService()
		_, err := service.CreateUser(context.Background(), Principal{UserID: "user-9"}, UserParams{
			Email: "x@example.edu", DisplayName: "X", Password: "long enough",
		})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("short password is a field error", func(t *testing.T) {
		t.Parallel()
		service, _ := newService()
		_, err := service.CreateUser(context.Background(), admin, UserParams{
			Email: "x@example.edu", DisplayName: "X", Password: "short",
		})
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := validation.FieldErrors["password"]; !ok {
			t.Fatalf("missing password error: %v", validation.FieldErrors)
		}
	})
}
