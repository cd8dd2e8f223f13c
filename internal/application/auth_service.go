package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/persistence"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies the bearer tokens that authenticate API
// requests.
type AuthService struct {
	users    persistence.UserRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users persistence.UserRepository, secret []byte, tokenTTL time.Duration, now func() time.Time) *AuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL, now: now}
}

// Login verifies the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (token string, err error) {
	logger := logging.FromContext(ctx)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login rejected",
				slog.String("email", email),
				slog.String("error_kind", ErrorKind(err)))
		}
	}()

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return "", fmt.Errorf("unknown email: %w", ErrUnauthorized)
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("wrong password: %w", ErrUnauthorized)
	}

	now := s.now()
	claims := Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses a bearer token and returns the principal it names.
func (s *AuthService) Verify(token string) (Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return Principal{}, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}

	return Principal{
		UserID:  claims.Subject,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}, nil
}
