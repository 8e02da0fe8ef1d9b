package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/naija-emoji/apiserver/internal/store"
	"github.com/naija-emoji/apiserver/types"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	tokenBytes      = 32

	fieldUsername = "username"
	fieldPassword = "password"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByToken(ctx context.Context, token string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetToken(ctx context.Context, id int, token string, expires int64) error
	ClearToken(ctx context.Context, id int, token string) error
}

// Session is the token issued on a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService registers users and manages their bearer tokens.
type AuthService struct {
	repo     UserRepository
	tokenTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
	newToken func() (string, error)
}

func NewAuthService(repo UserRepository, tokenTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		repo:     repo,
		tokenTTL: tokenTTL,
		logger:   logger.With(slog.String("component", "auth")),
		now:      time.Now,
		newToken: GenerateToken,
	}
}

// Register creates a user from the submitted username and password.
// Usernames are unique.
func (s *AuthService) Register(ctx context.Context, input Fields) error {
	username, password, err := credentials(input)
	if err != nil {
		return err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check user: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username: username,
		Password: HashPassword(password),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID), slog.String("username", username))
	return nil
}

// Login verifies the credentials and issues a new token, replacing any
// token the user held before.
func (s *AuthService) Login(ctx context.Context, input Fields) (Session, error) {
	username, password, err := credentials(input)
	if err != nil {
		return Session{}, err
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(HashPassword(password))) != 1 {
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.newToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}
	expiresAt := s.now().Add(s.tokenTTL).Truncate(time.Second)

	if err := s.repo.SetToken(ctx, user.ID, token, expiresAt.Unix()); err != nil {
		return Session{}, fmt.Errorf("store token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int("user_id", user.ID))
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

// Logout clears the session identified by token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}

	user, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("load user: %w", err)
	}

	if err := s.repo.ClearToken(ctx, user.ID, token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("clear token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.Int("user_id", user.ID))
	return nil
}

// Authenticate resolves token to its user. An expired token is cleared
// before ErrExpiredToken is returned.
func (s *AuthService) Authenticate(ctx context.Context, token string) (types.User, error) {
	if token == "" {
		return types.User{}, ErrNoToken
	}

	user, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidToken
		}
		return types.User{}, fmt.Errorf("load user: %w", err)
	}

	if !user.Expires.Valid || s.now().Unix() >= user.Expires.Int64 {
		if err := s.repo.ClearToken(ctx, user.ID, token); err != nil && !errors.Is(err, store.ErrNotFound) {
			return types.User{}, fmt.Errorf("clear expired token: %w", err)
		}
		s.logger.InfoContext(ctx, "expired token cleared", slog.Int("user_id", user.ID))
		return types.User{}, ErrExpiredToken
	}

	return user, nil
}

// HashPassword returns the hex encoded SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// GenerateToken returns 32 bytes from crypto/rand, hex encoded.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func credentials(input Fields) (string, string, error) {
	if err := input.requirePresent(fieldUsername, fieldPassword); err != nil {
		return "", "", err
	}
	if err := input.rejectEmpty(fieldUsername, fieldPassword); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(input[fieldUsername]), input[fieldPassword], nil
}
