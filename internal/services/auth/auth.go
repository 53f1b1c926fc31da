// Package services содержит регистрацию, вход и проверку токенов пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/lib/password"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/models"
)

// UserRepository описывает доступ к пользователям в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenMaker выпускает и проверяет токены доступа.
type TokenMaker interface {
	GenerateToken(userID uuid.UUID) (string, error)
	ParseToken(token string) (uuid.UUID, error)
}

// Cache описывает кэш профилей.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AuthService отвечает за регистрацию, вход и профиль пользователя.
type AuthService struct {
	users      UserRepository
	tokens     TokenMaker
	cache      Cache
	profileTTL time.Duration
	log        *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, tokens TokenMaker, cache Cache, profileTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		cache:      cache,
		profileTTL: profileTTL,
		log:        log,
	}
}

// Register создаёт пользователя и возвращает токен доступа. Username хранится
// в нижнем регистре, а в исходном написании становится отображаемым именем.
func (s *AuthService) Register(ctx context.Context, username, email, rawPassword, ip string) (string, error) {
	const op = "services.auth.Register"

	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return "", models.Conflict("Email already registered.")
	} else if !errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.users.UserByUsername(ctx, username); err == nil {
		return "", models.Conflict("Username already taken.")
	} else if !errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.Validate(rawPassword); err != nil {
		return "", models.Validation("%s", err.Error())
	}
	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if ip == "" {
		ip = models.DefaultIPAddress
	}
	id, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		Username:     strings.ToLower(username),
		Name:         username,
		PasswordHash: hashed,
		IPAddress:    ip,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("op", op), slog.String("user_id", id.String()))

	token, err := s.tokens.GenerateToken(id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Login проверяет пароль и возвращает токен доступа.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return "", models.Unauthorized("User not found. Check provided data again or SignUp if new.")
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.log.Warn("stored password hash is unusable", slog.String("op", op),
				slog.String("user_id", user.ID.String()), sl.Err(err))
		}
		return "", models.Unauthorized("Invalid password.")
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Profile возвращает публичный профиль пользователя. Пользователи не меняются
// после регистрации, поэтому профиль кэшируется без инвалидации.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "services.auth.Profile"
	cacheKey := "profile:" + userID.String()

	var cached models.Profile
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read profile from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile := user.Profile()
	if err := s.cache.Set(ctx, cacheKey, profile, s.profileTTL); err != nil {
		s.log.Warn("failed to cache profile", slog.String("key", cacheKey), sl.Err(err))
	}
	return &profile, nil
}

// ValidateToken проверяет токен и возвращает ID пользователя.
func (s *AuthService) ValidateToken(token string) (uuid.UUID, error) {
	return s.tokens.ParseToken(token)
}
