// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/asset-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/password"
	"github.com/magabrotheeeer/asset-tracker/internal/models"
	"github.com/magabrotheeeer/asset-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня аутентификации.
var (
	// ErrInvalidCredentials — неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — токен не прошёл проверку или пользователь не найден.
	// Удалённый после выпуска токена пользователь неотличим от плохого токена.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUsernameTaken — имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
)

// QuotaExceededError возвращается, когда достигнут лимит бесплатного тарифа.
// Несёт значение лимита для человеко-читаемого сообщения клиенту.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("free tier limit of %d reached, consider a premium plan", e.Limit)
}

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername возвращает пользователя по имени или repository.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по UID или repository.ErrNotFound.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// CountUsers подсчитывает общее число пользователей.
	CountUsers(ctx context.Context) (int, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users         UserRepository
	jwtMaker      jwt.Maker
	freeUserLimit int
	devMode       bool // в dev-режиме лимит пользователей не применяется
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, freeUserLimit int, devMode bool) *AuthService {
	return &AuthService{
		users:         users,
		jwtMaker:      jwtMaker,
		freeUserLimit: freeUserLimit,
		devMode:       devMode,
	}
}

// Register создает нового пользователя с хэшированием пароля и выдаёт JWT.
// Перед созданием проверяется freemium-лимит общего числа пользователей.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (*models.User, string, error) {
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, "", err
	}
	if count >= s.freeUserLimit && !s.devMode {
		return nil, "", &QuotaExceededError{Limit: s.freeUserLimit}
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", err
	}
	user := models.User{
		Email:              email,
		Username:           username,
		PasswordHash:       hashed,
		IsPremium:          false,
		SubscriptionStatus: models.SubscriptionStatusNone,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		// Гонка двух одновременных регистраций добивает до уникального индекса.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", err
	}
	user.UID = uid

	token, err := s.jwtMaker.GenerateToken(user.Username, user.UID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (*models.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.UID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate проверяет JWT и возвращает соответствующего пользователя.
// Любой дефект токена и отсутствие пользователя дают одинаковый ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// ListUsers возвращает всех пользователей для открытого списка.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}
