// Package services содержит бизнес-логику для управления активами:
// freemium-лимит на создание, CRUD с областью видимости владельца и кеширование чтений.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/asset-tracker/internal/models"
	"github.com/magabrotheeeer/asset-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня работы с активами.
var (
	// ErrAssetNotFound — актив не существует или принадлежит другому пользователю.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrSerialNumberTaken — серийный номер уже занят (глобально).
	ErrSerialNumberTaken = errors.New("serial number already exists")
)

// QuotaExceededError возвращается, когда бесплатный пользователь
// достиг лимита активов. Несёт значение лимита для сообщения клиенту.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("free tier limit of %d assets reached, consider a premium plan", e.Limit)
}

// AssetRepository определяет методы для работы с активами в хранилище.
type AssetRepository interface {
	// CreateAsset добавляет новый актив и возвращает созданную запись.
	CreateAsset(ctx context.Context, asset models.Asset) (*models.Asset, error)
	// GetAsset возвращает актив по (id, владелец) или repository.ErrNotFound.
	GetAsset(ctx context.Context, id int, userUID string) (*models.Asset, error)
	// ListAssetsByOwner возвращает активы пользователя, новые первыми.
	ListAssetsByOwner(ctx context.Context, userUID string) ([]*models.Asset, error)
	// UpdateAsset обновляет актив и возвращает количество изменённых строк.
	UpdateAsset(ctx context.Context, asset models.Asset) (int, error)
	// RemoveAsset удаляет актив и возвращает количество удалённых строк.
	RemoveAsset(ctx context.Context, id int, userUID string) (int, error)
	// CountAssetsByOwner подсчитывает активы пользователя.
	CountAssetsByOwner(ctx context.Context, userUID string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// AssetService реализует бизнес-логику работы с активами, включая кеширование.
type AssetService struct {
	repo           AssetRepository
	cache          Cache
	log            *slog.Logger
	freeAssetLimit int
}

// NewAssetService создает новый экземпляр AssetService.
func NewAssetService(repo AssetRepository, cache Cache, log *slog.Logger, freeAssetLimit int) *AssetService {
	return &AssetService{
		repo:           repo,
		cache:          cache,
		log:            log,
		freeAssetLimit: freeAssetLimit,
	}
}

// Ключ кеша включает владельца: чтение по чужому id не должно
// находить запись даже в кеше.
func cacheKey(userUID string, id int) string {
	return fmt.Sprintf("asset:%s:%d", userUID, id)
}

// Create создает новый актив для пользователя, предварительно применяя
// freemium-лимит: премиум-аккаунты проходят без подсчёта строк.
// Подсчёт и вставка не атомарны: параллельные запросы могут превысить
// лимит на число запросов в полёте.
func (s *AssetService) Create(ctx context.Context, user *models.User, req models.DummyAsset) (*models.Asset, error) {
	if !user.IsPremium {
		count, err := s.repo.CountAssetsByOwner(ctx, user.UID)
		if err != nil {
			return nil, err
		}
		if count >= s.freeAssetLimit {
			return nil, &QuotaExceededError{Limit: s.freeAssetLimit}
		}
	}

	asset := models.Asset{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Responsible:  req.Responsible,
		Condition:    req.Condition,
		Notes:        req.Notes,
		UserUID:      user.UID,
	}
	created, err := s.repo.CreateAsset(ctx, asset)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSerialNumberTaken
		}
		return nil, err
	}

	s.log.Info("created new asset", slog.Int("id", created.ID))

	key := cacheKey(user.UID, created.ID)
	if err := s.cache.Set(key, created, time.Hour); err != nil {
		s.log.Warn("failed to cache asset", slog.String("key", key), slog.Any("err", err))
	}

	return created, nil
}

// Read возвращает актив по ID в рамках владельца, используя кеш или репозиторий.
func (s *AssetService) Read(ctx context.Context, id int, userUID string) (*models.Asset, error) {
	var result *models.Asset
	key := cacheKey(userUID, id)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetAsset(ctx, id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(key, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// List возвращает все активы пользователя, новые первыми.
func (s *AssetService) List(ctx context.Context, userUID string) ([]*models.Asset, error) {
	return s.repo.ListAssetsByOwner(ctx, userUID)
}

// Update обновляет актив по ID в рамках владельца и обновляет кеш.
// Поле запроса со значением nil оставляет текущее значение,
// присутствующее поле применяется даже если оно пустое.
func (s *AssetService) Update(ctx context.Context, id int, userUID string, req models.UpdateAsset) (*models.Asset, error) {
	existing, err := s.repo.GetAsset(ctx, id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.SerialNumber != nil {
		existing.SerialNumber = *req.SerialNumber
	}
	if req.Responsible != nil {
		existing.Responsible = req.Responsible
	}
	if req.Condition != nil {
		existing.Condition = req.Condition
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}

	rows, err := s.repo.UpdateAsset(ctx, *existing)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSerialNumberTaken
		}
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAssetNotFound
	}
	s.log.Info("updated asset in storage", slog.Int("id", id))

	key := cacheKey(userUID, id)
	if err := s.cache.Set(key, existing, time.Hour); err != nil {
		s.log.Warn("failed to cache asset", slog.String("key", key), slog.Any("err", err))
	}
	return existing, nil
}

// Remove удаляет актив по ID в рамках владельца и инвалидирует кеш.
func (s *AssetService) Remove(ctx context.Context, id int, userUID string) error {
	key := cacheKey(userUID, id)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), slog.Any("err", err))
	}

	rows, err := s.repo.RemoveAsset(ctx, id, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAssetNotFound
	}
	return nil
}
