package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-tracker/internal/models"
	services "github.com/magabrotheeeer/asset-tracker/internal/services/asset"
	"github.com/magabrotheeeer/asset-tracker/internal/storage/repository"
)

// Мок для AssetRepository
type AssetRepoMock struct {
	mock.Mock
}

func (m *AssetRepoMock) CreateAsset(ctx context.Context, asset models.Asset) (*models.Asset, error) {
	args := m.Called(ctx, asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *AssetRepoMock) GetAsset(ctx context.Context, id int, userUID string) (*models.Asset, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *AssetRepoMock) ListAssetsByOwner(ctx context.Context, userUID string) ([]*models.Asset, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Asset), args.Error(1)
}

func (m *AssetRepoMock) UpdateAsset(ctx context.Context, asset models.Asset) (int, error) {
	args := m.Called(ctx, asset)
	return args.Int(0), args.Error(1)
}

func (m *AssetRepoMock) RemoveAsset(ctx context.Context, id int, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *AssetRepoMock) CountAssetsByOwner(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

// Мок для Cache
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func freeUser() *models.User {
	return &models.User{UID: "user-uid", Username: "testuser", IsPremium: false}
}

func premiumUser() *models.User {
	return &models.User{UID: "user-uid", Username: "testuser", IsPremium: true}
}

func TestAssetService_Create_FreemiumGate(t *testing.T) {
	req := models.DummyAsset{Name: "Laptop", SerialNumber: "SN-001"}
	created := &models.Asset{ID: 1, Name: "Laptop", SerialNumber: "SN-001", UserUID: "user-uid"}

	t.Run("free user under limit", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		repo.On("CountAssetsByOwner", mock.Anything, "user-uid").Return(9, nil).Once()
		repo.On("CreateAsset", mock.Anything, mock.Anything).Return(created, nil).Once()
		cacheMock.On("Set", "asset:user-uid:1", created, time.Hour).Return(nil).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		got, err := svc.Create(context.Background(), freeUser(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("free user at limit", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		repo.On("CountAssetsByOwner", mock.Anything, "user-uid").Return(10, nil).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		_, err := svc.Create(context.Background(), freeUser(), req)

		var quotaErr *services.QuotaExceededError
		require.ErrorAs(t, err, &quotaErr)
		assert.Equal(t, 10, quotaErr.Limit)
		repo.AssertNotCalled(t, "CreateAsset", mock.Anything, mock.Anything)
	})

	t.Run("premium user bypasses counting", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		repo.On("CreateAsset", mock.Anything, mock.Anything).Return(created, nil).Once()
		cacheMock.On("Set", "asset:user-uid:1", created, time.Hour).Return(nil).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		got, err := svc.Create(context.Background(), premiumUser(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ID)
		repo.AssertNotCalled(t, "CountAssetsByOwner", mock.Anything, mock.Anything)
	})

	t.Run("duplicate serial number", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		repo.On("CountAssetsByOwner", mock.Anything, "user-uid").Return(0, nil).Once()
		repo.On("CreateAsset", mock.Anything, mock.Anything).
			Return(nil, repository.ErrDuplicate).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		_, err := svc.Create(context.Background(), freeUser(), req)
		assert.ErrorIs(t, err, services.ErrSerialNumberTaken)
	})
}

func TestAssetService_Read(t *testing.T) {
	stored := &models.Asset{ID: 7, Name: "Monitor", SerialNumber: "SN-777", UserUID: "user-uid"}

	t.Run("cache miss falls back to repository", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", "asset:user-uid:7", mock.Anything).Return(false, nil).Once()
		repo.On("GetAsset", mock.Anything, 7, "user-uid").Return(stored, nil).Once()
		cacheMock.On("Set", "asset:user-uid:7", stored, time.Hour).Return(nil).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		got, err := svc.Read(context.Background(), 7, "user-uid")
		require.NoError(t, err)
		assert.Equal(t, "Monitor", got.Name)
		repo.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Get", "asset:user-uid:7", mock.Anything).Return(false, nil).Once()
		repo.On("GetAsset", mock.Anything, 7, "user-uid").
			Return(nil, repository.ErrNotFound).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		_, err := svc.Read(context.Background(), 7, "user-uid")
		assert.ErrorIs(t, err, services.ErrAssetNotFound)
	})

	t.Run("owner scoped cache key", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		// чужой пользователь не попадает в ключ кеша владельца
		cacheMock.On("Get", "asset:other-uid:7", mock.Anything).Return(false, nil).Once()
		repo.On("GetAsset", mock.Anything, 7, "other-uid").
			Return(nil, repository.ErrNotFound).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		_, err := svc.Read(context.Background(), 7, "other-uid")
		assert.ErrorIs(t, err, services.ErrAssetNotFound)
		cacheMock.AssertExpectations(t)
	})
}

func TestAssetService_Update_PointerFieldSemantics(t *testing.T) {
	responsible := "Alice"
	existing := &models.Asset{
		ID: 3, Name: "Printer", SerialNumber: "SN-003",
		Responsible: &responsible, UserUID: "user-uid",
	}

	t.Run("nil field keeps current value, present field applies", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		newName := "Printer v2"
		emptyResponsible := ""

		repo.On("GetAsset", mock.Anything, 3, "user-uid").Return(existing, nil).Once()
		repo.On("UpdateAsset", mock.Anything, mock.MatchedBy(func(a models.Asset) bool {
			return a.Name == "Printer v2" &&
				a.SerialNumber == "SN-003" &&
				a.Responsible != nil && *a.Responsible == ""
		})).Return(1, nil).Once()
		cacheMock.On("Set", "asset:user-uid:3", mock.Anything, time.Hour).Return(nil).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		got, err := svc.Update(context.Background(), 3, "user-uid", models.UpdateAsset{
			Name:        &newName,
			Responsible: &emptyResponsible,
		})
		require.NoError(t, err)
		assert.Equal(t, "Printer v2", got.Name)
		assert.Equal(t, "SN-003", got.SerialNumber)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		repo.On("GetAsset", mock.Anything, 3, "user-uid").
			Return(nil, repository.ErrNotFound).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		_, err := svc.Update(context.Background(), 3, "user-uid", models.UpdateAsset{})
		assert.ErrorIs(t, err, services.ErrAssetNotFound)
	})

	t.Run("duplicate serial number", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		takenSerial := "SN-TAKEN"
		repo.On("GetAsset", mock.Anything, 3, "user-uid").Return(existing, nil).Once()
		repo.On("UpdateAsset", mock.Anything, mock.Anything).
			Return(0, repository.ErrDuplicate).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		_, err := svc.Update(context.Background(), 3, "user-uid", models.UpdateAsset{
			SerialNumber: &takenSerial,
		})
		assert.ErrorIs(t, err, services.ErrSerialNumberTaken)
	})
}

func TestAssetService_Remove(t *testing.T) {
	t.Run("success invalidates cache", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Invalidate", "asset:user-uid:5").Return(nil).Once()
		repo.On("RemoveAsset", mock.Anything, 5, "user-uid").Return(1, nil).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		err := svc.Remove(context.Background(), 5, "user-uid")
		require.NoError(t, err)
		cacheMock.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(AssetRepoMock)
		cacheMock := new(CacheMock)
		cacheMock.On("Invalidate", "asset:user-uid:5").Return(nil).Once()
		repo.On("RemoveAsset", mock.Anything, 5, "user-uid").Return(0, nil).Once()

		svc := services.NewAssetService(repo, cacheMock, newNoopLogger(), 10)

		err := svc.Remove(context.Background(), 5, "user-uid")
		assert.ErrorIs(t, err, services.ErrAssetNotFound)
	})
}
