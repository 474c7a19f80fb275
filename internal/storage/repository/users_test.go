package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-tracker/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("успешное создание пользователя", func(t *testing.T) {
		uid, err := storage.CreateUser(ctx, models.User{
			Username:           "alice",
			Email:              "alice@example.com",
			PasswordHash:       "hashedpassword",
			SubscriptionStatus: models.SubscriptionStatusNone,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, uid)

		got, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.False(t, got.IsPremium)
		assert.Equal(t, models.SubscriptionStatusNone, got.SubscriptionStatus)
		assert.Nil(t, got.ExternalCustomerID)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("дубликат username", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, models.User{
			Username:           "alice",
			Email:              "other@example.com",
			PasswordHash:       "hashedpassword",
			SubscriptionStatus: models.SubscriptionStatusNone,
		})
		require.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("дубликат email", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, models.User{
			Username:           "bob",
			Email:              "alice@example.com",
			PasswordHash:       "hashedpassword",
			SubscriptionStatus: models.SubscriptionStatusNone,
		})
		require.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("премиум-пользователь с привязкой к провайдеру", func(t *testing.T) {
		customerID := "cus_1"
		subscriptionID := "sub_1"
		uid, err := storage.CreateUser(ctx, models.User{
			Username:               "premium",
			Email:                  "premium@example.com",
			PasswordHash:           "hashedpassword",
			IsPremium:              true,
			SubscriptionStatus:     models.SubscriptionStatusActive,
			ExternalCustomerID:     &customerID,
			ExternalSubscriptionID: &subscriptionID,
		})
		require.NoError(t, err)

		got, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.True(t, got.IsPremium)
		require.NotNil(t, got.ExternalCustomerID)
		assert.Equal(t, "cus_1", *got.ExternalCustomerID)
		require.NotNil(t, got.ExternalSubscriptionID)
		assert.Equal(t, "sub_1", *got.ExternalSubscriptionID)
	})
}

func TestStorage_GetUserLookups(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "alice", "alice@example.com", "hashedpassword")
	premiumUID := factory.CreatePremiumUser(t, "premium", "premium@example.com", "hashedpassword", "cus_1", "sub_1")

	t.Run("поиск по username", func(t *testing.T) {
		got, err := storage.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
	})

	t.Run("поиск по email", func(t *testing.T) {
		got, err := storage.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
	})

	t.Run("поиск по customer id провайдера", func(t *testing.T) {
		got, err := storage.GetUserByCustomerID(ctx, "cus_1")
		require.NoError(t, err)
		assert.Equal(t, premiumUID, got.UID)
		assert.True(t, got.IsPremium)
	})

	t.Run("несуществующий username", func(t *testing.T) {
		_, err := storage.GetUserByUsername(ctx, "nobody")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("несуществующий email", func(t *testing.T) {
		_, err := storage.GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("несуществующий customer id", func(t *testing.T) {
		_, err := storage.GetUserByCustomerID(ctx, "cus_unknown")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_ListUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	users, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	factory.CreateUser(t, "alice", "alice@example.com", "hashedpassword")
	factory.CreateUser(t, "bob", "bob@example.com", "hashedpassword")

	users, err = storage.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestStorage_CountUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	count, err := storage.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	factory.CreateUser(t, "alice", "alice@example.com", "hashedpassword")
	factory.CreateUser(t, "bob", "bob@example.com", "hashedpassword")

	count, err = storage.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStorage_UpdateSubscriptionByCustomerID(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	ctx := context.Background()

	uid := factory.CreatePremiumUser(t, "premium", "premium@example.com", "hashedpassword", "cus_1", "sub_1")

	t.Run("понижение до past_due", func(t *testing.T) {
		rows, err := storage.UpdateSubscriptionByCustomerID(ctx, "cus_1", "past_due", false, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, rows)
		verification.VerifyUserSubscription(t, uid, "past_due", false)

		got, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Nil(t, got.ExternalSubscriptionID)
	})

	t.Run("возврат в active", func(t *testing.T) {
		subscriptionID := "sub_2"
		rows, err := storage.UpdateSubscriptionByCustomerID(ctx, "cus_1", "active", true, &subscriptionID)
		require.NoError(t, err)
		assert.Equal(t, 1, rows)
		verification.VerifyUserSubscription(t, uid, "active", true)
	})

	t.Run("неизвестный customer id", func(t *testing.T) {
		rows, err := storage.UpdateSubscriptionByCustomerID(ctx, "cus_unknown", "canceled", false, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, rows)
	})
}

func TestStorage_UpdateSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	ctx := context.Background()

	uid := factory.CreatePremiumUser(t, "premium", "premium@example.com", "hashedpassword", "cus_1", "sub_1")

	err := storage.UpdateSubscription(ctx, uid, models.SubscriptionStatusCanceled, false, nil)
	require.NoError(t, err)
	verification.VerifyUserSubscription(t, uid, models.SubscriptionStatusCanceled, false)
}
