// Package services реализует согласование состояния подписки с платёжным
// провайдером: создание checkout-сессий с отложенной регистрацией,
// материализацию пользователя после оплаты, зеркалирование статусов
// подписки из вебхуков и явную отмену.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/asset-tracker/internal/lib/password"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/models"
	"github.com/magabrotheeeer/asset-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/asset-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня биллинга.
var (
	// ErrNoSubscription — у пользователя нет сохранённой подписки.
	ErrNoSubscription = errors.New("no active subscription")
	// ErrCustomerNotFound — событие вебхука ссылается на неизвестного клиента.
	// Событие могло обогнать создание пользователя: провайдер должен повторить доставку.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrUpstream — вызов платёжного провайдера завершился ошибкой.
	ErrUpstream = errors.New("payment provider call failed")
)

// Ключи маршрутизации публикуемых уведомлений.
const (
	RoutingKeyPremiumActivated     = "billing.premium_activated"
	RoutingKeySubscriptionUpdated  = "billing.subscription_updated"
	RoutingKeySubscriptionCanceled = "billing.subscription_canceled"
)

// UserRepository описывает контракт работы с пользователями для биллинга.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByCustomerID возвращает пользователя по ID клиента провайдера или repository.ErrNotFound.
	GetUserByCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// UpdateSubscriptionByCustomerID обновляет поля подписки по ID клиента провайдера.
	UpdateSubscriptionByCustomerID(ctx context.Context, customerID, status string, isPremium bool, subscriptionID *string) (int, error)
	// UpdateSubscription обновляет поля подписки по UID пользователя.
	UpdateSubscription(ctx context.Context, userUID, status string, isPremium bool, subscriptionID *string) error
}

// PendingStore — keyed-хранилище отложенных регистраций с TTL.
type PendingStore interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ProviderClient описывает вызовы платёжного провайдера.
type ProviderClient interface {
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CreateSessionRequest) (*paymentprovider.CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
}

// EventPublisher публикует уведомления о событиях подписки.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// SubscriptionEvent — сообщение, публикуемое в очередь уведомлений.
type SubscriptionEvent struct {
	UserUID  string `json:"user_uid,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Status   string `json:"status"`
}

// Options — настройки биллинга, приходящие из конфигурации.
type Options struct {
	PriceID          string        // тарифный план у провайдера
	FrontendOrigin   string        // база для success/cancel URL
	PendingSignupTTL time.Duration // срок жизни отложенной регистрации
}

// BillingService согласует локальное состояние подписки с провайдером.
type BillingService struct {
	users     UserRepository
	pending   PendingStore
	provider  ProviderClient
	publisher EventPublisher
	log       *slog.Logger
	opts      Options
}

// NewBillingService создает новый экземпляр BillingService.
func NewBillingService(users UserRepository, pending PendingStore, provider ProviderClient,
	publisher EventPublisher, log *slog.Logger, opts Options) *BillingService {
	return &BillingService{
		users:     users,
		pending:   pending,
		provider:  provider,
		publisher: publisher,
		log:       log,
		opts:      opts,
	}
}

func pendingKey(id string) string {
	return "pending_signup:" + id
}

// CreateCheckoutSession хэширует пароль, сохраняет отложенную регистрацию
// под корреляционным идентификатором и создаёт hosted checkout-сессию.
// Реальный пользователь появится только после события об успешной оплате.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, username, email, rawPassword string) (*paymentprovider.CheckoutSession, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}

	pendingID := uuid.New().String()
	signup := models.PendingSignup{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.pending.Set(pendingKey(pendingID), signup, s.opts.PendingSignupTTL); err != nil {
		return nil, err
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CreateSessionRequest{
		Mode:          "subscription",
		PriceID:       s.opts.PriceID,
		CustomerEmail: email,
		SuccessURL:    s.opts.FrontendOrigin + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.opts.FrontendOrigin + "/canceled",
		Metadata: map[string]string{
			"pending_signup_id": pendingID,
		},
	})
	if err != nil {
		if derr := s.pending.Invalidate(pendingKey(pendingID)); derr != nil {
			s.log.Warn("failed to drop pending signup", slog.String("id", pendingID), sl.Err(derr))
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	s.log.Info("checkout session created",
		slog.String("session_id", session.ID), slog.String("pending_signup_id", pendingID))
	return session, nil
}

// CompleteCheckout материализует отложенную регистрацию в реального
// премиум-пользователя после успешной оплаты.
//
// Доставка как минимум однажды: отсутствующая или уже использованная
// запись, равно как и уже существующий пользователь — не ошибки.
func (s *BillingService) CompleteCheckout(ctx context.Context, pendingID, customerID, subscriptionID string) error {
	var signup models.PendingSignup
	found, err := s.pending.Get(pendingKey(pendingID), &signup)
	if err != nil {
		return err
	}
	if !found {
		s.log.Info("pending signup not found, skipping", slog.String("pending_signup_id", pendingID))
		return nil
	}

	user := models.User{
		Username:               signup.Username,
		Email:                  signup.Email,
		PasswordHash:           signup.PasswordHash,
		IsPremium:              true,
		SubscriptionStatus:     models.SubscriptionStatusActive,
		ExternalCustomerID:     &customerID,
		ExternalSubscriptionID: &subscriptionID,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Info("user already exists, treating as delivered",
				slog.String("username", signup.Username))
		} else {
			return err
		}
	} else {
		s.log.Info("premium user created", slog.String("uid", uid),
			slog.String("username", signup.Username))
		s.publish(RoutingKeyPremiumActivated, SubscriptionEvent{
			UserUID:  uid,
			Username: signup.Username,
			Email:    signup.Email,
			Status:   models.SubscriptionStatusActive,
		})
	}

	if err := s.pending.Invalidate(pendingKey(pendingID)); err != nil {
		s.log.Warn("failed to erase pending signup", slog.String("id", pendingID), sl.Err(err))
	}
	return nil
}

// ApplySubscriptionUpdate зеркалирует статус подписки из события провайдера.
// Премиум-флаг истинен только при статусе active.
func (s *BillingService) ApplySubscriptionUpdate(ctx context.Context, customerID, subscriptionID, status string) error {
	user, err := s.users.GetUserByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	isPremium := status == models.SubscriptionStatusActive
	rows, err := s.users.UpdateSubscriptionByCustomerID(ctx, customerID, status, isPremium, &subscriptionID)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Пользователь удалён между чтением и обновлением.
		return ErrCustomerNotFound
	}

	s.log.Info("subscription state mirrored", slog.String("customer_id", customerID),
		slog.String("username", user.Username),
		slog.String("status", status), slog.Bool("is_premium", isPremium))
	s.publish(RoutingKeySubscriptionUpdated, SubscriptionEvent{
		UserUID:  user.UID,
		Username: user.Username,
		Email:    user.Email,
		Status:   status,
	})
	return nil
}

// Cancel отменяет подписку: сначала у провайдера, затем локально.
// Если провайдер отклонил отмену, локальное состояние не меняется.
func (s *BillingService) Cancel(ctx context.Context, user *models.User) (*paymentprovider.Subscription, error) {
	if user.ExternalSubscriptionID == nil {
		return nil, ErrNoSubscription
	}

	sub, err := s.provider.CancelSubscription(ctx, *user.ExternalSubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if err := s.cancelLocally(ctx, user); err != nil {
		return nil, err
	}
	return sub, nil
}

// Status возвращает данные подписки пользователя от провайдера.
// Исчезнувшая у провайдера подписка трактуется как неявная отмена:
// локальное состояние приводится в соответствие, ошибкой это не считается.
func (s *BillingService) Status(ctx context.Context, user *models.User) (*paymentprovider.Subscription, error) {
	if user.ExternalSubscriptionID == nil {
		return nil, nil
	}

	sub, err := s.provider.GetSubscription(ctx, *user.ExternalSubscriptionID)
	if err != nil {
		if errors.Is(err, paymentprovider.ErrSubscriptionNotFound) {
			if cerr := s.cancelLocally(ctx, user); cerr != nil {
				return nil, cerr
			}
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return sub, nil
}

func (s *BillingService) cancelLocally(ctx context.Context, user *models.User) error {
	if err := s.users.UpdateSubscription(ctx, user.UID,
		models.SubscriptionStatusCanceled, false, nil); err != nil {
		return err
	}
	user.IsPremium = false
	user.SubscriptionStatus = models.SubscriptionStatusCanceled
	user.ExternalSubscriptionID = nil

	s.log.Info("subscription canceled locally", slog.String("uid", user.UID))
	s.publish(RoutingKeySubscriptionCanceled, SubscriptionEvent{
		UserUID:  user.UID,
		Username: user.Username,
		Email:    user.Email,
		Status:   models.SubscriptionStatusCanceled,
	})
	return nil
}

// Публикация уведомлений не должна ломать согласование состояния.
func (s *BillingService) publish(routingKey string, event SubscriptionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, event); err != nil {
		s.log.Warn("failed to publish notification", slog.String("routing_key", routingKey), sl.Err(err))
	}
}
