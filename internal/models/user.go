// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и поля подписки,
// зеркалируемые из внешнего платёжного провайдера.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Статусы подписки пользователя, зеркалируемые из платёжного провайдера.
const (
	// SubscriptionStatusNone — подписка не оформлялась.
	SubscriptionStatusNone = "none"
	// SubscriptionStatusActive — подписка активна, пользователь премиум.
	SubscriptionStatusActive = "active"
	// SubscriptionStatusCanceled — подписка отменена.
	SubscriptionStatusCanceled = "canceled"
	// SubscriptionStatusPastDue — просрочен платёж по подписке.
	SubscriptionStatusPastDue = "past_due"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                    string    // Уникальный идентификатор пользователя
	Username               string    // Имя пользователя (уникальное)
	Email                  string    // Электронная почта (уникальная)
	PasswordHash           string    // Хэш пароля пользователя, не сериализуется в ответы
	IsPremium              bool      // Признак премиум-аккаунта
	SubscriptionStatus     string    // Статус подписки: none, active, canceled, past_due
	ExternalCustomerID     *string   // ID клиента у платёжного провайдера
	ExternalSubscriptionID *string   // ID подписки у платёжного провайдера
	CreatedAt              time.Time // Дата регистрации
}

// UserView — представление пользователя для JSON-ответов, без хэша пароля.
type UserView struct {
	UID                string `json:"uid"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	IsPremium          bool   `json:"is_premium"`
	SubscriptionStatus string `json:"subscription_status"`
}

// View возвращает представление пользователя без чувствительных полей.
func (u *User) View() UserView {
	return UserView{
		UID:                u.UID,
		Username:           u.Username,
		Email:              u.Email,
		IsPremium:          u.IsPremium,
		SubscriptionStatus: u.SubscriptionStatus,
	}
}
