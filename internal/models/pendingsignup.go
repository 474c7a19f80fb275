package models

// PendingSignup — временная запись регистрации, ожидающая подтверждения оплаты.
// Хранится во внешнем keyed-хранилище с TTL под корреляционным идентификатором,
// который checkout-сессия несёт в metadata. Пароль хэшируется до сохранения.
type PendingSignup struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
