package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Типы событий вебхуков провайдера, обрабатываемые системой.
const (
	EventCheckoutSessionCompleted    = "checkout.session.completed"
	EventCustomerSubscriptionUpdated = "customer.subscription.updated"
	EventCustomerSubscriptionDeleted = "customer.subscription.deleted"
)

// WebhookEvent представляет событие вебхука провайдера.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID           string            `json:"id"`           // ID объекта (сессии или подписки)
			Customer     string            `json:"customer"`     // ID клиента у провайдера
			Subscription string            `json:"subscription"` // ID подписки (для checkout-сессии)
			Status       string            `json:"status"`       // статус подписки
			Metadata     map[string]string `json:"metadata"`     // корреляционный id pending signup
		} `json:"object"`
	} `json:"data"`
}

// VerifySignature проверяет HMAC-SHA256 подпись вебхука над сырым телом запроса.
// Тело должно проверяться до любого JSON-парсинга, иначе подпись теряет смысл.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}
