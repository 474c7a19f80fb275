package paymentprovider

import "time"

// CreateSessionRequest представляет запрос на создание hosted checkout-сессии.
type CreateSessionRequest struct {
	Mode          string            `json:"mode"`           // всегда "subscription"
	PriceID       string            `json:"price_id"`       // тарифный план у провайдера
	CustomerEmail string            `json:"customer_email"` // email будущего клиента
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"` // корреляционный id pending signup
}

// CheckoutSession представляет ответ провайдера на создание checkout-сессии.
type CheckoutSession struct {
	ID  string `json:"id"`  // ID сессии у провайдера
	URL string `json:"url"` // адрес hosted checkout страницы
}

// Subscription представляет подписку у провайдера.
type Subscription struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"` // active, canceled, past_due
	CustomerID         string     `json:"customer"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`
}
