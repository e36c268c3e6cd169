package razorpay

// WebhookEvent is the envelope delivered for payment.* events.
type WebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event" validate:"required"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment *PaymentWrapper `json:"payment"`
}

type PaymentWrapper struct {
	Entity *Payment `json:"entity"`
}

// Payment is the payment entity embedded in a webhook payload.
type Payment struct {
	ID             string `json:"id"`
	Entity         string `json:"entity"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	OrderID        string `json:"order_id"`
	InvoiceID      string `json:"invoice_id"`
	SubscriptionID string `json:"subscription_id"`
	Method         string `json:"method"`
	Email          string `json:"email"`
	Contact        string `json:"contact"`
	Notes          Notes  `json:"notes"`
	CreatedAt      int64  `json:"created_at"`
}

// PaymentEntity returns the embedded payment, or nil when the payload carries none.
func (e *WebhookEvent) PaymentEntity() *Payment {
	if e == nil || e.Payload.Payment == nil {
		return nil
	}
	return e.Payload.Payment.Entity
}
