package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/pkg/enums"
)

// PaymentRecord tracks one gateway charge and the storefront order created for it.
type PaymentRecord struct {
	ID                    uuid.UUID           `gorm:"type:uuid;primaryKey"`
	GatewayPaymentID      string              `gorm:"column:gateway_payment_id;not null;uniqueIndex:uq_payment_records_gateway_payment"`
	GatewaySubscriptionID string              `gorm:"column:gateway_subscription_id;not null;index"`
	ShopifyOrderID        *string             `gorm:"column:shopify_order_id"`
	AmountMinor           int64               `gorm:"column:amount_minor;not null"`
	Currency              string              `gorm:"column:currency;not null"`
	Status                enums.PaymentStatus `gorm:"column:status;not null"`
	PaidAt                *time.Time          `gorm:"column:paid_at"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentRecord) TableName() string { return "payment_records" }

func (p *PaymentRecord) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Reconciled reports whether a storefront order is attached.
func (p *PaymentRecord) Reconciled() bool {
	return p != nil && p.ShopifyOrderID != nil && *p.ShopifyOrderID != ""
}
