package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionMapping links a storefront recurring order to a gateway subscription
// and carries the commercial snapshot replayed on every recurring charge.
type SubscriptionMapping struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	GatewaySubscriptionID string          `gorm:"column:gateway_subscription_id;not null;uniqueIndex:uq_subscription_mappings_gateway_subscription"`
	GatewayCustomerID     string          `gorm:"column:gateway_customer_id;not null"`
	GatewayPlanID         string          `gorm:"column:gateway_plan_id;not null"`
	Shop                  string          `gorm:"column:shop;not null;uniqueIndex:uq_subscription_mappings_shop_order,priority:1"`
	ShopifyOrderID        *string         `gorm:"column:shopify_order_id;uniqueIndex:uq_subscription_mappings_shop_order,priority:2"`
	ShopifyContractID     *string         `gorm:"column:shopify_contract_id"`
	CustomerEmail         string          `gorm:"column:customer_email;not null"`
	CustomerName          string          `gorm:"column:customer_name;not null"`
	PlanID                string          `gorm:"column:plan_id;not null"`
	PlanName              string          `gorm:"column:plan_name;not null"`
	Amount                decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency              string          `gorm:"column:currency;not null;default:'INR'"`
	Status                string          `gorm:"column:status;not null"`
	LineItems             json.RawMessage `gorm:"column:line_items;type:jsonb;not null"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (SubscriptionMapping) TableName() string { return "subscription_mappings" }

func (m *SubscriptionMapping) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
