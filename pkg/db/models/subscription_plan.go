package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/pkg/enums"
)

// SubscriptionPlan is the merchant-configured plan behind a selling plan group.
// Rows are managed by the admin app; this service only reads them.
type SubscriptionPlan struct {
	ID                 uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Shop               string                `gorm:"column:shop;not null;index"`
	SellingPlanGroupID string                `gorm:"column:selling_plan_group_id;not null;uniqueIndex"`
	Name               string                `gorm:"column:name;not null"`
	BillingInterval    enums.BillingInterval `gorm:"column:billing_interval;not null"`
	IntervalCount      int                   `gorm:"column:interval_count;not null;default:1"`
	DiscountValue      decimal.Decimal       `gorm:"column:discount_value;type:numeric(12,2);not null;default:0"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string { return "subscription_plans" }

func (p *SubscriptionPlan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
