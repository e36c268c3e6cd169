package models

import "time"

// ShopifySession is an OAuth session persisted by the storefront app.
type ShopifySession struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Shop        string     `gorm:"column:shop;not null;index"`
	IsOnline    bool       `gorm:"column:is_online;not null;default:false"`
	AccessToken string     `gorm:"column:access_token;not null"`
	Scope       string     `gorm:"column:scope"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (ShopifySession) TableName() string { return "shopify_sessions" }
