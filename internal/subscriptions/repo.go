package subscriptions

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/internal/repo"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
)

// Repository persists subscription mappings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, mapping *models.SubscriptionMapping) error
	FindByShopOrder(ctx context.Context, shop, orderID string) (*models.SubscriptionMapping, error)
	FindByGatewayID(ctx context.Context, gatewaySubscriptionID string) (*models.SubscriptionMapping, error)
	BackfillOrderID(ctx context.Context, gatewaySubscriptionID, orderID string) (bool, error)
	ListForAudit(ctx context.Context, limit int) ([]models.SubscriptionMapping, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, mapping *models.SubscriptionMapping) error {
	return r.DB(ctx).Create(mapping).Error
}

func (r *repository) FindByShopOrder(ctx context.Context, shop, orderID string) (*models.SubscriptionMapping, error) {
	if strings.TrimSpace(shop) == "" || strings.TrimSpace(orderID) == "" {
		return nil, nil
	}
	return r.first(r.DB(ctx).Where("shop = ? AND shopify_order_id = ?", shop, orderID))
}

func (r *repository) FindByGatewayID(ctx context.Context, gatewaySubscriptionID string) (*models.SubscriptionMapping, error) {
	if strings.TrimSpace(gatewaySubscriptionID) == "" {
		return nil, nil
	}
	return r.first(r.DB(ctx).Where("gateway_subscription_id = ?", gatewaySubscriptionID))
}

func (r *repository) first(q *gorm.DB) (*models.SubscriptionMapping, error) {
	return repo.FirstOrNil[models.SubscriptionMapping](q)
}

// BackfillOrderID attaches orderID only while the mapping has none, so the
// first reconciled order wins. It reports whether a row changed.
func (r *repository) BackfillOrderID(ctx context.Context, gatewaySubscriptionID, orderID string) (bool, error) {
	res := r.DB(ctx).
		Model(&models.SubscriptionMapping{}).
		Where("gateway_subscription_id = ? AND shopify_order_id IS NULL", gatewaySubscriptionID).
		Update("shopify_order_id", orderID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListForAudit returns the most recently updated mappings first.
func (r *repository) ListForAudit(ctx context.Context, limit int) ([]models.SubscriptionMapping, error) {
	if limit <= 0 {
		limit = 200
	}
	var mappings []models.SubscriptionMapping
	if err := r.DB(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}
