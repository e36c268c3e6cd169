package payments

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/internal/repo"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
)

// Repository persists payment records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.PaymentRecord) error
	FindByGatewayPaymentID(ctx context.Context, paymentID string) (*models.PaymentRecord, error)
	AttachOrder(ctx context.Context, paymentID, orderID string, status enums.PaymentStatus) (bool, error)
	CountReconciled(ctx context.Context, gatewaySubscriptionID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, record *models.PaymentRecord) error {
	return r.DB(ctx).Create(record).Error
}

func (r *repository) FindByGatewayPaymentID(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, nil
	}
	return repo.FirstOrNil[models.PaymentRecord](r.DB(ctx).Where("gateway_payment_id = ?", paymentID))
}

// AttachOrder links an audit record to its storefront order. Only a record
// without an order is updated; the bool reports whether this call won.
func (r *repository) AttachOrder(ctx context.Context, paymentID, orderID string, status enums.PaymentStatus) (bool, error) {
	res := r.DB(ctx).
		Model(&models.PaymentRecord{}).
		Where("gateway_payment_id = ? AND shopify_order_id IS NULL", paymentID).
		Updates(map[string]any{
			"shopify_order_id": orderID,
			"status":           status,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CountReconciled(ctx context.Context, gatewaySubscriptionID string) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.PaymentRecord{}).
		Where("gateway_subscription_id = ? AND shopify_order_id IS NOT NULL", gatewaySubscriptionID).
		Count(&count).Error
	return count, err
}
