package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/internal/notifications"
	"github.com/angelmondragon/autopay-bridge/internal/subscriptions"
	"github.com/angelmondragon/autopay-bridge/pkg/db"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

const draftOrderNote = "Auto-generated from Razorpay subscription payment. Payment ID: %s"

var (
	// ErrEmptySnapshot needs manual intervention: there is nothing to reorder.
	ErrEmptySnapshot = errors.New("subscription mapping has no line items")
	// ErrAlreadyRecorded means another delivery stored an order for this payment first.
	ErrAlreadyRecorded = errors.New("payment already recorded")
)

type AdminResolver interface {
	AdminForShop(ctx context.Context, shop string) (shopify.Admin, error)
}

// TxRunner matches db.Client.WithTx.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type PaymentNotifier interface {
	PaymentReceived(ctx context.Context, notice notifications.PaymentNotice)
}

type ReconcilerParams struct {
	Records  Repository
	Mappings subscriptions.Repository
	Admins   AdminResolver
	Tx       TxRunner
	Notifier PaymentNotifier
	Logger   *logger.Logger
}

// Reconciler turns a captured recurring charge into a storefront order and
// records the link.
type Reconciler struct {
	records  Repository
	mappings subscriptions.Repository
	admins   AdminResolver
	tx       TxRunner
	notifier PaymentNotifier
	logg     *logger.Logger
}

func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.Records == nil {
		return nil, errors.New("payment repository required")
	}
	if params.Mappings == nil {
		return nil, errors.New("mapping repository required")
	}
	if params.Admins == nil {
		return nil, errors.New("admin resolver required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &Reconciler{
		records:  params.Records,
		mappings: params.Mappings,
		admins:   params.Admins,
		tx:       params.Tx,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// RecordAudit stores a payment without an order. It reports false when a
// record for the payment already exists.
func (r *Reconciler) RecordAudit(ctx context.Context, mapping *models.SubscriptionMapping, payment *razorpay.Payment) (bool, error) {
	record := newRecord(mapping, payment)
	if err := r.records.Create(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment record")
	}
	return true, nil
}

// Reconcile creates the storefront order for a captured payment and persists
// the payment record in one transaction. Storefront failures leave no record.
func (r *Reconciler) Reconcile(ctx context.Context, mapping *models.SubscriptionMapping, payment *razorpay.Payment) (*models.PaymentRecord, error) {
	if mapping == nil || payment == nil || payment.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mapping and payment are required")
	}
	items, err := subscriptions.DecodeLineItems(mapping.LineItems)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptySnapshot, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptySnapshot
	}

	admin, err := r.admins.AdminForShop(ctx, mapping.Shop)
	if err != nil {
		return nil, err
	}

	input := shopify.DraftOrderInput{
		LineItems: subscriptions.DraftLineItems(items),
		Email:     mapping.CustomerEmail,
		Note:      fmt.Sprintf(draftOrderNote, payment.ID),
	}
	customer, err := admin.EnsureCustomer(ctx, mapping.CustomerEmail, mapping.CustomerName)
	if err != nil {
		// proceed unlinked; the draft keeps the email
		r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "reconcile.customer.unresolved")
	} else if customer != nil {
		input.CustomerID = customer.ID
	}

	draftID, err := admin.CreateDraftOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	orderID, err := admin.CompleteDraftOrder(ctx, draftID)
	if err != nil {
		return nil, err
	}

	record := newRecord(mapping, payment)
	record.ShopifyOrderID = &orderID
	record.Status = enums.PaymentStatusCaptured

	err = r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		records := r.records.WithTx(tx)
		existing, err := records.FindByGatewayPaymentID(ctx, payment.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			attached, err := records.AttachOrder(ctx, payment.ID, orderID, enums.PaymentStatusCaptured)
			if err != nil {
				return err
			}
			if !attached {
				return ErrAlreadyRecorded
			}
			record.ID = existing.ID
		} else if err := records.Create(ctx, record); err != nil {
			if db.IsUniqueViolation(err, "") {
				return ErrAlreadyRecorded
			}
			return err
		}
		if mapping.ShopifyOrderID == nil || *mapping.ShopifyOrderID == "" {
			if _, err := r.mappings.WithTx(tx).BackfillOrderID(ctx, mapping.GatewaySubscriptionID, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrAlreadyRecorded) {
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
			"payment_id":      payment.ID,
			"orphan_order_id": orderID,
		}), "reconcile.duplicate_order")
		return nil, ErrAlreadyRecorded
	}
	if err != nil {
		r.logg.Error(r.logg.WithFields(ctx, map[string]any{
			"payment_id":      payment.ID,
			"orphan_order_id": orderID,
		}), "reconcile.persist_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment record")
	}

	r.logg.Info(r.logg.WithFields(ctx, map[string]any{
		"payment_id": payment.ID,
		"order_id":   orderID,
	}), "reconcile.completed")

	if r.notifier != nil {
		r.notifier.PaymentReceived(ctx, notifications.PaymentNotice{
			Shop:           mapping.Shop,
			CustomerName:   mapping.CustomerName,
			CustomerEmail:  mapping.CustomerEmail,
			PlanName:       mapping.PlanName,
			SubscriptionID: mapping.GatewaySubscriptionID,
			PaymentID:      payment.ID,
			AmountMinor:    payment.Amount,
			Currency:       record.Currency,
			ShopifyOrderID: orderID,
			OccurredAt:     time.Now().UTC(),
		})
	}
	return record, nil
}

func newRecord(mapping *models.SubscriptionMapping, payment *razorpay.Payment) *models.PaymentRecord {
	currency := strings.ToUpper(strings.TrimSpace(payment.Currency))
	if currency == "" {
		currency = mapping.Currency
	}
	record := &models.PaymentRecord{
		GatewayPaymentID:      payment.ID,
		GatewaySubscriptionID: mapping.GatewaySubscriptionID,
		AmountMinor:           payment.Amount,
		Currency:              currency,
		Status:                enums.PaymentStatus(strings.ToLower(strings.TrimSpace(payment.Status))),
	}
	if payment.CreatedAt > 0 {
		paidAt := time.Unix(payment.CreatedAt, 0).UTC()
		record.PaidAt = &paidAt
	}
	return record
}
