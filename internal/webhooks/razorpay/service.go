package razorpaywebhook

import (
	"context"
	"errors"

	"github.com/angelmondragon/autopay-bridge/internal/payments"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
)

type mappingFinder interface {
	FindByGatewayID(ctx context.Context, gatewaySubscriptionID string) (*models.SubscriptionMapping, error)
}

type recordFinder interface {
	FindByGatewayPaymentID(ctx context.Context, paymentID string) (*models.PaymentRecord, error)
}

type reconciler interface {
	RecordAudit(ctx context.Context, mapping *models.SubscriptionMapping, payment *razorpay.Payment) (bool, error)
	Reconcile(ctx context.Context, mapping *models.SubscriptionMapping, payment *razorpay.Payment) (*models.PaymentRecord, error)
}

type ServiceParams struct {
	Mappings   mappingFinder
	Records    recordFinder
	Reconciler reconciler
	Logger     *logger.Logger
}

// Service applies verified payment events to the local mapping store.
type Service struct {
	mappings   mappingFinder
	records    recordFinder
	reconciler reconciler
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Mappings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mapping repo required")
	}
	if params.Records == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repo required")
	}
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		mappings:   params.Mappings,
		records:    params.Records,
		reconciler: params.Reconciler,
		logg:       params.Logger,
	}, nil
}

// HandleEvent resolves a payment event to an outcome. Only unexpected
// persistence failures surface as errors; a storefront order that could not
// be created is logged as reconcile_failed and acknowledged.
func (s *Service) HandleEvent(ctx context.Context, event *razorpay.WebhookEvent) (enums.WebhookOutcome, error) {
	if event == nil {
		return enums.WebhookOutcomeIgnored, nil
	}
	kind := enums.PaymentEvent(event.Event)
	if !kind.Handled() {
		return enums.WebhookOutcomeIgnored, nil
	}
	payment := event.PaymentEntity()
	if payment == nil || payment.ID == "" || payment.SubscriptionID == "" {
		// one-off payments and malformed payloads are acknowledged untouched
		return enums.WebhookOutcomeIgnored, nil
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"event":           event.Event,
		"payment_id":      payment.ID,
		"subscription_id": payment.SubscriptionID,
	})

	mapping, err := s.mappings.FindByGatewayID(ctx, payment.SubscriptionID)
	if err != nil {
		return enums.WebhookOutcomeFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription mapping")
	}
	if mapping == nil {
		s.logg.Info(ctx, "razorpay.webhook.unknown_subscription")
		return enums.WebhookOutcomeIgnored, nil
	}
	ctx = s.logg.WithShop(ctx, mapping.Shop)

	captured := kind == enums.PaymentEventCaptured &&
		enums.PaymentStatus(payment.Status) == enums.PaymentStatusCaptured

	existing, err := s.records.FindByGatewayPaymentID(ctx, payment.ID)
	if err != nil {
		return enums.WebhookOutcomeFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment record")
	}
	if existing != nil && (existing.Reconciled() || !captured) {
		return enums.WebhookOutcomeDuplicate, nil
	}

	if !captured {
		created, err := s.reconciler.RecordAudit(ctx, mapping, payment)
		if err != nil {
			return enums.WebhookOutcomeFailed, err
		}
		if !created {
			return enums.WebhookOutcomeDuplicate, nil
		}
		s.logg.Info(ctx, "razorpay.webhook.payment_recorded")
		return enums.WebhookOutcomeRecorded, nil
	}

	if _, err := s.reconciler.Reconcile(ctx, mapping, payment); err != nil {
		if errors.Is(err, payments.ErrAlreadyRecorded) {
			return enums.WebhookOutcomeDuplicate, nil
		}
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"amount_minor": payment.Amount,
			"currency":     payment.Currency,
		}), "razorpay.webhook.reconcile_failed", err)
		return enums.WebhookOutcomeReconcileFailed, nil
	}
	return enums.WebhookOutcomeReconciled, nil
}
