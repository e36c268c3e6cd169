package subscriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/autopay-bridge/internal/notifications"
	"github.com/angelmondragon/autopay-bridge/pkg/db"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/money"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

const (
	DefaultCurrency    = "INR"
	subscriptionSource = "shopify_subscription"
)

// ErrAlreadyProvisioned means another delivery persisted the mapping first.
var ErrAlreadyProvisioned = errors.New("subscription already provisioned for order")

// Gateway is the payment gateway surface provisioning needs.
type Gateway interface {
	EnsureCustomer(ctx context.Context, name, email string) (*razorpay.Customer, error)
	EnsurePlan(ctx context.Context, req razorpay.PlanRequest) (*razorpay.Plan, error)
	CreateSubscription(ctx context.Context, req razorpay.SubscriptionRequest) (*razorpay.Subscription, error)
}

// SetupNotifier receives a best-effort notice after provisioning.
type SetupNotifier interface {
	SubscriptionSetup(ctx context.Context, notice notifications.SetupNotice)
}

type ProvisionerParams struct {
	Repo               Repository
	Gateway            Gateway
	Notifier           SetupNotifier
	SettlementCurrency string
	// TotalCount is the fixed number of billing cycles; 0 bills until cancelled.
	TotalCount int
	Logger     *logger.Logger
}

// Provisioner mirrors a storefront recurring order into a gateway
// customer, plan and subscription and records the mapping.
type Provisioner struct {
	repo       Repository
	gateway    Gateway
	notifier   SetupNotifier
	currency   string
	totalCount int
	logg       *logger.Logger
}

func NewProvisioner(params ProvisionerParams) (*Provisioner, error) {
	if params.Repo == nil {
		return nil, errors.New("mapping repository required")
	}
	if params.Gateway == nil {
		return nil, errors.New("gateway client required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.TotalCount < 0 {
		return nil, errors.New("total count must be non-negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(params.SettlementCurrency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Provisioner{
		repo:       params.Repo,
		gateway:    params.Gateway,
		notifier:   params.Notifier,
		currency:   currency,
		totalCount: params.TotalCount,
		logg:       params.Logger,
	}, nil
}

// ProvisionRequest carries a qualifying order and the local plan behind it.
type ProvisionRequest struct {
	Shop          string
	Order         *shopify.Order
	Plan          *models.SubscriptionPlan
	CustomerEmail string
	CustomerName  string
}

func (r ProvisionRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Shop) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "shop is required")
	case r.Order == nil || r.Order.ID == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	case r.Plan == nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "plan definition is required")
	case strings.TrimSpace(r.CustomerEmail) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	case !r.Order.Total.Amount.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}
	return nil
}

// Provision runs customer, plan and subscription creation then persists the
// mapping. Nothing is stored until the gateway calls succeed, so a failed
// attempt can simply be retried.
func (p *Provisioner) Provision(ctx context.Context, req ProvisionRequest) (*models.SubscriptionMapping, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	items := SnapshotFromOrder(req.Order)
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no variant line items to snapshot")
	}
	lineItems, err := EncodeLineItems(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot line items")
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = req.CustomerEmail
	}

	customer, err := p.gateway.EnsureCustomer(ctx, name, req.CustomerEmail)
	if err != nil {
		return nil, err
	}

	plan, err := p.gateway.EnsurePlan(ctx, p.planRequest(req))
	if err != nil {
		return nil, err
	}

	sub, err := p.gateway.CreateSubscription(ctx, razorpay.SubscriptionRequest{
		PlanID:         plan.ID,
		CustomerID:     customer.ID,
		TotalCount:     p.totalCount,
		CustomerNotify: 1,
		Notes: razorpay.Notes{
			"source":           subscriptionSource,
			"shop":             req.Shop,
			"shopify_order_id": req.Order.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	orderID := req.Order.ID
	mapping := &models.SubscriptionMapping{
		GatewaySubscriptionID: sub.ID,
		GatewayCustomerID:     customer.ID,
		GatewayPlanID:         plan.ID,
		Shop:                  req.Shop,
		ShopifyOrderID:        &orderID,
		CustomerEmail:         req.CustomerEmail,
		CustomerName:          name,
		PlanID:                req.Plan.ID.String(),
		PlanName:              req.Plan.Name,
		Amount:                req.Order.Total.Amount,
		Currency:              orderCurrency(req.Order),
		Status:                sub.Status,
		LineItems:             lineItems,
	}
	if req.Order.Contract != nil && req.Order.Contract.ID != "" {
		contractID := req.Order.Contract.ID
		mapping.ShopifyContractID = &contractID
	}

	if err := p.repo.Create(ctx, mapping); err != nil {
		if db.IsUniqueViolation(err, "") {
			p.logg.Warn(p.logg.WithFields(ctx, map[string]any{
				"subscription_id": sub.ID,
				"order_id":        req.Order.ID,
			}), "provision.mapping.exists")
			return nil, ErrAlreadyProvisioned
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist subscription mapping")
	}

	logCtx := p.logg.WithFields(ctx, map[string]any{
		"subscription_id": sub.ID,
		"customer_id":     customer.ID,
		"plan_id":         plan.ID,
		"order_id":        req.Order.ID,
		"status":          sub.Status,
	})
	p.logg.Info(logCtx, "provision.completed")

	if p.notifier != nil {
		p.notifier.SubscriptionSetup(ctx, notifications.SetupNotice{
			Shop:           req.Shop,
			CustomerName:   name,
			CustomerEmail:  req.CustomerEmail,
			PlanName:       req.Plan.Name,
			SubscriptionID: sub.ID,
			OccurredAt:     time.Now().UTC(),
		})
	}
	return mapping, nil
}

func (p *Provisioner) planRequest(req ProvisionRequest) razorpay.PlanRequest {
	interval := req.Plan.IntervalCount
	if interval < 1 {
		interval = 1
	}
	return razorpay.PlanRequest{
		Period:   req.Plan.BillingInterval.GatewayPeriod(),
		Interval: interval,
		Item: razorpay.PlanItem{
			Name:     req.Plan.Name,
			Amount:   money.ToMinor(req.Order.Total.Amount),
			Currency: p.currency,
		},
		Notes: razorpay.Notes{
			"shop":                  req.Shop,
			"selling_plan_group_id": req.Plan.SellingPlanGroupID,
		},
	}
}

func orderCurrency(order *shopify.Order) string {
	if c := strings.ToUpper(strings.TrimSpace(order.Total.CurrencyCode)); c != "" {
		return c
	}
	return DefaultCurrency
}
