package shopifywebhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/autopay-bridge/internal/sessions"
	"github.com/angelmondragon/autopay-bridge/internal/subscriptions"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

const planNoteFormat = "Subscription Plan: %s\nView/Edit Plan: /apps/%s/app?planId=%s"

type adminResolver interface {
	AdminForShop(ctx context.Context, shop string) (shopify.Admin, error)
}

type mappingFinder interface {
	FindByShopOrder(ctx context.Context, shop, orderID string) (*models.SubscriptionMapping, error)
}

type planFinder interface {
	FindBySellingPlanGroupID(ctx context.Context, groupID string) (*models.SubscriptionPlan, error)
}

type provisioner interface {
	Provision(ctx context.Context, req subscriptions.ProvisionRequest) (*models.SubscriptionMapping, error)
}

type ServiceParams struct {
	Admins      adminResolver
	Mappings    mappingFinder
	Plans       planFinder
	Provisioner provisioner
	AppHandle   string
	Logger      *logger.Logger
}

// Service turns qualifying storefront orders into gateway subscriptions.
type Service struct {
	admins      adminResolver
	mappings    mappingFinder
	plans       planFinder
	provisioner provisioner
	appHandle   string
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Admins == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin resolver required")
	}
	if params.Mappings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mapping repo required")
	}
	if params.Plans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "plan repo required")
	}
	if params.Provisioner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "provisioner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		admins:      params.Admins,
		mappings:    params.Mappings,
		plans:       params.Plans,
		provisioner: params.Provisioner,
		appHandle:   params.AppHandle,
		logg:        params.Logger,
	}, nil
}

// HandleOrderCreated provisions a gateway subscription for an order that
// contains a subscription line. Orders that do not qualify are ignored.
func (s *Service) HandleOrderCreated(ctx context.Context, shop string, payload shopify.OrderWebhook) (enums.WebhookOutcome, error) {
	orderID := payload.GID()
	if orderID == "" || strings.TrimSpace(shop) == "" {
		return enums.WebhookOutcomeIgnored, nil
	}
	ctx = s.logg.WithField(s.logg.WithShop(ctx, shop), "order_id", orderID)

	existing, err := s.mappings.FindByShopOrder(ctx, shop, orderID)
	if err != nil {
		return enums.WebhookOutcomeFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription mapping")
	}
	if existing != nil {
		return enums.WebhookOutcomeDuplicate, nil
	}

	admin, err := s.admins.AdminForShop(ctx, shop)
	if errors.Is(err, sessions.ErrNoOfflineSession) {
		s.logg.Warn(ctx, "shopify.webhook.no_offline_session")
		return enums.WebhookOutcomeIgnored, nil
	}
	if err != nil {
		return enums.WebhookOutcomeFailed, err
	}

	order, err := admin.GetOrder(ctx, orderID)
	if err != nil {
		return enums.WebhookOutcomeFailed, err
	}
	line := order.SubscriptionLine()
	if line == nil || line.SellingPlan.SellingPlanGroup == nil || line.SellingPlan.SellingPlanGroup.ID == "" {
		return enums.WebhookOutcomeIgnored, nil
	}
	groupID := line.SellingPlan.SellingPlanGroup.ID

	plan, err := s.plans.FindBySellingPlanGroupID(ctx, groupID)
	if err != nil {
		return enums.WebhookOutcomeFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription plan")
	}
	if plan == nil {
		s.logg.Warn(s.logg.WithField(ctx, "selling_plan_group_id", groupID), "shopify.webhook.plan_missing")
		return enums.WebhookOutcomeIgnored, nil
	}

	email := ""
	if order.Customer != nil {
		email = strings.TrimSpace(order.Customer.Email)
	}
	if email == "" {
		email = strings.TrimSpace(order.Email)
	}
	if email == "" {
		s.logg.Warn(ctx, "shopify.webhook.customer_email_missing")
		return enums.WebhookOutcomeIgnored, nil
	}

	mapping, err := s.provisioner.Provision(ctx, subscriptions.ProvisionRequest{
		Shop:          shop,
		Order:         order,
		Plan:          plan,
		CustomerEmail: email,
		CustomerName:  order.Customer.DisplayName(email),
	})
	if errors.Is(err, subscriptions.ErrAlreadyProvisioned) {
		return enums.WebhookOutcomeDuplicate, nil
	}
	if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		// a redelivery would fail the same way
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shopify.webhook.order_rejected")
		return enums.WebhookOutcomeRejected, nil
	}
	if err != nil {
		return enums.WebhookOutcomeFailed, err
	}

	note := fmt.Sprintf(planNoteFormat, plan.Name, s.appHandle, groupID)
	if err := admin.UpdateOrderNote(ctx, orderID, note); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"subscription_id": mapping.GatewaySubscriptionID,
			"error":           err.Error(),
		}), "shopify.webhook.order_note_failed")
	}
	return enums.WebhookOutcomeProvisioned, nil
}
