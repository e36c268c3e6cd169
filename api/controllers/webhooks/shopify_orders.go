package webhooks

import (
	"context"
	"net/http"

	"github.com/angelmondragon/autopay-bridge/api/middleware"
	"github.com/angelmondragon/autopay-bridge/api/responses"
	"github.com/angelmondragon/autopay-bridge/api/validators"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

const sourceShopify = "shopify"

type ShopifyOrderService interface {
	HandleOrderCreated(ctx context.Context, shop string, payload shopify.OrderWebhook) (enums.WebhookOutcome, error)
}

// ShopifyOrderCreated handles orders/create. It expects the ShopifyWebhook
// middleware to have verified the HMAC and resolved the shop.
func ShopifyOrderCreated(svc ShopifyOrderService, guard DeliveryGuard, metrics OutcomeObserver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		observe := func(outcome enums.WebhookOutcome) {
			if metrics != nil {
				metrics.Observe(sourceShopify, outcome.String())
			}
		}

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body := middleware.RawBodyFromContext(ctx)
		shop := middleware.ShopFromContext(ctx)
		if body == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "unverified shopify webhook"))
			return
		}
		if topic := r.Header.Get(shopify.TopicHeader); topic != "" && topic != shopify.TopicOrdersCreate {
			observe(enums.WebhookOutcomeIgnored)
			responses.WriteAck(w, enums.WebhookOutcomeIgnored.String())
			return
		}

		var payload shopify.OrderWebhook
		if err := validators.DecodeWebhookBody(body, &payload); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "shopify.webhook.malformed")
				}
				observe(enums.WebhookOutcomeIgnored)
				responses.WriteAck(w, enums.WebhookOutcomeIgnored.String())
				return
			}
			observe(enums.WebhookOutcomeFailed)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		key := middleware.WebhookIDFromContext(ctx)
		if key == "" {
			key = shop + ":" + payload.GID()
		}
		claimed := false
		if guard != nil {
			seen, err := guard.CheckAndMark(ctx, key)
			switch {
			case err != nil:
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "shopify.webhook.guard_unavailable")
				}
			case seen:
				observe(enums.WebhookOutcomeDuplicate)
				responses.WriteAck(w, enums.WebhookOutcomeDuplicate.String())
				return
			default:
				claimed = true
			}
		}

		outcome, err := svc.HandleOrderCreated(ctx, shop, payload)
		if err != nil {
			if claimed {
				_ = guard.Delete(context.WithoutCancel(ctx), key)
			}
			observe(enums.WebhookOutcomeFailed)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "outcome", outcome.String()), "shopify.webhook.processed")
		}
		observe(outcome)
		responses.WriteAck(w, outcome.String())
	}
}
