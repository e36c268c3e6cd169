package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/autopay-bridge/api/responses"
	"github.com/angelmondragon/autopay-bridge/api/validators"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
)

const sourceRazorpay = "razorpay"

type RazorpayWebhookService interface {
	HandleEvent(ctx context.Context, event *razorpay.WebhookEvent) (enums.WebhookOutcome, error)
}

type DeliveryGuard interface {
	CheckAndMark(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type SigningClient interface {
	SigningSecret() string
}

type OutcomeObserver interface {
	Observe(source, outcome string)
}

// RazorpayWebhook handles payment.authorized and payment.captured events.
// The signature is checked on the raw body before anything is parsed.
func RazorpayWebhook(svc RazorpayWebhookService, client SigningClient, guard DeliveryGuard, metrics OutcomeObserver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		observe := func(outcome enums.WebhookOutcome) {
			if metrics != nil {
				metrics.Observe(sourceRazorpay, outcome.String())
			}
		}

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "razorpay client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			observe(enums.WebhookOutcomeFailed)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read request body"))
			return
		}

		if !razorpay.VerifyWebhookSignature(payload, r.Header.Get(razorpay.SignatureHeader), client.SigningSecret()) {
			observe(enums.WebhookOutcomeRejected)
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "razorpay signature mismatch"))
			return
		}

		var event razorpay.WebhookEvent
		if err := validators.DecodeWebhookBody(payload, &event); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "razorpay.webhook.malformed")
				}
				observe(enums.WebhookOutcomeIgnored)
				responses.WriteAck(w, enums.WebhookOutcomeIgnored.String())
				return
			}
			observe(enums.WebhookOutcomeFailed)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		key := razorpayDeliveryKey(&event, r.Header.Get(razorpay.EventIDHeader))
		if guard != nil && key != "" {
			seen, err := guard.CheckAndMark(ctx, key)
			switch {
			case err != nil:
				// unique keys still hold without the guard
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "razorpay.webhook.guard_unavailable")
				}
				key = ""
			case seen:
				if logg != nil {
					logg.Debug(logg.WithField(ctx, "delivery_key", key), "razorpay.webhook.duplicate")
				}
				observe(enums.WebhookOutcomeDuplicate)
				responses.WriteAck(w, enums.WebhookOutcomeDuplicate.String())
				return
			}
		}
		release := func() {
			if guard != nil && key != "" {
				_ = guard.Delete(context.WithoutCancel(ctx), key)
			}
		}

		outcome, err := svc.HandleEvent(ctx, &event)
		if err != nil {
			release()
			observe(enums.WebhookOutcomeFailed)
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if outcome == enums.WebhookOutcomeReconcileFailed {
			// keep manual replay possible
			release()
		}

		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"event":   event.Event,
				"outcome": outcome.String(),
			}), "razorpay.webhook.processed")
		}
		observe(outcome)
		responses.WriteAck(w, outcome.String())
	}
}

// razorpayDeliveryKey identifies one logical delivery: the same event for the
// same payment. Razorpay's event id header is used when no payment is present.
func razorpayDeliveryKey(event *razorpay.WebhookEvent, eventID string) string {
	if payment := event.PaymentEntity(); payment != nil && payment.ID != "" {
		return event.Event + ":" + payment.ID
	}
	return eventID
}
