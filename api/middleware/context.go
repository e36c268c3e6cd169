package middleware

import "context"

type contextKey string

const (
	ctxShop      contextKey = "shop"
	ctxRawBody   contextKey = "raw_body"
	ctxWebhookID contextKey = "webhook_id"
)

// ShopFromContext returns the verified shop domain of a storefront webhook.
func ShopFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxShop).(string); ok {
		return v
	}
	return ""
}

// RawBodyFromContext returns the body bytes the signature was checked against.
func RawBodyFromContext(ctx context.Context) []byte {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxRawBody).([]byte); ok {
		return v
	}
	return nil
}

func WebhookIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxWebhookID).(string); ok {
		return v
	}
	return ""
}

// WithShop injects the shop domain into the context for downstream handlers.
func WithShop(ctx context.Context, shop string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxShop, shop)
}

func withVerifiedBody(ctx context.Context, body []byte, webhookID string) context.Context {
	ctx = context.WithValue(ctx, ctxRawBody, body)
	return context.WithValue(ctx, ctxWebhookID, webhookID)
}
