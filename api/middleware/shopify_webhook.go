package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/autopay-bridge/api/responses"
	"github.com/angelmondragon/autopay-bridge/api/validators"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

// ShopifyWebhook authenticates a storefront webhook against the app secret
// before any handler sees it. The verified body is replayed to the handler
// and the shop domain is placed on the context.
func ShopifyWebhook(secret string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large"))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read request body"))
				return
			}

			if !shopify.VerifyWebhookHMAC(body, r.Header.Get(shopify.HmacHeader), secret) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "shopify hmac mismatch"))
				return
			}

			shop := validators.ShopDomain(r.Header.Get(shopify.ShopDomainHeader))
			ctx = WithShop(ctx, shop)
			ctx = withVerifiedBody(ctx, body, r.Header.Get(shopify.WebhookIDHeader))
			if logg != nil {
				ctx = logg.WithShop(ctx, shop)
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
