package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

const requestIDHeader = "X-Request-Id"

// deliveryIDHeaders are checked in order when no request id is supplied, so
// log lines line up with the sender's delivery log.
var deliveryIDHeaders = []string{
	razorpay.EventIDHeader,
	shopify.WebhookIDHeader,
}

func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := requestIDFor(r)
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestIDFor(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(requestIDHeader)); id != "" {
		return id
	}
	for _, header := range deliveryIDHeaders {
		if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
