package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
)

const (
	HmacHeader       = "X-Shopify-Hmac-Sha256"
	ShopDomainHeader = "X-Shopify-Shop-Domain"
	TopicHeader      = "X-Shopify-Topic"
	WebhookIDHeader  = "X-Shopify-Webhook-Id"

	TopicOrdersCreate = "orders/create"

	orderGIDPrefix = "gid://shopify/Order/"
)

// OrderWebhook is the subset of the orders/create payload the bridge reads.
type OrderWebhook struct {
	ID                int64  `json:"id" validate:"required_without=AdminGraphQLAPIID"`
	AdminGraphQLAPIID string `json:"admin_graphql_api_id"`
	Email             string `json:"email"`
}

// GID returns the Admin API id of the order, or "" when the payload carries
// neither form of id.
func (o OrderWebhook) GID() string {
	if id := strings.TrimSpace(o.AdminGraphQLAPIID); id != "" {
		return id
	}
	if o.ID > 0 {
		return orderGIDPrefix + strconv.FormatInt(o.ID, 10)
	}
	return ""
}

// VerifyWebhookHMAC checks the base64 HMAC-SHA256 Shopify sends with every webhook.
func VerifyWebhookHMAC(rawBody []byte, header, secret string) bool {
	header = strings.TrimSpace(header)
	if header == "" || secret == "" {
		return false
	}
	given, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	return hmac.Equal(given, computeHMAC(rawBody, secret))
}

func SignWebhookBody(rawBody []byte, secret string) string {
	return base64.StdEncoding.EncodeToString(computeHMAC(rawBody, secret))
}

func computeHMAC(rawBody []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return mac.Sum(nil)
}
