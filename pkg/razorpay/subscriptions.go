package razorpay

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
)

func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*Subscription, error) {
	if err := validateRequest("create subscription", req); err != nil {
		return nil, err
	}
	var out Subscription
	resp, err := c.request(ctx).SetBody(req).SetResult(&out).Post("/subscriptions")
	if err := mapError("create subscription", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSubscription fetches a subscription; a missing subscription returns (nil, nil).
func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}
	var out Subscription
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/subscriptions/{id}")
	if err := mapError("fetch subscription", resp, err); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
