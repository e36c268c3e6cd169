package razorpay

import (
	"context"
	"strconv"
)

// FindPlan returns an existing plan that mirrors req, or nil.
func (c *Client) FindPlan(ctx context.Context, req PlanRequest) (*Plan, error) {
	for page := 0; page < maxPages; page++ {
		var out listResponse[Plan]
		resp, err := c.request(ctx).
			SetQueryParams(map[string]string{
				"count": strconv.Itoa(pageSize),
				"skip":  strconv.Itoa(page * pageSize),
			}).
			SetResult(&out).
			Get("/plans")
		if err := mapError("list plans", resp, err); err != nil {
			return nil, err
		}
		for i := range out.Items {
			if out.Items[i].Matches(req) {
				return &out.Items[i], nil
			}
		}
		if len(out.Items) < pageSize {
			return nil, nil
		}
	}
	return nil, nil
}

func (c *Client) CreatePlan(ctx context.Context, req PlanRequest) (*Plan, error) {
	if err := validateRequest("create plan", req); err != nil {
		return nil, err
	}
	var out Plan
	resp, err := c.request(ctx).SetBody(req).SetResult(&out).Post("/plans")
	if err := mapError("create plan", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsurePlan reuses a matching plan so retried provisioning does not mint duplicates.
func (c *Client) EnsurePlan(ctx context.Context, req PlanRequest) (*Plan, error) {
	existing, err := c.FindPlan(ctx, req)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return c.CreatePlan(ctx, req)
}
