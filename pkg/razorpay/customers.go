package razorpay

import (
	"context"
	"strconv"
	"strings"
)

const (
	pageSize = 100
	maxPages = 20
)

// FindCustomerByEmail pages through customers and returns the first whose
// email matches case-insensitively, or nil when none does.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	for page := 0; page < maxPages; page++ {
		var out listResponse[Customer]
		resp, err := c.request(ctx).
			SetQueryParams(map[string]string{
				"count": strconv.Itoa(pageSize),
				"skip":  strconv.Itoa(page * pageSize),
			}).
			SetResult(&out).
			Get("/customers")
		if err := mapError("list customers", resp, err); err != nil {
			return nil, err
		}
		for i := range out.Items {
			if strings.EqualFold(out.Items[i].Email, email) {
				return &out.Items[i], nil
			}
		}
		if len(out.Items) < pageSize {
			return nil, nil
		}
	}
	return nil, nil
}

// CreateCustomer creates a customer. With FailExisting "0" the gateway returns
// the existing customer for a known email instead of failing.
func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	if req.FailExisting == "" {
		req.FailExisting = "0"
	}
	if err := validateRequest("create customer", req); err != nil {
		return nil, err
	}
	var out Customer
	resp, err := c.request(ctx).SetBody(req).SetResult(&out).Post("/customers")
	if err := mapError("create customer", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsureCustomer returns the customer for email, creating it on a miss.
func (c *Client) EnsureCustomer(ctx context.Context, name, email string) (*Customer, error) {
	existing, err := c.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}
	return c.CreateCustomer(ctx, CustomerRequest{Name: name, Email: email})
}
