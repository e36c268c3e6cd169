package shopify

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
)

const customerSearchQuery = `query getCustomerByEmail($query: String!) {
  customers(first: 1, query: $query) {
    edges { node { id email firstName lastName } }
  }
}`

const customerCreateMutation = `mutation customerCreate($input: CustomerInput!) {
  customerCreate(input: $input) {
    customer { id email firstName lastName }
    userErrors { field message }
  }
}`

// FindCustomerByEmail returns the first customer matching email, or nil.
func (c *AdminClient) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	var out struct {
		Customers connection[Customer] `json:"customers"`
	}
	if err := c.do(ctx, "find customer", customerSearchQuery, map[string]any{"query": "email:" + email}, &out); err != nil {
		return nil, err
	}
	nodes := out.Customers.nodes()
	if len(nodes) == 0 {
		return nil, nil
	}
	return &nodes[0], nil
}

func (c *AdminClient) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	var out struct {
		CustomerCreate struct {
			Customer   *Customer   `json:"customer"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"customerCreate"`
	}
	if err := c.do(ctx, "create customer", customerCreateMutation, map[string]any{"input": input}, &out); err != nil {
		return nil, err
	}
	if err := userErrorsErr("create customer", out.CustomerCreate.UserErrors); err != nil {
		return nil, err
	}
	if out.CustomerCreate.Customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify create customer: no customer returned")
	}
	return out.CustomerCreate.Customer, nil
}

// EnsureCustomer reuses a customer by email and creates one on a miss.
func (c *AdminClient) EnsureCustomer(ctx context.Context, email, name string) (*Customer, error) {
	existing, err := c.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	first, last := SplitName(name)
	return c.CreateCustomer(ctx, CustomerInput{Email: email, FirstName: first, LastName: last})
}
