package shopify

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
)

const orderQuery = `query getOrder($id: ID!) {
  order(id: $id) {
    id
    name
    email
    customer { id email firstName lastName }
    totalPriceSet { shopMoney { amount currencyCode } }
    lineItems(first: 50) {
      edges {
        node {
          id
          title
          quantity
          variant { id title price }
          sellingPlan { id name sellingPlanGroup { id name } }
        }
      }
    }
    subscriptionContracts(first: 1) {
      edges {
        node {
          id
          status
          billingPolicy { interval intervalCount }
        }
      }
    }
  }
}`

const orderUpdateMutation = `mutation orderUpdate($input: OrderInput!) {
  orderUpdate(input: $input) {
    order { id }
    userErrors { field message }
  }
}`

type orderNode struct {
	ID                    string                           `json:"id"`
	Name                  string                           `json:"name"`
	Email                 string                           `json:"email"`
	Customer              *Customer                        `json:"customer"`
	TotalPriceSet         MoneyBag                         `json:"totalPriceSet"`
	LineItems             connection[LineItem]             `json:"lineItems"`
	SubscriptionContracts connection[SubscriptionContract] `json:"subscriptionContracts"`
}

// GetOrder fetches order detail with selling plans and the attached contract.
// A missing order returns (nil, nil).
func (c *AdminClient) GetOrder(ctx context.Context, orderGID string) (*Order, error) {
	orderGID = strings.TrimSpace(orderGID)
	if orderGID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var out struct {
		Order *orderNode `json:"order"`
	}
	if err := c.do(ctx, "get order", orderQuery, map[string]any{"id": orderGID}, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, nil
	}
	order := &Order{
		ID:        out.Order.ID,
		Name:      out.Order.Name,
		Email:     out.Order.Email,
		Customer:  out.Order.Customer,
		Total:     out.Order.TotalPriceSet.ShopMoney,
		LineItems: out.Order.LineItems.nodes(),
	}
	if contracts := out.Order.SubscriptionContracts.nodes(); len(contracts) > 0 {
		order.Contract = &contracts[0]
	}
	return order, nil
}

func (c *AdminClient) UpdateOrderNote(ctx context.Context, orderGID, note string) error {
	var out struct {
		OrderUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"orderUpdate"`
	}
	vars := map[string]any{"input": map[string]any{"id": orderGID, "note": note}}
	if err := c.do(ctx, "update order note", orderUpdateMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsErr("update order note", out.OrderUpdate.UserErrors)
}
