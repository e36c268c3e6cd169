package shopify

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

type MoneyBag struct {
	ShopMoney Money `json:"shopMoney"`
}

type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// DisplayName joins first and last name, falling back to fallback when both are blank.
func (c *Customer) DisplayName(fallback string) string {
	if c == nil {
		return fallback
	}
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name == "" {
		return fallback
	}
	return name
}

type SellingPlanGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SellingPlan struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	SellingPlanGroup *SellingPlanGroup `json:"sellingPlanGroup"`
}

type Variant struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

type LineItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Quantity    int          `json:"quantity"`
	Variant     *Variant     `json:"variant"`
	SellingPlan *SellingPlan `json:"sellingPlan"`
}

type BillingPolicy struct {
	Interval      string `json:"interval"`
	IntervalCount int    `json:"intervalCount"`
}

type SubscriptionContract struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	BillingPolicy *BillingPolicy `json:"billingPolicy"`
}

// Order is the flattened order detail used by provisioning.
type Order struct {
	ID        string
	Name      string
	Email     string
	Customer  *Customer
	Total     Money
	LineItems []LineItem
	Contract  *SubscriptionContract
}

// SubscriptionLine returns the first line item carrying a selling plan, or nil
// for an ordinary one-time order.
func (o *Order) SubscriptionLine() *LineItem {
	if o == nil {
		return nil
	}
	for i := range o.LineItems {
		if o.LineItems[i].SellingPlan != nil {
			return &o.LineItems[i]
		}
	}
	return nil
}

// DraftLineItem is one line of a draft order.
type DraftLineItem struct {
	VariantID         string `json:"variantId"`
	Quantity          int    `json:"quantity"`
	OriginalUnitPrice string `json:"originalUnitPrice,omitempty"`
}

type DraftOrderInput struct {
	LineItems  []DraftLineItem `json:"lineItems"`
	Email      string          `json:"email,omitempty"`
	Note       string          `json:"note,omitempty"`
	CustomerID string          `json:"customerId,omitempty"`
}

type CustomerInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SplitName splits a display name into first name and the remainder.
func SplitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type edge[T any] struct {
	Node T `json:"node"`
}

type connection[T any] struct {
	Edges []edge[T] `json:"edges"`
}

func (c connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}
