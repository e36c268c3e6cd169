package subscriptions

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

// LineItem is one entry of the commercial snapshot replayed on each charge.
type LineItem struct {
	VariantID string          `json:"variant_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// SnapshotFromOrder captures every order line that still references a variant,
// in order.
func SnapshotFromOrder(order *shopify.Order) []LineItem {
	if order == nil {
		return nil
	}
	items := make([]LineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		if li.Variant == nil || li.Variant.ID == "" || li.Quantity <= 0 {
			continue
		}
		items = append(items, LineItem{
			VariantID: li.Variant.ID,
			Title:     li.Title,
			Quantity:  li.Quantity,
			Price:     li.Variant.Price,
		})
	}
	return items
}

func EncodeLineItems(items []LineItem) (json.RawMessage, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}
	return raw, nil
}

func DecodeLineItems(raw json.RawMessage) ([]LineItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	return items, nil
}

// DraftLineItems converts the snapshot into draft order input, preserving order.
func DraftLineItems(items []LineItem) []shopify.DraftLineItem {
	out := make([]shopify.DraftLineItem, 0, len(items))
	for _, it := range items {
		out = append(out, shopify.DraftLineItem{
			VariantID:         it.VariantID,
			Quantity:          it.Quantity,
			OriginalUnitPrice: it.Price.StringFixed(2),
		})
	}
	return out
}
