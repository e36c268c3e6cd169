package subscriptions

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/autopay-bridge/pkg/db"
	"github.com/angelmondragon/autopay-bridge/pkg/db/dbtest"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

func newMapping(subID string, orderID *string) *models.SubscriptionMapping {
	return &models.SubscriptionMapping{
		GatewaySubscriptionID: subID,
		GatewayCustomerID:     "cust_1",
		GatewayPlanID:         "plan_1",
		Shop:                  "demo.myshopify.com",
		ShopifyOrderID:        orderID,
		CustomerEmail:         "asha@example.com",
		CustomerName:          "Asha",
		PlanID:                "p1",
		PlanName:              "Monthly",
		Amount:                decimal.NewFromInt(1000),
		Currency:              "INR",
		Status:                "created",
		LineItems:             json.RawMessage(`[]`),
	}
}

func TestRepositoryUniqueKeys(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, &models.SubscriptionMapping{}))
	ctx := context.Background()
	order := "gid://shopify/Order/1"

	require.NoError(t, repo.Create(ctx, newMapping("sub_1", &order)))

	err := repo.Create(ctx, newMapping("sub_1", nil))
	require.True(t, db.IsUniqueViolation(err, ""), "duplicate gateway id: %v", err)

	err = repo.Create(ctx, newMapping("sub_2", &order))
	require.True(t, db.IsUniqueViolation(err, ""), "duplicate shop order: %v", err)

	found, err := repo.FindByShopOrder(ctx, "demo.myshopify.com", order)
	require.NoError(t, err)
	require.Equal(t, "sub_1", found.GatewaySubscriptionID)
}

func TestBackfillOrderIDOnlyOnce(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, &models.SubscriptionMapping{}))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newMapping("sub_1", nil)))
	require.NoError(t, repo.Create(ctx, newMapping("sub_2", nil)))

	changed, err := repo.BackfillOrderID(ctx, "sub_1", "gid://shopify/Order/2")
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = repo.BackfillOrderID(ctx, "sub_1", "gid://shopify/Order/3")
	require.NoError(t, err)
	require.False(t, changed)

	mapping, err := repo.FindByGatewayID(ctx, "sub_1")
	require.NoError(t, err)
	require.Equal(t, "gid://shopify/Order/2", *mapping.ShopifyOrderID)

	list, err := repo.ListForAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestSnapshotRoundTripKeepsOrder(t *testing.T) {
	order := &shopify.Order{LineItems: []shopify.LineItem{
		{Title: "A", Quantity: 1, Variant: &shopify.Variant{ID: "V1", Price: decimal.RequireFromString("10.50")}},
		{Title: "gift card", Quantity: 1},
		{Title: "B", Quantity: 3, Variant: &shopify.Variant{ID: "V2", Price: decimal.RequireFromString("2")}},
	}}
	raw, err := EncodeLineItems(SnapshotFromOrder(order))
	require.NoError(t, err)
	items, err := DecodeLineItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "V1", items[0].VariantID)
	require.Equal(t, "V2", items[1].VariantID)

	draft := DraftLineItems(items)
	require.Equal(t, "10.50", draft[0].OriginalUnitPrice)
	require.Equal(t, 3, draft[1].Quantity)
}
