package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/autopay-bridge/pkg/db/dbtest"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
)

type ctxKey struct{}

func TestBaseDBBindsContext(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	bound := base.DB(ctx)
	require.NotNil(t, bound.Statement)
	require.Equal(t, ctx, bound.Statement.Context)

	require.Same(t, conn, base.DB(nil))
}

func TestFirstOrNil(t *testing.T) {
	conn := dbtest.Open(t, &models.SubscriptionPlan{})
	ctx := context.Background()

	missing, err := FirstOrNil[models.SubscriptionPlan](conn.WithContext(ctx).Where("shop = ?", "none"))
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, conn.Create(&models.SubscriptionPlan{
		Shop:               "demo.myshopify.com",
		SellingPlanGroupID: "gid://shopify/SellingPlanGroup/1",
		Name:               "Weekly",
	}).Error)
	found, err := FirstOrNil[models.SubscriptionPlan](conn.WithContext(ctx).Where("shop = ?", "demo.myshopify.com"))
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "Weekly", found.Name)
}
