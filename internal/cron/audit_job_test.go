package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/internal/payments"
	"github.com/angelmondragon/autopay-bridge/internal/subscriptions"
	"github.com/angelmondragon/autopay-bridge/pkg/db/dbtest"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/metrics"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
)

type stubFetcher struct {
	subs map[string]*razorpay.Subscription
	errs map[string]error
}

func (s stubFetcher) GetSubscription(_ context.Context, id string) (*razorpay.Subscription, error) {
	if err := s.errs[id]; err != nil {
		return nil, err
	}
	return s.subs[id], nil
}

func seedMapping(t *testing.T, conn *gorm.DB, subID string) {
	t.Helper()
	order := "gid://shopify/Order/" + subID
	require.NoError(t, conn.Create(&models.SubscriptionMapping{
		GatewaySubscriptionID: subID,
		GatewayCustomerID:     "cust_1",
		GatewayPlanID:         "plan_1",
		Shop:                  "demo.myshopify.com",
		ShopifyOrderID:        &order,
		CustomerEmail:         "asha@example.com",
		CustomerName:          "Asha",
		PlanID:                "gid://shopify/SellingPlanGroup/9",
		PlanName:              "Monthly/1",
		Amount:                decimal.NewFromInt(1000),
		Currency:              "INR",
		Status:                "active",
		LineItems:             json.RawMessage(`[]`),
	}).Error)
}

func seedPayment(t *testing.T, conn *gorm.DB, subID, paymentID string, reconciled bool) {
	t.Helper()
	record := &models.PaymentRecord{
		GatewayPaymentID:      paymentID,
		GatewaySubscriptionID: subID,
		AmountMinor:           100000,
		Currency:              "INR",
		Status:                enums.PaymentStatusAuthorized,
	}
	if reconciled {
		order := "gid://shopify/Order/" + paymentID
		record.ShopifyOrderID = &order
		record.Status = enums.PaymentStatusCaptured
	}
	require.NoError(t, conn.Create(record).Error)
}

func TestAuditJobReportsGaps(t *testing.T) {
	conn := dbtest.Open(t, &models.SubscriptionMapping{}, &models.PaymentRecord{})
	seedMapping(t, conn, "sub_ok")
	seedMapping(t, conn, "sub_gap")
	seedMapping(t, conn, "sub_gone")
	seedPayment(t, conn, "sub_ok", "pay_1", true)
	seedPayment(t, conn, "sub_ok", "pay_2", true)
	seedPayment(t, conn, "sub_gap", "pay_3", true)
	seedPayment(t, conn, "sub_gap", "pay_4", false)

	reg := prometheus.NewRegistry()
	job, err := NewAuditJob(AuditJobParams{
		Mappings: subscriptions.NewRepository(conn),
		Payments: payments.NewRepository(conn),
		Gateway: stubFetcher{subs: map[string]*razorpay.Subscription{
			"sub_ok":  {ID: "sub_ok", Status: "active", PaidCount: 2},
			"sub_gap": {ID: "sub_gap", Status: "active", PaidCount: 3},
		}},
		Metrics: metrics.NewReconciliationMetrics(reg),
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)

	result, err := job.Audit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, result.Audited)
	require.Len(t, result.Gaps, 1)
	require.Equal(t, "sub_gap", result.Gaps[0].GatewaySubscriptionID)
	require.EqualValues(t, 1, result.Gaps[0].Reconciled)
	require.EqualValues(t, 2, result.Gaps[0].Missing())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		values[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
	}
	require.Equal(t, 1.0, values["autopay_reconciliation_gap_subscriptions"])
	require.Equal(t, 3.0, values["autopay_reconciliation_audited_subscriptions"])

	var count int64
	require.NoError(t, conn.Model(&models.PaymentRecord{}).Count(&count).Error)
	require.EqualValues(t, 4, count)
}

func TestAuditJobCollectsFetchErrors(t *testing.T) {
	conn := dbtest.Open(t, &models.SubscriptionMapping{}, &models.PaymentRecord{})
	seedMapping(t, conn, "sub_a")
	seedMapping(t, conn, "sub_b")
	seedMapping(t, conn, "sub_c")

	job, err := NewAuditJob(AuditJobParams{
		Mappings: subscriptions.NewRepository(conn),
		Payments: payments.NewRepository(conn),
		Gateway: stubFetcher{
			subs: map[string]*razorpay.Subscription{"sub_c": {ID: "sub_c", PaidCount: 1}},
			errs: map[string]error{
				"sub_a": errors.New("timeout"),
				"sub_b": errors.New("bad gateway"),
			},
		},
		Logger: logger.Nop(),
	})
	require.NoError(t, err)

	result, err := job.Audit(context.Background())
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2)
	require.Equal(t, 1, result.Audited)
	require.Len(t, result.Gaps, 1)
	require.Equal(t, "sub_c", result.Gaps[0].GatewaySubscriptionID)
}

func TestNewAuditJobValidates(t *testing.T) {
	_, err := NewAuditJob(AuditJobParams{Logger: logger.Nop()})
	require.Error(t, err)
}
