package enums

import "testing"

func TestBillingIntervalGatewayPeriod(t *testing.T) {
	cases := map[BillingInterval]string{
		BillingIntervalDay:   "daily",
		BillingIntervalWeek:  "weekly",
		BillingIntervalMonth: "monthly",
		BillingIntervalYear:  "yearly",
		"FORTNIGHT":          "monthly",
	}
	for interval, want := range cases {
		if got := interval.GatewayPeriod(); got != want {
			t.Fatalf("%s: expected %s got %s", interval, want, got)
		}
	}
}

func TestParseBillingInterval(t *testing.T) {
	got, err := ParseBillingInterval(" week ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != BillingIntervalWeek {
		t.Fatalf("expected WEEK, got %s", got)
	}
	if _, err := ParseBillingInterval("hourly"); err == nil {
		t.Fatal("expected error for unknown interval")
	}
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("Captured")
	if err != nil || got != PaymentStatusCaptured {
		t.Fatalf("expected captured, got %s (%v)", got, err)
	}
	if _, err := ParsePaymentStatus("settled"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestPaymentEventHandled(t *testing.T) {
	if !PaymentEventCaptured.Handled() || !PaymentEventAuthorized.Handled() {
		t.Fatal("authorized and captured must be handled")
	}
	if PaymentEvent("payment.failed").Handled() {
		t.Fatal("payment.failed is not handled")
	}
}
