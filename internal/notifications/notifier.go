package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/autopay-bridge/pkg/money"
)

// Notifier delivers operator alerts for the subscription pipeline.
type Notifier interface {
	SubscriptionSetup(ctx context.Context, notice SetupNotice) error
	PaymentReceived(ctx context.Context, notice PaymentNotice) error
}

// SetupNotice describes a freshly provisioned gateway subscription.
type SetupNotice struct {
	Shop           string
	CustomerName   string
	CustomerEmail  string
	PlanName       string
	SubscriptionID string
	OccurredAt     time.Time
}

// PaymentNotice describes a reconciled recurring charge.
type PaymentNotice struct {
	Shop           string
	CustomerName   string
	CustomerEmail  string
	PlanName       string
	SubscriptionID string
	PaymentID      string
	AmountMinor    int64
	Currency       string
	ShopifyOrderID string
	OccurredAt     time.Time
}

type message struct {
	subject string
	text    string
	html    string
}

func setupMessage(n SetupNotice) message {
	at := occurred(n.OccurredAt)
	return message{
		subject: "New Subscription Setup - " + n.PlanName,
		text: strings.Join([]string{
			"New Subscription Setup",
			"",
			"Customer Name: " + n.CustomerName,
			"Customer Email: " + n.CustomerEmail,
			"Subscription Plan: " + n.PlanName,
			"Razorpay Subscription ID: " + n.SubscriptionID,
			"Setup Date: " + at,
		}, "\n"),
		html: "<h2>New Subscription Setup</h2>" +
			htmlField("Customer Name", n.CustomerName) +
			htmlField("Customer Email", n.CustomerEmail) +
			htmlField("Subscription Plan", n.PlanName) +
			htmlField("Razorpay Subscription ID", n.SubscriptionID) +
			htmlField("Setup Date", at),
	}
}

func paymentMessage(n PaymentNotice) message {
	at := occurred(n.OccurredAt)
	amount := money.Format(money.FromMinor(n.AmountMinor), n.Currency)
	lines := []string{
		"New Subscription Payment Received",
		"",
		"Customer Name: " + n.CustomerName,
		"Customer Email: " + n.CustomerEmail,
		"Subscription Plan: " + n.PlanName,
		"Amount: " + amount,
	}
	html := "<h2>New Subscription Payment Received</h2>" +
		htmlField("Customer Name", n.CustomerName) +
		htmlField("Customer Email", n.CustomerEmail) +
		htmlField("Subscription Plan", n.PlanName) +
		htmlField("Amount", amount)
	if n.ShopifyOrderID != "" {
		lines = append(lines, "Shopify Order ID: "+n.ShopifyOrderID)
		html += htmlField("Shopify Order ID", n.ShopifyOrderID)
	}
	lines = append(lines, "Payment ID: "+n.PaymentID, "Payment Date: "+at)
	html += htmlField("Payment ID", n.PaymentID) + htmlField("Payment Date", at)
	return message{
		subject: "New Subscription Payment - " + n.PlanName,
		text:    strings.Join(lines, "\n"),
		html:    html,
	}
}

func htmlField(label, value string) string {
	return fmt.Sprintf("<p><strong>%s:</strong> %s</p>", label, htmlEscaper.Replace(value))
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func occurred(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC1123)
}
