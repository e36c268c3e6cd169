package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/angelmondragon/autopay-bridge/pkg/config"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
)

type stubSender struct {
	mu     sync.Mutex
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (s *stubSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	if s.err != nil {
		return nil, s.err
	}
	status := s.status
	if status == 0 {
		status = 202
	}
	return &rest.Response{StatusCode: status}, nil
}

var sendgridCfg = config.SendgridConfig{
	APIKey:            "SG.test",
	FromEmail:         "bridge@example.com",
	FromName:          "Autopay Bridge",
	NotificationEmail: "ops@example.com",
}

func TestSendgridNotifierPaymentEmail(t *testing.T) {
	sender := &stubSender{}
	n := newSendgridNotifier(sender, sendgridCfg, logger.Nop())

	err := n.PaymentReceived(context.Background(), PaymentNotice{
		CustomerName:   "Asha",
		CustomerEmail:  "asha@example.com",
		PlanName:       "Monthly Box",
		PaymentID:      "pay_1",
		AmountMinor:    49950,
		Currency:       "inr",
		ShopifyOrderID: "gid://shopify/Order/2002",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	m := sender.sent[0]
	if m.Subject != "New Subscription Payment - Monthly Box" {
		t.Fatalf("unexpected subject %q", m.Subject)
	}
	if m.From.Address != "bridge@example.com" || m.Personalizations[0].To[0].Address != "ops@example.com" {
		t.Fatalf("unexpected addressing %+v", m)
	}
	text := m.Content[0].Value
	if !strings.Contains(text, "Amount: INR 499.50") || !strings.Contains(text, "Shopify Order ID: gid://shopify/Order/2002") {
		t.Fatalf("unexpected body %q", text)
	}
}

func TestSendgridNotifierSurfacesStatus(t *testing.T) {
	n := newSendgridNotifier(&stubSender{status: 401}, sendgridCfg, logger.Nop())
	if err := n.SubscriptionSetup(context.Background(), SetupNotice{PlanName: "Monthly"}); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestSetupMessageEscapesHTML(t *testing.T) {
	msg := setupMessage(SetupNotice{CustomerName: "<b>x</b>", PlanName: "Weekly", SubscriptionID: "sub_1"})
	if msg.subject != "New Subscription Setup - Weekly" {
		t.Fatalf("unexpected subject %q", msg.subject)
	}
	if strings.Contains(msg.html, "<b>x</b>") {
		t.Fatalf("expected html escaping, got %q", msg.html)
	}
	if !strings.Contains(msg.text, "Razorpay Subscription ID: sub_1") {
		t.Fatalf("unexpected text %q", msg.text)
	}
}

func TestNewFromConfigFallsBackToLog(t *testing.T) {
	if _, ok := NewFromConfig(config.SendgridConfig{}, logger.Nop()).(*LogNotifier); !ok {
		t.Fatalf("expected log notifier when sendgrid is not configured")
	}
	if _, ok := NewFromConfig(sendgridCfg, logger.Nop()).(*SendgridNotifier); !ok {
		t.Fatalf("expected sendgrid notifier when configured")
	}
}

type stubNotifier struct {
	mu       sync.Mutex
	setups   int
	payments int
	err      error
	panics   bool
	block    chan struct{}
}

func (s *stubNotifier) SubscriptionSetup(context.Context, SetupNotice) error {
	s.mu.Lock()
	s.setups++
	s.mu.Unlock()
	if s.panics {
		panic("boom")
	}
	return s.err
}

func (s *stubNotifier) PaymentReceived(ctx context.Context, _ PaymentNotice) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	s.payments++
	s.mu.Unlock()
	return s.err
}

func TestDispatcherContainsFailures(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("smtp down"), panics: true}
	d := NewDispatcher(notifier, time.Second, logger.Nop())

	d.SubscriptionSetup(context.Background(), SetupNotice{})
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if notifier.setups != 1 {
		t.Fatalf("expected one setup send, got %d", notifier.setups)
	}
}

func TestDispatcherOutlivesCanceledRequest(t *testing.T) {
	notifier := &stubNotifier{block: make(chan struct{})}
	d := NewDispatcher(notifier, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.PaymentReceived(ctx, PaymentNotice{})
	cancel()
	close(notifier.block)

	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.payments != 1 {
		t.Fatalf("expected send to complete after request cancel, got %d", notifier.payments)
	}
}

func TestDispatcherWaitHonorsContext(t *testing.T) {
	notifier := &stubNotifier{block: make(chan struct{})}
	d := NewDispatcher(notifier, time.Minute, logger.Nop())
	d.PaymentReceived(context.Background(), PaymentNotice{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(notifier.block)
	_ = d.Wait(context.Background())
}
