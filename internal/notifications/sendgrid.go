package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/angelmondragon/autopay-bridge/pkg/config"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendgridNotifier emails the merchant's notification address.
type SendgridNotifier struct {
	sender mailSender
	from   *mail.Email
	to     *mail.Email
	logg   *logger.Logger
}

func NewSendgridNotifier(cfg config.SendgridConfig, logg *logger.Logger) (*SendgridNotifier, error) {
	if !cfg.Enabled() {
		return nil, errors.New("sendgrid api key, from email and notification email are required")
	}
	return newSendgridNotifier(sendgrid.NewSendClient(cfg.APIKey), cfg, logg), nil
}

func newSendgridNotifier(sender mailSender, cfg config.SendgridConfig, logg *logger.Logger) *SendgridNotifier {
	return &SendgridNotifier{
		sender: sender,
		from:   mail.NewEmail(cfg.FromName, strings.TrimSpace(cfg.FromEmail)),
		to:     mail.NewEmail("", strings.TrimSpace(cfg.NotificationEmail)),
		logg:   logg,
	}
}

func (n *SendgridNotifier) SubscriptionSetup(ctx context.Context, notice SetupNotice) error {
	return n.send(ctx, setupMessage(notice))
}

func (n *SendgridNotifier) PaymentReceived(ctx context.Context, notice PaymentNotice) error {
	return n.send(ctx, paymentMessage(notice))
}

func (n *SendgridNotifier) send(ctx context.Context, msg message) error {
	p := mail.NewPersonalization()
	p.AddTos(n.to)

	m := mail.NewV3Mail()
	m.SetFrom(n.from)
	m.Subject = msg.subject
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", msg.text), mail.NewContent("text/html", msg.html))

	resp, err := n.sender.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp != nil && resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	if n.logg != nil {
		n.logg.Info(n.logg.WithField(ctx, "subject", msg.subject), "notification.email.sent")
	}
	return nil
}

// LogNotifier writes what would have been emailed. Used when mail is not configured.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) SubscriptionSetup(ctx context.Context, notice SetupNotice) error {
	n.log(ctx, setupMessage(notice), map[string]any{
		"subscription_id": notice.SubscriptionID,
		"plan":            notice.PlanName,
	})
	return nil
}

func (n *LogNotifier) PaymentReceived(ctx context.Context, notice PaymentNotice) error {
	n.log(ctx, paymentMessage(notice), map[string]any{
		"subscription_id": notice.SubscriptionID,
		"payment_id":      notice.PaymentID,
		"plan":            notice.PlanName,
	})
	return nil
}

func (n *LogNotifier) log(ctx context.Context, msg message, fields map[string]any) {
	if n.logg == nil {
		return
	}
	fields["subject"] = msg.subject
	n.logg.Info(n.logg.WithFields(ctx, fields), "notification.email.skipped")
}

// NewFromConfig picks SendGrid when configured and falls back to logging.
func NewFromConfig(cfg config.SendgridConfig, logg *logger.Logger) Notifier {
	if cfg.Enabled() {
		if n, err := NewSendgridNotifier(cfg, logg); err == nil {
			return n
		}
	}
	return NewLogNotifier(logg)
}
