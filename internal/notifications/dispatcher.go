package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/autopay-bridge/pkg/logger"
)

const defaultSendTimeout = 15 * time.Second

// Dispatcher sends notifications in the background. Callers never observe
// the outcome; failures and panics are logged here.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logg     *logger.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, logg *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{notifier: notifier, timeout: timeout, logg: logg}
}

func (d *Dispatcher) SubscriptionSetup(ctx context.Context, notice SetupNotice) {
	d.dispatch(ctx, "subscription_setup", func(ctx context.Context) error {
		return d.notifier.SubscriptionSetup(ctx, notice)
	})
}

func (d *Dispatcher) PaymentReceived(ctx context.Context, notice PaymentNotice) {
	d.dispatch(ctx, "payment_received", func(ctx context.Context) error {
		return d.notifier.PaymentReceived(ctx, notice)
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, kind string, send func(context.Context) error) {
	if d == nil || d.notifier == nil {
		return
	}
	// detach from the request so the send outlives the webhook response
	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				d.logError(sendCtx, kind, fmt.Errorf("notifier panic: %v", r))
			}
		}()
		if err := send(sendCtx); err != nil {
			d.logError(sendCtx, kind, err)
		}
	}()
}

func (d *Dispatcher) logError(ctx context.Context, kind string, err error) {
	if d.logg == nil {
		return
	}
	d.logg.Error(d.logg.WithField(ctx, "notification", kind), "notification.failed", err)
}

// Wait blocks until in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
