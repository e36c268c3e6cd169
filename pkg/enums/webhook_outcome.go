package enums

// WebhookOutcome labels how a delivery was resolved. Used for logs and metrics.
type WebhookOutcome string

const (
	WebhookOutcomeIgnored         WebhookOutcome = "ignored"
	WebhookOutcomeDuplicate       WebhookOutcome = "duplicate"
	WebhookOutcomeRecorded        WebhookOutcome = "recorded"
	WebhookOutcomeReconciled      WebhookOutcome = "reconciled"
	WebhookOutcomeReconcileFailed WebhookOutcome = "reconcile_failed"
	WebhookOutcomeProvisioned     WebhookOutcome = "provisioned"
	WebhookOutcomeRejected        WebhookOutcome = "rejected"
	WebhookOutcomeFailed          WebhookOutcome = "failed"
)

// String implements fmt.Stringer.
func (o WebhookOutcome) String() string {
	return string(o)
}
