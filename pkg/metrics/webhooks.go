package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics counts webhook deliveries by source and outcome.
type WebhookMetrics struct {
	deliveries *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook counters on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_deliveries_total",
		Help:      "Webhook deliveries by source and outcome.",
	}, []string{"source", "outcome"})
	reg.MustRegister(deliveries)
	return &WebhookMetrics{deliveries: deliveries}
}

// Observe increments the delivery counter.
func (w *WebhookMetrics) Observe(source, outcome string) {
	if w == nil || w.deliveries == nil {
		return
	}
	w.deliveries.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

// ReconciliationMetrics exposes the latest audit snapshot.
type ReconciliationMetrics struct {
	gaps    prometheus.Gauge
	audited prometheus.Gauge
}

// NewReconciliationMetrics registers the audit gauges on the provided registerer.
func NewReconciliationMetrics(reg prometheus.Registerer) *ReconciliationMetrics {
	if reg == nil {
		return &ReconciliationMetrics{}
	}
	gaps := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconciliation_gap_subscriptions",
		Help:      "Subscriptions whose gateway paid count exceeds reconciled payment records.",
	})
	audited := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconciliation_audited_subscriptions",
		Help:      "Subscriptions inspected by the last audit run.",
	})
	reg.MustRegister(gaps, audited)
	return &ReconciliationMetrics{gaps: gaps, audited: audited}
}

// SetSnapshot records the outcome of one audit pass.
func (r *ReconciliationMetrics) SetSnapshot(audited, gaps int) {
	if r == nil || r.gaps == nil {
		return
	}
	r.audited.Set(float64(audited))
	r.gaps.Set(float64(gaps))
}
