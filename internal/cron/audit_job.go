package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/metrics"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
)

const defaultAuditLimit = 200

type auditMappings interface {
	ListForAudit(ctx context.Context, limit int) ([]models.SubscriptionMapping, error)
}

type auditPayments interface {
	CountReconciled(ctx context.Context, gatewaySubscriptionID string) (int64, error)
}

type subscriptionFetcher interface {
	GetSubscription(ctx context.Context, id string) (*razorpay.Subscription, error)
}

type AuditJobParams struct {
	Mappings auditMappings
	Payments auditPayments
	Gateway  subscriptionFetcher
	Metrics  *metrics.ReconciliationMetrics
	Logger   *logger.Logger
	Limit    int
}

// AuditResult summarizes one pass.
type AuditResult struct {
	Audited int
	Gaps    []AuditGap
}

// AuditGap is a subscription the gateway reports as charged more often than
// there are storefront orders for it.
type AuditGap struct {
	Shop                  string
	GatewaySubscriptionID string
	PaidCount             int
	Reconciled            int64
}

func (g AuditGap) Missing() int64 { return int64(g.PaidCount) - g.Reconciled }

// AuditJob compares gateway paid counts with reconciled payment records. It
// only reads; closing a gap is left to operators.
type AuditJob struct {
	mappings auditMappings
	payments auditPayments
	gateway  subscriptionFetcher
	metrics  *metrics.ReconciliationMetrics
	logg     *logger.Logger
	limit    int
}

func NewAuditJob(params AuditJobParams) (*AuditJob, error) {
	if params.Mappings == nil {
		return nil, fmt.Errorf("mapping repo required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment repo required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return &AuditJob{
		mappings: params.Mappings,
		payments: params.Payments,
		gateway:  params.Gateway,
		metrics:  params.Metrics,
		logg:     params.Logger,
		limit:    limit,
	}, nil
}

func (j *AuditJob) Name() string { return "reconciliation-audit" }

func (j *AuditJob) Run(ctx context.Context) error {
	_, err := j.Audit(ctx)
	return err
}

// Audit inspects up to the configured number of mappings. Per-mapping failures
// are collected and do not stop the pass; the gauge reflects what was audited.
func (j *AuditJob) Audit(ctx context.Context) (AuditResult, error) {
	var result AuditResult
	mappings, err := j.mappings.ListForAudit(ctx, j.limit)
	if err != nil {
		return result, fmt.Errorf("list mappings for audit: %w", err)
	}

	var errs error
	for i := range mappings {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		gap, ok, err := j.auditOne(ctx, &mappings[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		result.Audited++
		if ok {
			result.Gaps = append(result.Gaps, gap)
		}
	}

	j.metrics.SetSnapshot(result.Audited, len(result.Gaps))
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"candidates": len(mappings),
		"audited":    result.Audited,
		"gaps":       len(result.Gaps),
		"errors":     len(multierr.Errors(errs)),
	}), "cron.audit.complete")
	return result, errs
}

func (j *AuditJob) auditOne(ctx context.Context, mapping *models.SubscriptionMapping) (AuditGap, bool, error) {
	ctx = j.logg.WithSubscriptionID(j.logg.WithShop(ctx, mapping.Shop), mapping.GatewaySubscriptionID)

	remote, err := j.gateway.GetSubscription(ctx, mapping.GatewaySubscriptionID)
	if err != nil {
		return AuditGap{}, false, fmt.Errorf("fetch subscription %s: %w", mapping.GatewaySubscriptionID, err)
	}
	if remote == nil {
		j.logg.Warn(ctx, "cron.audit.subscription_missing")
		return AuditGap{}, false, nil
	}
	if remote.Status != "" && remote.Status != mapping.Status {
		j.logg.Debug(j.logg.WithFields(ctx, map[string]any{
			"local_status":   mapping.Status,
			"gateway_status": remote.Status,
		}), "cron.audit.status_drift")
	}

	reconciled, err := j.payments.CountReconciled(ctx, mapping.GatewaySubscriptionID)
	if err != nil {
		return AuditGap{}, false, fmt.Errorf("count reconciled payments %s: %w", mapping.GatewaySubscriptionID, err)
	}
	if int64(remote.PaidCount) <= reconciled {
		return AuditGap{}, false, nil
	}

	gap := AuditGap{
		Shop:                  mapping.Shop,
		GatewaySubscriptionID: mapping.GatewaySubscriptionID,
		PaidCount:             remote.PaidCount,
		Reconciled:            reconciled,
	}
	j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
		"paid_count": gap.PaidCount,
		"reconciled": gap.Reconciled,
		"missing":    gap.Missing(),
	}), "cron.audit.gap")
	return gap, true, nil
}
