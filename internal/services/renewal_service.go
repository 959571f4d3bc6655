package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mlmadmin/internal/events"
	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

type RenewalServiceInterface interface {
	RenewDue(ctx context.Context, now time.Time) (*resp.RenewalReport, error)
}

type RenewalService struct {
	subs        repositories.SubscriptionRepository
	payments    repositories.PaymentRepository
	gateways    *GatewayRegistry
	commissions CommissionServiceInterface
	bus         events.Publisher
	graceDays   int

	running sync.Mutex
}

func NewRenewalService(
	subs repositories.SubscriptionRepository,
	payments repositories.PaymentRepository,
	gateways *GatewayRegistry,
	commissions CommissionServiceInterface,
	bus events.Publisher,
	graceDays int,
) *RenewalService {
	return &RenewalService{
		subs:        subs,
		payments:    payments,
		gateways:    gateways,
		commissions: commissions,
		bus:         bus,
		graceDays:   graceDays,
	}
}

// RenewDue runs one billing pass. Only one pass runs at a time; a concurrent
// call gets ErrRenewalInProgress.
func (s *RenewalService) RenewDue(ctx context.Context, now time.Time) (*resp.RenewalReport, error) {
	if !s.running.TryLock() {
		return nil, utils.ErrRenewalInProgress
	}
	defer s.running.Unlock()

	now = now.UTC()
	report := &resp.RenewalReport{}

	if err := s.closeLapsed(ctx, now, report); err != nil {
		return nil, err
	}
	if err := s.expirePastDue(ctx, now, report); err != nil {
		return nil, err
	}

	due, err := s.subs.ListDue(ctx, now.Unix())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	for i := range due {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, ctx.Err().Error())
			break
		}
		report.Processed++
		s.renewOne(ctx, &due[i], now, report)
	}

	logrus.WithFields(logrus.Fields{
		"processed": report.Processed,
		"renewed":   report.Renewed,
		"failed":    report.Failed,
		"skipped":   report.Skipped,
		"expired":   report.Expired,
	}).Info("renewal run finished")
	return report, nil
}

// closeLapsed ends subscriptions that were set not to renew.
func (s *RenewalService) closeLapsed(ctx context.Context, now time.Time, report *resp.RenewalReport) error {
	lapsed, err := s.subs.ListLapsed(ctx, now.Unix())
	if err != nil {
		return utils.ErrDatabaseError
	}

	for i := range lapsed {
		sub := &lapsed[i]
		evt := events.SubscriptionExpired
		sub.Status = db_models.SubStatusExpired
		if sub.CanceledAt != nil {
			evt = events.SubscriptionCanceled
			sub.Status = db_models.SubStatusCanceled
		}
		if err := s.subs.Save(ctx, sub); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: close lapsed: %v", sub.ID, err))
			continue
		}
		report.Expired++
		s.bus.Publish(ctx, subscriptionEvent(evt, sub, &sub.Plan, nil, "period ended"))
	}
	return nil
}

// expirePastDue gives up on subscriptions that stayed past due longer than
// the grace period.
func (s *RenewalService) expirePastDue(ctx context.Context, now time.Time, report *resp.RenewalReport) error {
	cutoff := now.AddDate(0, 0, -s.graceDays).Unix()
	stale, err := s.subs.ListPastDueSince(ctx, cutoff)
	if err != nil {
		return utils.ErrDatabaseError
	}

	for i := range stale {
		sub := &stale[i]
		sub.Status = db_models.SubStatusExpired
		sub.AutoRenew = false
		if err := s.subs.Save(ctx, sub); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: expire: %v", sub.ID, err))
			continue
		}
		report.Expired++
		s.bus.Publish(ctx, subscriptionEvent(events.SubscriptionExpired, sub, &sub.Plan, nil,
			fmt.Sprintf("past due for more than %d days", s.graceDays)))
	}
	return nil
}

func (s *RenewalService) renewOne(ctx context.Context, sub *db_models.Subscription, now time.Time, report *resp.RenewalReport) {
	plan := &sub.Plan
	log := logrus.WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"account_id":      sub.AccountID,
		"provider":        sub.Provider,
	})

	var payment *db_models.Payment
	if plan.PriceMinor > 0 {
		gateway, err := s.gateways.Resolve(sub.Provider)
		if err != nil {
			s.markFailed(ctx, sub, now, err, report)
			return
		}

		chargeKey := renewalChargeKey(sub)
		result, err := gateway.Charge(ctx, ChargeRequest{
			AccountID:        sub.AccountID,
			SubscriptionID:   sub.ID,
			AmountMinor:      plan.PriceMinor,
			Currency:         plan.Currency,
			CustomerRef:      sub.ProviderCustomerID,
			PaymentMethodRef: sub.PaymentMethodRef,
			IdempotencyKey:   chargeKey,
			Description:      fmt.Sprintf("Renewal %s", plan.Code),
		})
		if err != nil {
			recordFailedPayment(ctx, s.payments, sub.AccountID, &sub.ID, plan, gateway.Name(), err)
			s.markFailed(ctx, sub, now, err, report)
			return
		}

		prior, err := s.payments.FindByGatewayRef(ctx, gateway.Name(), result.GatewayRef)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: lookup gateway ref: %v", sub.ID, err))
			return
		}

		switch {
		case prior == nil:
			payment, err = recordPaidPayment(ctx, s.payments, sub, plan, gateway.Name(), result.GatewayRef, chargeKey, now)
			if errors.Is(err, utils.ErrDuplicateGatewayRef) {
				report.Skipped++
				return
			}
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: record payment: %v", sub.ID, err))
				return
			}
		case chargedFor(prior, sub, chargeKey):
			// An earlier run recorded this period's payment but stopped before
			// extending the subscription.
			log.WithField("gateway_ref", result.GatewayRef).Info("completing renewal from recorded payment")
			payment = prior
		default:
			log.WithField("gateway_ref", result.GatewayRef).Warn("gateway reference belongs to another payment, skipping")
			report.Skipped++
			return
		}
	}

	from := time.Unix(sub.EndsAt, 0).UTC()
	next := utils.AddBillingPeriod(from, string(plan.Period))
	if !next.After(now) {
		from = now
		next = utils.AddBillingPeriod(now, string(plan.Period))
	}
	sub.StartsAt = from.Unix()
	sub.EndsAt = next.Unix()
	sub.Status = db_models.SubStatusActive
	sub.PastDueAt = nil

	if err := s.subs.Save(ctx, sub); err != nil {
		log.WithError(err).Error("payment recorded but subscription not extended")
		report.Failed++
		report.Errors = append(report.Errors, fmt.Sprintf("%s: extend: %v", sub.ID, err))
		return
	}

	distributeSubscriptionCommissions(ctx, s.commissions, sub, plan, payment)
	s.bus.Publish(ctx, subscriptionEvent(events.SubscriptionRenewed, sub, plan, payment, ""))
	report.Renewed++
}

// renewalChargeKey is stable for one billing period, so a retried charge for
// the same period is deduplicated by the gateway.
func renewalChargeKey(sub *db_models.Subscription) string {
	return fmt.Sprintf("%s:%d", sub.ID, sub.EndsAt)
}

func (s *RenewalService) markFailed(ctx context.Context, sub *db_models.Subscription, now time.Time, cause error, report *resp.RenewalReport) {
	report.Failed++
	report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", sub.ID, cause))

	// Retries inside the grace period stay quiet; only the first failure
	// notifies.
	firstFailure := sub.PastDueAt == nil
	sub.Status = db_models.SubStatusPastDue
	if firstFailure {
		ts := now.Unix()
		sub.PastDueAt = &ts
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		logrus.WithField("subscription_id", sub.ID).WithError(err).Error("mark subscription past due")
		return
	}
	if firstFailure {
		s.bus.Publish(ctx, subscriptionEvent(events.SubscriptionRenewalFailed, sub, &sub.Plan, nil, cause.Error()))
	}
}

// RenewalScheduler runs RenewDue on a fixed interval until stopped.
type RenewalScheduler struct {
	renewals RenewalServiceInterface
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRenewalScheduler(renewals RenewalServiceInterface, interval time.Duration) *RenewalScheduler {
	return &RenewalScheduler{renewals: renewals, interval: interval}
}

func (r *RenewalScheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				if _, err := r.renewals.RenewDue(ctx, t); err != nil && !errors.Is(err, utils.ErrRenewalInProgress) {
					logrus.WithError(err).Error("scheduled renewal run failed")
				}
			}
		}
	}()
	logrus.WithField("interval", r.interval).Info("renewal scheduler started")
}

func (r *RenewalScheduler) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
