package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mlmadmin/internal/events"
	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

type SubscriptionServiceInterface interface {
	Subscribe(ctx context.Context, accountID uuid.UUID, req request_models.SubscribeRequest) (*resp.SubscriptionResponse, error)
	Cancel(ctx context.Context, accountID, subscriptionID uuid.UUID, atPeriodEnd bool) (*resp.SubscriptionResponse, error)
	GetCurrent(ctx context.Context, accountID uuid.UUID) (*resp.SubscriptionResponse, error)
	List(ctx context.Context, status string, page, pageSize int) ([]resp.SubscriptionResponse, int64, error)
}

type subscriptionService struct {
	subs        repositories.SubscriptionRepository
	plans       repositories.IPlanRepository
	accounts    repositories.AccountRepository
	payments    repositories.PaymentRepository
	gateways    *GatewayRegistry
	commissions CommissionServiceInterface
	bus         events.Publisher
	now         func() time.Time
}

func NewSubscriptionService(
	subs repositories.SubscriptionRepository,
	plans repositories.IPlanRepository,
	accounts repositories.AccountRepository,
	payments repositories.PaymentRepository,
	gateways *GatewayRegistry,
	commissions CommissionServiceInterface,
	bus events.Publisher,
) SubscriptionServiceInterface {
	return &subscriptionService{
		subs:        subs,
		plans:       plans,
		accounts:    accounts,
		payments:    payments,
		gateways:    gateways,
		commissions: commissions,
		bus:         bus,
		now:         time.Now,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, accountID uuid.UUID, req request_models.SubscribeRequest) (*resp.SubscriptionResponse, error) {
	plan, err := s.plans.GetPlanByCode(ctx, req.PlanCode)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if plan == nil {
		return nil, utils.ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, utils.ErrPlanInactive
	}

	account, err := s.accounts.FindById(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	if account.Status == db_models.AccountSuspended {
		return nil, utils.ErrAccountSuspended
	}

	current, err := s.subs.FindCurrent(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if current != nil {
		return nil, utils.ErrAlreadySubscribed
	}

	gateway, err := s.gateways.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sub := &db_models.Subscription{
		BaseModel:          db_models.BaseModel{ID: uuid.New()},
		AccountID:          accountID,
		PlanID:             plan.ID,
		StartsAt:           now.Unix(),
		AutoRenew:          true,
		Provider:           gateway.Name(),
		ProviderCustomerID: req.CustomerRef,
		PaymentMethodRef:   req.PaymentMethodRef,
		Metadata:           jsonRaw(map[string]any{"plan_code": plan.Code}),
	}

	// Trials and free plans start without a charge; the renewal run bills
	// when the first period ends.
	if plan.TrialDays > 0 || plan.PriceMinor == 0 {
		if plan.TrialDays > 0 {
			sub.Status = db_models.SubStatusTrialing
			sub.EndsAt = now.AddDate(0, 0, int(plan.TrialDays)).Unix()
		} else {
			sub.Status = db_models.SubStatusActive
			sub.EndsAt = utils.AddBillingPeriod(now, string(plan.Period)).Unix()
		}
		if err := s.subs.Create(ctx, sub); err != nil {
			return nil, utils.ErrDatabaseError
		}
		s.publish(ctx, events.SubscriptionActivated, sub, plan, nil, "")
		return toSubscriptionResponse(sub, plan), nil
	}

	chargeKey := fmt.Sprintf("%s:initial", sub.ID)
	result, err := gateway.Charge(ctx, ChargeRequest{
		AccountID:        accountID,
		SubscriptionID:   sub.ID,
		AmountMinor:      plan.PriceMinor,
		Currency:         plan.Currency,
		CustomerRef:      req.CustomerRef,
		PaymentMethodRef: req.PaymentMethodRef,
		IdempotencyKey:   chargeKey,
		Description:      fmt.Sprintf("Subscription %s", plan.Code),
	})
	if err != nil {
		recordFailedPayment(ctx, s.payments, accountID, nil, plan, gateway.Name(), err)
		if errors.Is(err, utils.ErrPaymentDeclined) || errors.Is(err, utils.ErrInsufficientBalance) {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"gateway":    gateway.Name(),
		}).WithError(err).Error("initial subscription charge failed")
		return nil, utils.ErrPaymentDeclined
	}

	sub.Status = db_models.SubStatusActive
	sub.EndsAt = utils.AddBillingPeriod(now, string(plan.Period)).Unix()
	if err := s.subs.Create(ctx, sub); err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id":  accountID,
			"gateway_ref": result.GatewayRef,
		}).WithError(err).Error("charge succeeded but subscription insert failed")
		return nil, utils.ErrDatabaseError
	}

	payment, err := recordPaidPayment(ctx, s.payments, sub, plan, gateway.Name(), result.GatewayRef, chargeKey, now)
	if err != nil {
		return nil, err
	}

	distributeSubscriptionCommissions(ctx, s.commissions, sub, plan, payment)
	s.publish(ctx, events.SubscriptionActivated, sub, plan, payment, "")
	return toSubscriptionResponse(sub, plan), nil
}

func (s *subscriptionService) Cancel(ctx context.Context, accountID, subscriptionID uuid.UUID, atPeriodEnd bool) (*resp.SubscriptionResponse, error) {
	sub, err := s.subs.FindById(ctx, subscriptionID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if sub == nil || sub.AccountID != accountID {
		return nil, utils.ErrSubscriptionNotFound
	}
	if sub.Status == db_models.SubStatusCanceled || sub.Status == db_models.SubStatusExpired {
		return toSubscriptionResponse(sub, &sub.Plan), nil
	}

	now := s.now().UTC().Unix()
	sub.AutoRenew = false
	sub.CanceledAt = &now
	if !atPeriodEnd {
		sub.Status = db_models.SubStatusCanceled
		sub.EndsAt = now
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		return nil, utils.ErrDatabaseError
	}

	if !atPeriodEnd {
		s.publish(ctx, events.SubscriptionCanceled, sub, &sub.Plan, nil, "canceled by member")
	}
	return toSubscriptionResponse(sub, &sub.Plan), nil
}

func (s *subscriptionService) GetCurrent(ctx context.Context, accountID uuid.UUID) (*resp.SubscriptionResponse, error) {
	sub, err := s.subs.FindCurrent(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}
	return toSubscriptionResponse(sub, &sub.Plan), nil
}

func (s *subscriptionService) List(ctx context.Context, status string, page, pageSize int) ([]resp.SubscriptionResponse, int64, error) {
	subs, total, err := s.subs.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}

	out := make([]resp.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, *toSubscriptionResponse(&subs[i], &subs[i].Plan))
	}
	return out, total, nil
}

func (s *subscriptionService) publish(ctx context.Context, typ events.EventType, sub *db_models.Subscription, plan *db_models.Plan, payment *db_models.Payment, reason string) {
	s.bus.Publish(ctx, subscriptionEvent(typ, sub, plan, payment, reason))
}

// ------------------- shared with the renewal run -------------------

// paymentMeta is the metadata stored on subscription payments. ChargeKey is
// the idempotency key the gateway was charged under.
type paymentMeta struct {
	PlanCode  string `json:"plan_code"`
	ChargeKey string `json:"charge_key,omitempty"`
}

func recordPaidPayment(ctx context.Context, payments repositories.PaymentRepository, sub *db_models.Subscription, plan *db_models.Plan, gateway, ref, chargeKey string, paidAt time.Time) (*db_models.Payment, error) {
	paid := paidAt.Unix()
	payment := &db_models.Payment{
		AccountID:      sub.AccountID,
		SubscriptionID: &sub.ID,
		AmountMinor:    plan.PriceMinor,
		Currency:       plan.Currency,
		Status:         db_models.PaymentStatusPaid,
		Gateway:        gateway,
		GatewayRef:     &ref,
		PaidAt:         &paid,
		Metadata:       jsonRaw(paymentMeta{PlanCode: plan.Code, ChargeKey: chargeKey}),
	}
	if err := payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repositories.ErrDuplicateGatewayRef) {
			return nil, utils.ErrDuplicateGatewayRef
		}
		return nil, utils.ErrDatabaseError
	}
	return payment, nil
}

func recordFailedPayment(ctx context.Context, payments repositories.PaymentRepository, accountID uuid.UUID, subID *uuid.UUID, plan *db_models.Plan, gateway string, cause error) {
	payment := &db_models.Payment{
		AccountID:      accountID,
		SubscriptionID: subID,
		AmountMinor:    plan.PriceMinor,
		Currency:       plan.Currency,
		Status:         db_models.PaymentStatusFailed,
		Gateway:        gateway,
		FailureReason:  cause.Error(),
		Metadata:       jsonRaw(paymentMeta{PlanCode: plan.Code}),
	}
	if err := payments.Create(ctx, payment); err != nil {
		logrus.WithField("account_id", accountID).WithError(err).Error("record failed payment")
	}
}

// chargedFor reports whether payment is the paid charge of sub made under
// chargeKey.
func chargedFor(payment *db_models.Payment, sub *db_models.Subscription, chargeKey string) bool {
	if payment.Status != db_models.PaymentStatusPaid || payment.SubscriptionID == nil || *payment.SubscriptionID != sub.ID {
		return false
	}
	var meta paymentMeta
	if err := json.Unmarshal(payment.Metadata, &meta); err != nil {
		return false
	}
	return meta.ChargeKey == chargeKey
}

// distributeSubscriptionCommissions never fails the caller; a payout error is
// logged and can be replayed later because commissions are unique per ref.
func distributeSubscriptionCommissions(ctx context.Context, commissions CommissionServiceInterface, sub *db_models.Subscription, plan *db_models.Plan, payment *db_models.Payment) {
	if commissions == nil || payment == nil || payment.GatewayRef == nil || payment.AmountMinor <= 0 {
		return
	}
	paid, err := commissions.Distribute(ctx, sub.AccountID, payment.AmountMinor, plan.Currency, db_models.SourceSubscription, *payment.GatewayRef)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"subscription_id": sub.ID,
			"gateway_ref":     *payment.GatewayRef,
		}).WithError(err).Error("commission distribution failed")
		return
	}
	if len(paid) > 0 {
		logrus.WithFields(logrus.Fields{
			"subscription_id": sub.ID,
			"payouts":         len(paid),
		}).Info("subscription commissions distributed")
	}
}

func subscriptionEvent(typ events.EventType, sub *db_models.Subscription, plan *db_models.Plan, payment *db_models.Payment, reason string) events.SubscriptionEvent {
	evt := events.SubscriptionEvent{
		Type:           typ,
		SubscriptionID: sub.ID,
		AccountID:      sub.AccountID,
		Provider:       sub.Provider,
		Reason:         reason,
		PeriodEnd:      time.Unix(sub.EndsAt, 0).UTC(),
	}
	if plan != nil {
		evt.PlanCode = plan.Code
		evt.PlanName = plan.Name
		evt.AmountMinor = plan.PriceMinor
		evt.Currency = plan.Currency
	}
	if payment != nil {
		evt.AmountMinor = payment.AmountMinor
		evt.Currency = payment.Currency
		if payment.GatewayRef != nil {
			evt.GatewayRef = *payment.GatewayRef
		}
	}
	return evt
}

func toSubscriptionResponse(sub *db_models.Subscription, plan *db_models.Plan) *resp.SubscriptionResponse {
	out := &resp.SubscriptionResponse{
		ID:        sub.ID,
		AccountID: sub.AccountID,
		Status:    string(sub.Status),
		Provider:  sub.Provider,
		StartsAt:  sub.StartsAt,
		EndsAt:    sub.EndsAt,
		AutoRenew: sub.AutoRenew,
	}
	if plan != nil {
		out.PlanCode = plan.Code
		out.PlanName = plan.Name
	}
	return out
}

func jsonRaw(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
