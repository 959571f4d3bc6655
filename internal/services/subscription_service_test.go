package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"mlmadmin/internal/events"
	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	"mlmadmin/pkg/utils"
)

type subscribeFixture struct {
	accounts    *fakeAccountRepo
	subs        *fakeSubscriptionRepo
	payments    *fakePaymentRepo
	gateway     *fakeGateway
	commissions *fakeCommissions
	bus         *fakePublisher
	member      *db_models.Account
	svc         SubscriptionServiceInterface
}

func newSubscribeFixture(plans ...db_models.Plan) *subscribeFixture {
	f := &subscribeFixture{
		accounts:    newFakeAccountRepo(),
		subs:        newFakeSubscriptionRepo(),
		payments:    &fakePaymentRepo{},
		gateway:     &fakeGateway{name: GatewayCard},
		commissions: &fakeCommissions{},
		bus:         &fakePublisher{},
	}
	f.member = f.accounts.add(&db_models.Account{Email: "member@example.com"})

	svc := NewSubscriptionService(f.subs, newFakePlanRepo(plans...), f.accounts, f.payments,
		NewGatewayRegistry(f.gateway), f.commissions, f.bus).(*subscriptionService)
	svc.now = func() time.Time { return renewalNow }
	f.svc = svc
	return f
}

func activePlan() db_models.Plan {
	p := monthlyPlan()
	p.IsActive = true
	return p
}

func cardRequest(code string) request_models.SubscribeRequest {
	return request_models.SubscribeRequest{PlanCode: code, Provider: GatewayCard, PaymentMethodRef: "pm_visa"}
}

func (f *subscribeFixture) allSubs() []db_models.Subscription {
	return f.subs.filter(func(db_models.Subscription) bool { return true })
}

func TestSubscribeChargesThenActivates(t *testing.T) {
	plan := activePlan()
	f := newSubscribeFixture(plan)

	res, err := f.svc.Subscribe(context.Background(), f.member.ID, cardRequest(plan.Code))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	wantEnd := utils.AddBillingPeriod(renewalNow, "month").Unix()
	if res.Status != string(db_models.SubStatusActive) || res.EndsAt != wantEnd || res.PlanCode != plan.Code {
		t.Fatalf("response = %+v", res)
	}

	if len(f.gateway.calls) != 1 {
		t.Fatalf("charges = %d", len(f.gateway.calls))
	}
	call := f.gateway.calls[0]
	if call.AmountMinor != 1999 || call.IdempotencyKey != fmt.Sprintf("%s:initial", res.ID) || call.PaymentMethodRef != "pm_visa" {
		t.Fatalf("charge = %+v", call)
	}

	paid := f.payments.withStatus(db_models.PaymentStatusPaid)
	if len(paid) != 1 || paid[0].SubscriptionID == nil || *paid[0].SubscriptionID != res.ID {
		t.Fatalf("paid payments = %+v", paid)
	}
	if stored := f.subs.get(res.ID); stored.Status != db_models.SubStatusActive || !stored.AutoRenew {
		t.Fatalf("stored sub = %+v", stored)
	}
	if len(f.commissions.calls) != 1 || f.commissions.calls[0].source != db_models.SourceSubscription {
		t.Fatalf("commission calls = %+v", f.commissions.calls)
	}
	if len(f.bus.ofType(events.SubscriptionActivated)) != 1 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestSubscribeWithoutChargeForTrialsAndFreePlans(t *testing.T) {
	trial := activePlan()
	trial.Code = "pro_trial"
	trial.TrialDays = 14

	free := activePlan()
	free.Code = "starter_free"
	free.PriceMinor = 0

	tests := []struct {
		name       string
		plan       db_models.Plan
		wantStatus db_models.SubscriptionStatus
		wantEnd    int64
	}{
		{"trial", trial, db_models.SubStatusTrialing, renewalNow.AddDate(0, 0, 14).Unix()},
		{"free", free, db_models.SubStatusActive, utils.AddBillingPeriod(renewalNow, "month").Unix()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSubscribeFixture(tt.plan)

			res, err := f.svc.Subscribe(context.Background(), f.member.ID, cardRequest(tt.plan.Code))
			if err != nil {
				t.Fatalf("Subscribe: %v", err)
			}
			if res.Status != string(tt.wantStatus) || res.EndsAt != tt.wantEnd {
				t.Fatalf("response = %+v", res)
			}
			if len(f.gateway.calls) != 0 || len(f.payments.payments) != 0 {
				t.Fatalf("charged: calls=%d payments=%d", len(f.gateway.calls), len(f.payments.payments))
			}
			if len(f.commissions.calls) != 0 {
				t.Fatal("commissions paid without a payment")
			}
			if len(f.bus.ofType(events.SubscriptionActivated)) != 1 {
				t.Fatalf("events = %+v", f.bus.events)
			}
		})
	}
}

func TestSubscribeDeclinedChargeRecordsFailedPayment(t *testing.T) {
	plan := activePlan()
	f := newSubscribeFixture(plan)
	f.gateway.err = fmt.Errorf("%w: card declined", utils.ErrPaymentDeclined)

	_, err := f.svc.Subscribe(context.Background(), f.member.ID, cardRequest(plan.Code))
	if !errors.Is(err, utils.ErrPaymentDeclined) {
		t.Fatalf("err = %v, want ErrPaymentDeclined", err)
	}

	failed := f.payments.withStatus(db_models.PaymentStatusFailed)
	if len(failed) != 1 {
		t.Fatalf("failed payments = %d", len(failed))
	}
	if failed[0].SubscriptionID != nil || failed[0].GatewayRef != nil || !strings.Contains(failed[0].FailureReason, "card declined") {
		t.Fatalf("failed payment = %+v", failed[0])
	}
	if subs := f.allSubs(); len(subs) != 0 {
		t.Fatalf("subscriptions created: %+v", subs)
	}
	if len(f.bus.events) != 0 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestSubscribeRejections(t *testing.T) {
	plan := activePlan()
	inactive := activePlan()
	inactive.Code = "legacy"
	inactive.IsActive = false

	tests := []struct {
		name  string
		code  string
		setup func(f *subscribeFixture)
		want  error
	}{
		{
			name: "already subscribed",
			code: plan.Code,
			setup: func(f *subscribeFixture) {
				_ = f.subs.Create(context.Background(), &db_models.Subscription{
					AccountID: f.member.ID, Status: db_models.SubStatusPastDue, EndsAt: renewalNow.Unix(),
				})
			},
			want: utils.ErrAlreadySubscribed,
		},
		{name: "unknown plan", code: "missing", want: utils.ErrPlanNotFound},
		{name: "inactive plan", code: inactive.Code, want: utils.ErrPlanInactive},
		{
			name:  "suspended member",
			code:  plan.Code,
			setup: func(f *subscribeFixture) { f.member.Status = db_models.AccountSuspended },
			want:  utils.ErrAccountSuspended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSubscribeFixture(plan, inactive)
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.svc.Subscribe(context.Background(), f.member.ID, cardRequest(tt.code))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(f.gateway.calls) != 0 {
				t.Fatal("gateway charged on a rejected subscribe")
			}
		})
	}
}

func liveSubscription(f *subscribeFixture) db_models.Subscription {
	plan := activePlan()
	sub := db_models.Subscription{
		AccountID: f.member.ID,
		PlanID:    plan.ID,
		Status:    db_models.SubStatusActive,
		StartsAt:  renewalNow.AddDate(0, 0, -10).Unix(),
		EndsAt:    renewalNow.AddDate(0, 0, 20).Unix(),
		AutoRenew: true,
		Provider:  GatewayCard,
		Plan:      plan,
	}
	_ = f.subs.Create(context.Background(), &sub)
	return sub
}

func TestCancelImmediately(t *testing.T) {
	f := newSubscribeFixture()
	sub := liveSubscription(f)

	res, err := f.svc.Cancel(context.Background(), f.member.ID, sub.ID, false)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.Status != string(db_models.SubStatusCanceled) || res.EndsAt != renewalNow.Unix() || res.AutoRenew {
		t.Fatalf("response = %+v", res)
	}

	stored := f.subs.get(sub.ID)
	if stored.CanceledAt == nil || *stored.CanceledAt != renewalNow.Unix() {
		t.Fatalf("CanceledAt = %v", stored.CanceledAt)
	}
	if len(f.bus.ofType(events.SubscriptionCanceled)) != 1 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestCancelAtPeriodEndKeepsAccess(t *testing.T) {
	f := newSubscribeFixture()
	sub := liveSubscription(f)

	res, err := f.svc.Cancel(context.Background(), f.member.ID, sub.ID, true)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.Status != string(db_models.SubStatusActive) || res.EndsAt != sub.EndsAt || res.AutoRenew {
		t.Fatalf("response = %+v", res)
	}
	if stored := f.subs.get(sub.ID); stored.CanceledAt == nil || stored.AutoRenew {
		t.Fatalf("stored = %+v", stored)
	}
	if len(f.bus.events) != 0 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestCancelSomeoneElsesSubscription(t *testing.T) {
	f := newSubscribeFixture()
	sub := liveSubscription(f)

	_, err := f.svc.Cancel(context.Background(), uuid.New(), sub.ID, false)
	if !errors.Is(err, utils.ErrSubscriptionNotFound) {
		t.Fatalf("err = %v, want ErrSubscriptionNotFound", err)
	}
	if stored := f.subs.get(sub.ID); stored.Status != db_models.SubStatusActive {
		t.Fatalf("stored = %+v", stored)
	}
}
