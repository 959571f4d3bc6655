package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"mlmadmin/internal/events"
	"mlmadmin/internal/models/db_models"
	"mlmadmin/pkg/utils"
)

var renewalNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func monthlyPlan() db_models.Plan {
	p := db_models.Plan{Code: "pro_monthly", Name: "Pro Monthly", Period: db_models.PeriodMonth, PriceMinor: 1999, Currency: "USD"}
	p.ID = uuid.New()
	return p
}

func dueSubscription(provider string) db_models.Subscription {
	plan := monthlyPlan()
	sub := db_models.Subscription{
		AccountID: uuid.New(),
		PlanID:    plan.ID,
		Status:    db_models.SubStatusActive,
		StartsAt:  renewalNow.AddDate(0, -1, 0).Add(-time.Hour).Unix(),
		EndsAt:    renewalNow.Add(-time.Hour).Unix(),
		AutoRenew: true,
		Provider:  provider,
		Plan:      plan,
	}
	sub.ID = uuid.New()
	return sub
}

type renewalFixture struct {
	subs        *fakeSubscriptionRepo
	payments    *fakePaymentRepo
	gateway     *fakeGateway
	commissions *fakeCommissions
	bus         *fakePublisher
	svc         *RenewalService
}

func newRenewalFixture(subs ...db_models.Subscription) *renewalFixture {
	f := &renewalFixture{
		subs:        newFakeSubscriptionRepo(subs...),
		payments:    &fakePaymentRepo{},
		gateway:     &fakeGateway{name: GatewayCard},
		commissions: &fakeCommissions{},
		bus:         &fakePublisher{},
	}
	f.svc = NewRenewalService(f.subs, f.payments, NewGatewayRegistry(f.gateway), f.commissions, f.bus, 3)
	return f
}

func TestRenewDueExtendsFromPreviousEnd(t *testing.T) {
	sub := dueSubscription(GatewayCard)
	f := newRenewalFixture(sub)

	report, err := f.svc.RenewDue(context.Background(), renewalNow)
	if err != nil {
		t.Fatalf("RenewDue: %v", err)
	}
	if report.Processed != 1 || report.Renewed != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}

	got := f.subs.get(sub.ID)
	want := utils.AddBillingPeriod(time.Unix(sub.EndsAt, 0).UTC(), "month").Unix()
	if got.EndsAt != want {
		t.Fatalf("EndsAt = %d, want %d", got.EndsAt, want)
	}
	if got.StartsAt != sub.EndsAt || got.Status != db_models.SubStatusActive {
		t.Fatalf("sub = %+v", got)
	}

	if len(f.gateway.calls) != 1 {
		t.Fatalf("charges = %d", len(f.gateway.calls))
	}
	call := f.gateway.calls[0]
	if call.AmountMinor != 1999 || call.IdempotencyKey != fmt.Sprintf("%s:%d", sub.ID, sub.EndsAt) {
		t.Fatalf("charge = %+v", call)
	}

	if paid := f.payments.withStatus(db_models.PaymentStatusPaid); len(paid) != 1 {
		t.Fatalf("paid payments = %d", len(paid))
	}
	if len(f.commissions.calls) != 1 || f.commissions.calls[0].source != db_models.SourceSubscription {
		t.Fatalf("commission calls = %+v", f.commissions.calls)
	}
	if len(f.bus.ofType(events.SubscriptionRenewed)) != 1 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestRenewDueSkipsGatewayRefOfAnotherPayment(t *testing.T) {
	sub := dueSubscription(GatewayCard)
	f := newRenewalFixture(sub)
	f.gateway.ref = "ch_dup"
	ref := "ch_dup"
	other := uuid.New()
	_ = f.payments.Create(context.Background(), &db_models.Payment{
		Gateway: GatewayCard, GatewayRef: &ref, Status: db_models.PaymentStatusPaid, SubscriptionID: &other,
	})

	report, err := f.svc.RenewDue(context.Background(), renewalNow)
	if err != nil {
		t.Fatalf("RenewDue: %v", err)
	}
	if report.Skipped != 1 || report.Renewed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if got := f.subs.get(sub.ID); got.EndsAt != sub.EndsAt {
		t.Fatal("subscription was extended by another subscription's charge")
	}
	if len(f.commissions.calls) != 0 {
		t.Fatal("commissions paid for a foreign charge")
	}
}

func TestRenewDueFinishesPeriodAfterFailedExtend(t *testing.T) {
	sub := dueSubscription(GatewayCard)
	f := newRenewalFixture(sub)
	f.subs.failSaves = 1
	ctx := context.Background()

	report, err := f.svc.RenewDue(ctx, renewalNow)
	if err != nil {
		t.Fatalf("first RenewDue: %v", err)
	}
	if report.Failed != 1 || report.Renewed != 0 {
		t.Fatalf("first report = %+v", report)
	}
	if got := f.subs.get(sub.ID); got.EndsAt != sub.EndsAt {
		t.Fatal("subscription changed although the save failed")
	}

	report, err = f.svc.RenewDue(ctx, renewalNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second RenewDue: %v", err)
	}
	if report.Renewed != 1 || report.Skipped != 0 {
		t.Fatalf("second report = %+v", report)
	}

	got := f.subs.get(sub.ID)
	want := utils.AddBillingPeriod(time.Unix(sub.EndsAt, 0).UTC(), "month").Unix()
	if got.EndsAt != want || got.Status != db_models.SubStatusActive {
		t.Fatalf("sub = %+v, want EndsAt %d", got, want)
	}
	if len(f.gateway.calls) != 2 || f.gateway.calls[0].IdempotencyKey != f.gateway.calls[1].IdempotencyKey {
		t.Fatalf("charges = %+v", f.gateway.calls)
	}
	if paid := f.payments.withStatus(db_models.PaymentStatusPaid); len(paid) != 1 {
		t.Fatalf("paid payments = %d, want 1", len(paid))
	}
	if len(f.commissions.calls) != 1 {
		t.Fatalf("commission calls = %+v", f.commissions.calls)
	}
	if len(f.bus.ofType(events.SubscriptionRenewed)) != 1 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestRenewDueMarksPastDueAndNotifiesOnce(t *testing.T) {
	sub := dueSubscription(GatewayCard)
	f := newRenewalFixture(sub)
	f.gateway.err = fmt.Errorf("%w: card expired", utils.ErrPaymentDeclined)

	report, err := f.svc.RenewDue(context.Background(), renewalNow)
	if err != nil {
		t.Fatalf("RenewDue: %v", err)
	}
	if report.Failed != 1 || len(report.Errors) != 1 {
		t.Fatalf("report = %+v", report)
	}

	got := f.subs.get(sub.ID)
	if got.Status != db_models.SubStatusPastDue || got.PastDueAt == nil || *got.PastDueAt != renewalNow.Unix() {
		t.Fatalf("sub = %+v", got)
	}
	if failed := f.payments.withStatus(db_models.PaymentStatusFailed); len(failed) != 1 {
		t.Fatalf("failed payments = %d", len(failed))
	}

	// A retry an hour later stays inside the grace period.
	if _, err := f.svc.RenewDue(context.Background(), renewalNow.Add(time.Hour)); err != nil {
		t.Fatalf("second RenewDue: %v", err)
	}
	if n := len(f.bus.ofType(events.SubscriptionRenewalFailed)); n != 1 {
		t.Fatalf("renewal_failed events = %d, want 1", n)
	}
	if got := f.subs.get(sub.ID); *got.PastDueAt != renewalNow.Unix() {
		t.Fatal("PastDueAt moved on retry")
	}
}

func TestRenewDueRecoversPastDueSubscription(t *testing.T) {
	sub := dueSubscription(GatewayCard)
	sub.Status = db_models.SubStatusPastDue
	pastDue := renewalNow.Add(-24 * time.Hour).Unix()
	sub.PastDueAt = &pastDue
	f := newRenewalFixture(sub)

	report, err := f.svc.RenewDue(context.Background(), renewalNow)
	if err != nil {
		t.Fatalf("RenewDue: %v", err)
	}
	if report.Renewed != 1 {
		t.Fatalf("report = %+v", report)
	}
	got := f.subs.get(sub.ID)
	if got.Status != db_models.SubStatusActive || got.PastDueAt != nil {
		t.Fatalf("sub = %+v", got)
	}
}

func TestRenewDueExpiresAfterGracePeriod(t *testing.T) {
	sub := dueSubscription(GatewayCard)
	sub.Status = db_models.SubStatusPastDue
	pastDue := renewalNow.AddDate(0, 0, -4).Unix()
	sub.PastDueAt = &pastDue
	f := newRenewalFixture(sub)

	report, err := f.svc.RenewDue(context.Background(), renewalNow)
	if err != nil {
		t.Fatalf("RenewDue: %v", err)
	}
	if report.Expired != 1 || report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}
	got := f.subs.get(sub.ID)
	if got.Status != db_models.SubStatusExpired || got.AutoRenew {
		t.Fatalf("sub = %+v", got)
	}
	if len(f.gateway.calls) != 0 {
		t.Fatal("expired subscription was charged")
	}
	if len(f.bus.ofType(events.SubscriptionExpired)) != 1 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestRenewDueClosesLapsedSubscriptions(t *testing.T) {
	canceled := dueSubscription(GatewayCard)
	canceled.AutoRenew = false
	at := renewalNow.AddDate(0, 0, -10).Unix()
	canceled.CanceledAt = &at

	lapsed := dueSubscription(GatewayCard)
	lapsed.AutoRenew = false

	f := newRenewalFixture(canceled, lapsed)
	report, err := f.svc.RenewDue(context.Background(), renewalNow)
	if err != nil {
		t.Fatalf("RenewDue: %v", err)
	}
	if report.Expired != 2 || report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if got := f.subs.get(canceled.ID); got.Status != db_models.SubStatusCanceled {
		t.Fatalf("canceled status = %s", got.Status)
	}
	if got := f.subs.get(lapsed.ID); got.Status != db_models.SubStatusExpired {
		t.Fatalf("lapsed status = %s", got.Status)
	}
	if len(f.bus.ofType(events.SubscriptionCanceled)) != 1 || len(f.bus.ofType(events.SubscriptionExpired)) != 1 {
		t.Fatalf("events = %+v", f.bus.events)
	}
}

func TestRenewDueUnknownProviderFails(t *testing.T) {
	sub := dueSubscription("bitcoin")
	f := newRenewalFixture(sub)

	report, err := f.svc.RenewDue(context.Background(), renewalNow)
	if err != nil {
		t.Fatalf("RenewDue: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if got := f.subs.get(sub.ID); got.Status != db_models.SubStatusPastDue {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestRenewDueRejectsOverlappingRuns(t *testing.T) {
	f := newRenewalFixture()
	f.svc.running.Lock()
	defer f.svc.running.Unlock()

	if _, err := f.svc.RenewDue(context.Background(), renewalNow); !errors.Is(err, utils.ErrRenewalInProgress) {
		t.Fatalf("err = %v, want ErrRenewalInProgress", err)
	}
}

func TestRenewDueWalletDebitsOnceAfterFailedPaymentInsert(t *testing.T) {
	wallets, accounts := newWalletServiceForTest(t)
	member := accounts.add(&db_models.Account{})
	ctx := context.Background()
	if _, err := wallets.Credit(ctx, member.ID, 10000, db_models.ReasonAdjustment, WalletRef{Type: "admin", ID: "seed"}); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	sub := dueSubscription(GatewayWallet)
	sub.AccountID = member.ID
	subs := newFakeSubscriptionRepo(sub)
	payments := &fakePaymentRepo{failCreates: 1}
	svc := NewRenewalService(subs, payments, NewGatewayRegistry(NewWalletGateway(wallets)), &fakeCommissions{}, &fakePublisher{}, 3)

	report, err := svc.RenewDue(ctx, renewalNow)
	if err != nil {
		t.Fatalf("first RenewDue: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("first report = %+v", report)
	}
	if balance, _ := wallets.Balance(ctx, member.ID); balance != 8001 {
		t.Fatalf("balance after first run = %d, want 8001", balance)
	}

	report, err = svc.RenewDue(ctx, renewalNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second RenewDue: %v", err)
	}
	if report.Renewed != 1 {
		t.Fatalf("second report = %+v", report)
	}
	if balance, _ := wallets.Balance(ctx, member.ID); balance != 8001 {
		t.Fatalf("balance after second run = %d, want 8001", balance)
	}
	if paid := payments.withStatus(db_models.PaymentStatusPaid); len(paid) != 1 {
		t.Fatalf("paid payments = %d", len(paid))
	}
	if got := subs.get(sub.ID); got.EndsAt <= sub.EndsAt {
		t.Fatalf("subscription not extended: %+v", got)
	}
}

func TestWalletGatewayChargesOncePerKey(t *testing.T) {
	wallets, accounts := newWalletServiceForTest(t)
	member := accounts.add(&db_models.Account{})
	ctx := context.Background()
	if _, err := wallets.Credit(ctx, member.ID, 5000, db_models.ReasonAdjustment, WalletRef{Type: "admin", ID: "seed"}); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	gw := NewWalletGateway(wallets)
	req := ChargeRequest{AccountID: member.ID, SubscriptionID: uuid.New(), AmountMinor: 2000, IdempotencyKey: "sub:1"}

	for i := 0; i < 2; i++ {
		res, err := gw.Charge(ctx, req)
		if err != nil {
			t.Fatalf("Charge %d: %v", i, err)
		}
		if res.GatewayRef != "wallet:sub:1" {
			t.Fatalf("ref = %s", res.GatewayRef)
		}
	}

	if balance, _ := wallets.Balance(ctx, member.ID); balance != 3000 {
		t.Fatalf("balance = %d, want 3000", balance)
	}
	_, total, err := wallets.Transactions(ctx, member.ID, 1, 10)
	if err != nil || total != 2 {
		t.Fatalf("ledger lines = %d err = %v", total, err)
	}

	// A different key is a different charge.
	req.IdempotencyKey = "sub:2"
	if _, err := gw.Charge(ctx, req); err != nil {
		t.Fatalf("Charge sub:2: %v", err)
	}
	if balance, _ := wallets.Balance(ctx, member.ID); balance != 1000 {
		t.Fatalf("balance = %d, want 1000", balance)
	}
}

func TestWalletGatewayDeclinesOnLowBalance(t *testing.T) {
	wallets, accounts := newWalletServiceForTest(t)
	member := accounts.add(&db_models.Account{})
	ctx := context.Background()
	if _, err := wallets.Credit(ctx, member.ID, 100, db_models.ReasonAdjustment, WalletRef{Type: "admin", ID: "seed"}); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	_, err := NewWalletGateway(wallets).Charge(ctx, ChargeRequest{AccountID: member.ID, AmountMinor: 2000, IdempotencyKey: "k"})
	if !errors.Is(err, utils.ErrPaymentDeclined) {
		t.Fatalf("err = %v, want ErrPaymentDeclined", err)
	}
}
