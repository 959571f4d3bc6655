package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/pkg/utils"
)

func TestMemberSummaryCollectsAllParts(t *testing.T) {
	accounts, members := chain(2)
	root := members[0]
	child := accounts.add(&db_models.Account{SponsorID: &root.ID})
	accounts.add(&db_models.Account{SponsorID: &child.ID})
	accounts.add(&db_models.Account{SponsorID: &root.ID})

	subs := &fakeSubscriptions{current: &resp.SubscriptionResponse{PlanCode: "pro_monthly"}}
	wallets := &fakeWallets{balances: map[uuid.UUID]int64{root.ID: 4200}}
	svc := NewMemberSummaryService(accounts, &fakePhaseRepo{}, subs, wallets, 10, "USD")

	got, err := svc.Summary(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Phase.Level != 2 || got.Phase.Name != "Silver" {
		t.Fatalf("phase = %+v", got.Phase)
	}
	if got.Subscription == nil || got.Subscription.PlanCode != "pro_monthly" {
		t.Fatalf("subscription = %+v", got.Subscription)
	}
	if got.Wallet.BalanceMinor != 4200 || got.Wallet.Currency != "USD" {
		t.Fatalf("wallet = %+v", got.Wallet)
	}
	if got.Network.DirectReferrals != 2 || got.Network.NetworkSize != 3 {
		t.Fatalf("network = %+v", got.Network)
	}
	if len(got.Degraded) != 0 {
		t.Fatalf("degraded = %v", got.Degraded)
	}
}

func TestMemberSummaryDegradesFailedReads(t *testing.T) {
	accounts, members := chain(1)
	accounts.referralErr = errors.New("replica lag")

	subs := &fakeSubscriptions{err: utils.ErrDatabaseError}
	wallets := &fakeWallets{err: utils.ErrDatabaseError}
	phases := &fakePhaseRepo{err: errors.New("timeout")}
	svc := NewMemberSummaryService(accounts, phases, subs, wallets, 10, "USD")

	got, err := svc.Summary(context.Background(), members[0].ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(got.Degraded) != 4 {
		t.Fatalf("degraded = %v, want all four parts", got.Degraded)
	}
	if got.Phase.Name != "Starter" || got.Wallet.BalanceMinor != 0 || got.Subscription != nil {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestMemberSummaryWithoutSubscription(t *testing.T) {
	accounts, members := chain(0)
	subs := &fakeSubscriptions{err: utils.ErrSubscriptionNotFound}
	svc := NewMemberSummaryService(accounts, &fakePhaseRepo{}, subs, &fakeWallets{}, 10, "USD")

	got, err := svc.Summary(context.Background(), members[0].ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Subscription != nil || len(got.Degraded) != 0 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestMemberSummaryUnknownAccount(t *testing.T) {
	svc := NewMemberSummaryService(newFakeAccountRepo(), &fakePhaseRepo{}, &fakeSubscriptions{}, &fakeWallets{}, 10, "USD")

	if _, err := svc.Summary(context.Background(), uuid.New()); !errors.Is(err, utils.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestMemberSummaryNetworkRespectsDepth(t *testing.T) {
	accounts, members := chain(0)
	parent := members[0]
	for i := 0; i < 4; i++ {
		parent = accounts.add(&db_models.Account{SponsorID: &parent.ID})
	}
	svc := NewMemberSummaryService(accounts, &fakePhaseRepo{}, &fakeSubscriptions{}, &fakeWallets{}, 2, "USD")

	got, err := svc.Summary(context.Background(), members[0].ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Network.NetworkSize != 2 || got.Network.DirectReferrals != 1 {
		t.Fatalf("network = %+v", got.Network)
	}
}
