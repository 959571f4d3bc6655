package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	dbm "mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

type stubDashboardRepo struct {
	calls int
	err   error
	plan  uuid.UUID
}

func (s *stubDashboardRepo) CountTotalMembers(ctx context.Context) (int64, error) {
	s.calls++
	return 40, s.err
}

func (s *stubDashboardRepo) CountNewMembers(ctx context.Context, start, end time.Time) (int64, error) {
	return 5, nil
}

func (s *stubDashboardRepo) CountActiveProducts(ctx context.Context) (int64, error) {
	return 12, nil
}

func (s *stubDashboardRepo) CountSubscriptionsByStatus(ctx context.Context, status dbm.SubscriptionStatus) (int64, error) {
	switch status {
	case dbm.SubStatusActive:
		return 3, nil
	case dbm.SubStatusPastDue:
		return 1, nil
	}
	return 0, nil
}

func (s *stubDashboardRepo) CountCanceledInPeriod(ctx context.Context, start, end time.Time) (int64, error) {
	return 1, nil
}

func (s *stubDashboardRepo) CountSubscribersAt(ctx context.Context, t time.Time) (int64, error) {
	return 4, nil
}

func (s *stubDashboardRepo) SumWalletBalances(ctx context.Context) (int64, error) {
	return 125000, nil
}

func (s *stubDashboardRepo) SumCommissions(ctx context.Context, start, end time.Time) (int64, error) {
	return 9000, nil
}

func (s *stubDashboardRepo) TopEarners(ctx context.Context, start, end time.Time, limit int) ([]repositories.EarnerRow, error) {
	return []repositories.EarnerRow{{AccountID: uuid.NewString(), Name: "Ann", AmountMinor: 7000}}, nil
}

func (s *stubDashboardRepo) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]repositories.BucketSum, error) {
	return []repositories.BucketSum{{Bucket: 1767225600, Sum: 1000}, {Bucket: 1767312000, Sum: 2500}}, nil
}

func (s *stubDashboardRepo) NewMembersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]repositories.BucketSum, error) {
	return nil, nil
}

func (s *stubDashboardRepo) NewSubsSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]repositories.BucketSum, error) {
	return nil, nil
}

func (s *stubDashboardRepo) ActiveSubscriptionsWithPlan(ctx context.Context, now time.Time) ([]repositories.SubWithPlan, error) {
	return []repositories.SubWithPlan{
		{Period: "month", PriceMinor: 1000},
		{Period: "month", PriceMinor: 1000},
		{Period: "year", PriceMinor: 12000},
	}, nil
}

func (s *stubDashboardRepo) PlanMix(ctx context.Context, now time.Time) ([]repositories.PlanMixRow, error) {
	return []repositories.PlanMixRow{
		{PlanID: s.plan.String(), PlanCode: "pro", Count: 3},
		{PlanID: uuid.NewString(), PlanCode: "basic", Count: 1},
	}, nil
}

func (s *stubDashboardRepo) RecentPaidPayments(ctx context.Context, limit int) ([]repositories.RecentPaymentRow, error) {
	paid := int64(1767225600)
	return []repositories.RecentPaymentRow{{ID: uuid.NewString(), PaidAt: &paid, AmountMinor: 1000, Status: "paid"}}, nil
}

// memoryStore is a cache.Store that round-trips through JSON like the
// redis implementation does.
type memoryStore struct {
	data map[string][]byte
}

func (m *memoryStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func fixedRange() resp.TimeRange {
	return resp.TimeRange{
		Start:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Interval: "day",
	}
}

func TestBuildDashboardComputesKPIs(t *testing.T) {
	repo := &stubDashboardRepo{plan: uuid.New()}
	svc := NewDashboardService(repo, &memoryStore{data: map[string][]byte{}}, time.Minute, "USD")

	report, err := svc.BuildDashboard(context.Background(), fixedRange())
	if err != nil {
		t.Fatalf("BuildDashboard: %v", err)
	}

	k := report.KPIs
	if k.TotalMembers != 40 || k.NewMembers != 5 || k.ActiveProducts != 12 {
		t.Fatalf("counts = %+v", k)
	}
	if k.ActiveSubscriptions != 3 || k.PastDueSubscriptions != 1 {
		t.Fatalf("status counts = %+v", k)
	}
	if k.MRRMinor != 3000 || k.ARRMinor != 36000 || k.ARPUMinor != 1000 {
		t.Fatalf("mrr = %d arr = %d arpu = %f", k.MRRMinor, k.ARRMinor, k.ARPUMinor)
	}
	if k.ChurnPct != 25 {
		t.Fatalf("churn = %f", k.ChurnPct)
	}
	if k.WalletLiabilitiesMinor != 125000 || k.CommissionsPaidMinor != 9000 {
		t.Fatalf("multilevel = %+v", k)
	}

	if report.Revenue.TotalMinor != 3500 || report.Revenue.Currency != "USD" || len(report.Revenue.Points) != 2 {
		t.Fatalf("revenue = %+v", report.Revenue)
	}
	if !report.Revenue.Points[0].Bucket.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bucket = %v", report.Revenue.Points[0].Bucket)
	}

	if len(report.PlanMix.Items) != 2 || math.Abs(report.PlanMix.Items[0].Percent-75) > 1e-9 {
		t.Fatalf("plan mix = %+v", report.PlanMix.Items)
	}
	if len(report.TopEarners) != 1 || len(report.RecentPayments) != 1 || report.RecentPayments[0].PaidAt == nil {
		t.Fatalf("lists = %+v / %+v", report.TopEarners, report.RecentPayments)
	}
	if report.Range.Timezone != "UTC" {
		t.Fatalf("timezone = %q", report.Range.Timezone)
	}
}

func TestBuildDashboardServesRepeatCallsFromCache(t *testing.T) {
	repo := &stubDashboardRepo{plan: uuid.New()}
	store := &memoryStore{data: map[string][]byte{}}
	svc := NewDashboardService(repo, store, time.Minute, "USD")

	first, err := svc.BuildDashboard(context.Background(), fixedRange())
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.BuildDashboard(context.Background(), fixedRange())
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if repo.calls != 1 {
		t.Fatalf("repository hit %d times, want 1", repo.calls)
	}
	if second.KPIs.MRRMinor != first.KPIs.MRRMinor || len(store.data) != 1 {
		t.Fatal("cached report differs")
	}
}

func TestBuildDashboardMapsRepositoryErrors(t *testing.T) {
	repo := &stubDashboardRepo{err: errors.New("connection reset")}
	svc := NewDashboardService(repo, &memoryStore{data: map[string][]byte{}}, time.Minute, "USD")

	if _, err := svc.BuildDashboard(context.Background(), fixedRange()); !errors.Is(err, utils.ErrDatabaseError) {
		t.Fatalf("err = %v, want ErrDatabaseError", err)
	}
}

func TestNormalizeRange(t *testing.T) {
	end := time.Date(2026, 2, 1, 10, 30, 15, 500, time.UTC)
	got := normalizeRange(resp.TimeRange{Start: end, End: end.AddDate(0, 0, -7), Interval: "hour"})

	if got.Interval != "day" || got.Timezone != "UTC" {
		t.Fatalf("defaults = %+v", got)
	}
	if !got.Start.Before(got.End) {
		t.Fatalf("range not ordered: %v .. %v", got.Start, got.End)
	}
	if got.End.Nanosecond() != 0 {
		t.Fatal("end not truncated to the second")
	}

	open := normalizeRange(resp.TimeRange{End: end})
	if open.End.Sub(open.Start) != 30*24*time.Hour {
		t.Fatalf("default window = %v", open.End.Sub(open.Start))
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	if got := monthlyEquivalent(12000, "year"); got != 1000 {
		t.Fatalf("yearly = %d", got)
	}
	if got := monthlyEquivalent(999, "month"); got != 999 {
		t.Fatalf("monthly = %d", got)
	}
	if got := monthlyEquivalent(999, "week"); got != 0 {
		t.Fatalf("unknown = %d", got)
	}
}
