package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	dbm "mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/cache"
	"mlmadmin/pkg/utils"
)

const (
	dashboardTopEarners     = 10
	dashboardRecentPayments = 10
)

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo     repositories.DashboardRepository
	cache    cache.Store
	ttl      time.Duration
	currency string
}

func NewDashboardService(repo repositories.DashboardRepository, store cache.Store, ttl time.Duration, currency string) DashboardService {
	return &dashboardService{repo: repo, cache: store, ttl: ttl, currency: currency}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	switch out.Interval {
	case "day", "week", "month":
	default:
		out.Interval = "day"
	}
	if out.Timezone == "" {
		out.Timezone = "UTC"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	out.Start = out.Start.UTC().Truncate(time.Second)
	out.End = out.End.UTC().Truncate(time.Second)
	return out
}

func dashboardCacheKey(r resp.TimeRange) string {
	return fmt.Sprintf("dashboard:%d:%d:%s:%s", r.Start.Unix(), r.End.Unix(), r.Interval, r.Timezone)
}

func monthlyEquivalent(priceMinor int64, period string) int64 {
	switch period {
	case string(dbm.PeriodMonth):
		return priceMinor
	case string(dbm.PeriodYear):
		// Integer floor division
		return priceMinor / 12
	default:
		return 0
	}
}

func toPoints(rows []repositories.BucketSum) ([]resp.SeriesPoint, int64) {
	points := make([]resp.SeriesPoint, 0, len(rows))
	var total int64
	for _, r := range rows {
		points = append(points, resp.SeriesPoint{Bucket: time.Unix(r.Bucket, 0).UTC(), Value: r.Sum})
		total += r.Sum
	}
	return points, total
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)
	key := dashboardCacheKey(rng)

	var cached resp.DashboardReport
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		logrus.WithError(err).Warn("dashboard cache read failed")
	} else if hit {
		return &cached, nil
	}

	report, err := s.build(ctx, rng)
	if err != nil {
		logrus.WithError(err).Error("build dashboard")
		return nil, utils.ErrDatabaseError
	}

	if err := s.cache.Set(ctx, key, report, s.ttl); err != nil {
		logrus.WithError(err).Warn("dashboard cache write failed")
	}
	return report, nil
}

func (s *dashboardService) build(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	now := time.Now().UTC()

	// ---------- Core counts ----------
	totalMembers, err := s.repo.CountTotalMembers(ctx)
	if err != nil {
		return nil, err
	}
	newMembers, err := s.repo.CountNewMembers(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	activeProducts, err := s.repo.CountActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[dbm.SubscriptionStatus]int64, 5)
	for _, st := range []dbm.SubscriptionStatus{
		dbm.SubStatusActive, dbm.SubStatusTrialing, dbm.SubStatusPastDue,
		dbm.SubStatusCanceled, dbm.SubStatusExpired,
	} {
		n, err := s.repo.CountSubscriptionsByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		byStatus[st] = n
	}

	// ---------- Series ----------
	revenueRows, err := s.repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	revenuePoints, totalRevenue := toPoints(revenueRows)

	newMemberRows, err := s.repo.NewMembersSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	newMemberPoints, _ := toPoints(newMemberRows)

	newSubsRows, err := s.repo.NewSubsSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	newSubsPoints, _ := toPoints(newSubsRows)

	// ---------- Financials: MRR/ARR/ARPU ----------
	activeWithPlan, err := s.repo.ActiveSubscriptionsWithPlan(ctx, now)
	if err != nil {
		return nil, err
	}
	var mrr, activeCount int64
	for _, row := range activeWithPlan {
		mrr += monthlyEquivalent(row.PriceMinor, row.Period)
		activeCount++
	}
	var arpu float64
	if activeCount > 0 {
		arpu = float64(mrr) / float64(activeCount)
	}

	// ---------- Churn ----------
	canceledInPeriod, err := s.repo.CountCanceledInPeriod(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	subscribersAtStart, err := s.repo.CountSubscribersAt(ctx, rng.Start)
	if err != nil {
		return nil, err
	}
	var churnPct float64
	if subscribersAtStart > 0 {
		churnPct = float64(canceledInPeriod) / float64(subscribersAtStart) * 100.0
	}

	// ---------- Multilevel ----------
	liabilities, err := s.repo.SumWalletBalances(ctx)
	if err != nil {
		return nil, err
	}
	commissionsPaid, err := s.repo.SumCommissions(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	earnerRows, err := s.repo.TopEarners(ctx, rng.Start, rng.End, dashboardTopEarners)
	if err != nil {
		return nil, err
	}
	topEarners := make([]resp.TopEarner, 0, len(earnerRows))
	for _, r := range earnerRows {
		id, err := uuid.Parse(r.AccountID)
		if err != nil {
			return nil, fmt.Errorf("top earner id %q: %w", r.AccountID, err)
		}
		topEarners = append(topEarners, resp.TopEarner{
			AccountID:   id,
			Name:        r.Name,
			Email:       r.Email,
			PhaseLevel:  r.PhaseLevel,
			AmountMinor: r.AmountMinor,
		})
	}

	// ---------- Plan mix ----------
	planRows, err := s.repo.PlanMix(ctx, now)
	if err != nil {
		return nil, err
	}
	var totalLive float64
	for _, r := range planRows {
		totalLive += float64(r.Count)
	}
	planMixItems := make([]resp.PlanMixItem, 0, len(planRows))
	for _, r := range planRows {
		id, err := uuid.Parse(r.PlanID)
		if err != nil {
			return nil, fmt.Errorf("plan mix id %q: %w", r.PlanID, err)
		}
		var pct float64
		if totalLive > 0 {
			pct = float64(r.Count) * 100.0 / totalLive
		}
		planMixItems = append(planMixItems, resp.PlanMixItem{
			PlanID:     id,
			PlanCode:   r.PlanCode,
			PlanName:   r.PlanName,
			Count:      r.Count,
			Percent:    pct,
			Period:     r.Period,
			PriceMinor: r.PriceMinor,
		})
	}

	// ---------- Recent payments ----------
	payRows, err := s.repo.RecentPaidPayments(ctx, dashboardRecentPayments)
	if err != nil {
		return nil, err
	}
	recent := make([]resp.RecentPayment, 0, len(payRows))
	for _, r := range payRows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("payment id %q: %w", r.ID, err)
		}
		var paidAt *time.Time
		if r.PaidAt != nil {
			t := time.Unix(*r.PaidAt, 0).UTC()
			paidAt = &t
		}
		recent = append(recent, resp.RecentPayment{
			ID:           id,
			PaidAt:       paidAt,
			AmountMinor:  r.AmountMinor,
			Currency:     r.Currency,
			Status:       r.Status,
			Gateway:      r.Gateway,
			GatewayRef:   r.GatewayRef,
			AccountEmail: r.AccountEmail,
		})
	}

	return &resp.DashboardReport{
		Range: rng,
		KPIs: resp.KPIBlock{
			TotalMembers:          totalMembers,
			NewMembers:            newMembers,
			ActiveProducts:        activeProducts,
			ActiveSubscriptions:   byStatus[dbm.SubStatusActive],
			TrialingSubscriptions: byStatus[dbm.SubStatusTrialing],
			PastDueSubscriptions:  byStatus[dbm.SubStatusPastDue],
			CanceledSubscriptions: byStatus[dbm.SubStatusCanceled],
			ExpiredSubscriptions:  byStatus[dbm.SubStatusExpired],

			MRRMinor:  mrr,
			ARRMinor:  mrr * 12,
			ARPUMinor: arpu,
			ChurnPct:  churnPct,

			WalletLiabilitiesMinor: liabilities,
			CommissionsPaidMinor:   commissionsPaid,
		},
		Revenue: resp.RevenueSeries{
			Currency:   s.currency,
			Points:     revenuePoints,
			TotalMinor: totalRevenue,
		},
		NewMembers:     resp.CountSeries{Points: newMemberPoints},
		NewSubs:        resp.CountSeries{Points: newSubsPoints},
		PlanMix:        resp.PlanMix{Items: planMixItems},
		TopEarners:     topEarners,
		RecentPayments: recent,
	}, nil
}
