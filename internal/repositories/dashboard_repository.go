package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	dbm "mlmadmin/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountTotalMembers(ctx context.Context) (int64, error)
	CountNewMembers(ctx context.Context, start, end time.Time) (int64, error)
	CountActiveProducts(ctx context.Context) (int64, error)

	CountSubscriptionsByStatus(ctx context.Context, status dbm.SubscriptionStatus) (int64, error)
	CountCanceledInPeriod(ctx context.Context, start, end time.Time) (int64, error)
	CountSubscribersAt(ctx context.Context, t time.Time) (int64, error)

	// Multilevel
	SumWalletBalances(ctx context.Context) (int64, error)
	SumCommissions(ctx context.Context, start, end time.Time) (int64, error)
	TopEarners(ctx context.Context, start, end time.Time, limit int) ([]EarnerRow, error)

	// Time series
	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
	NewMembersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
	NewSubsSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)

	// MRR compute helpers
	ActiveSubscriptionsWithPlan(ctx context.Context, now time.Time) ([]SubWithPlan, error)

	// Plan mix (live subs)
	PlanMix(ctx context.Context, now time.Time) ([]PlanMixRow, error)

	// Recent payments
	RecentPaidPayments(ctx context.Context, limit int) ([]RecentPaymentRow, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket int64 `gorm:"column:bucket"` // unix seconds of bucket start
	Sum    int64 `gorm:"column:sum"`
}

type SubWithPlan struct {
	SubID      string `gorm:"column:sub_id"`
	PlanID     string `gorm:"column:plan_id"`
	Period     string `gorm:"column:period"`
	PriceMinor int64  `gorm:"column:price_minor"`
	Status     string `gorm:"column:status"`
}

type PlanMixRow struct {
	PlanID     string `gorm:"column:plan_id"`
	PlanCode   string `gorm:"column:plan_code"`
	PlanName   string `gorm:"column:plan_name"`
	Period     string `gorm:"column:period"`
	PriceMinor int64  `gorm:"column:price_minor"`
	Count      int64  `gorm:"column:count"`
}

type EarnerRow struct {
	AccountID   string `gorm:"column:account_id"`
	Name        string `gorm:"column:name"`
	Email       string `gorm:"column:email"`
	PhaseLevel  int    `gorm:"column:phase_level"`
	AmountMinor int64  `gorm:"column:amount_minor"`
}

type RecentPaymentRow struct {
	ID           string `gorm:"column:id"`
	PaidAt       *int64 `gorm:"column:paid_at"`
	AmountMinor  int64  `gorm:"column:amount_minor"`
	Currency     string `gorm:"column:currency"`
	Status       string `gorm:"column:status"`
	Gateway      string `gorm:"column:gateway"`
	GatewayRef   string `gorm:"column:gateway_ref"`
	AccountEmail string `gorm:"column:email"`
}

// ---------- Helpers ----------

// bucketExpr returns a SQL expression (plus bind args) yielding the unix
// seconds at the start of the bucket containing unixColumn.
func (r *dashboardRepository) bucketExpr(interval, tz, unixColumn string) (string, []any) {
	if r.db.Dialector.Name() == "postgres" {
		if tz == "" {
			return "CAST(EXTRACT(EPOCH FROM date_trunc(?, to_timestamp(" + unixColumn + "))) AS BIGINT)", []any{interval}
		}
		return "CAST(EXTRACT(EPOCH FROM date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))) AS BIGINT)", []any{interval, tz}
	}

	// SQLite has no timezone database; buckets are UTC.
	var day string
	switch interval {
	case "week":
		day = "date(" + unixColumn + ", 'unixepoch', '-6 days', 'weekday 1')"
	case "month":
		day = "date(" + unixColumn + ", 'unixepoch', 'start of month')"
	default:
		day = "date(" + unixColumn + ", 'unixepoch')"
	}
	return "CAST(strftime('%s', " + day + ") AS INTEGER)", nil
}

func (r *dashboardRepository) series(ctx context.Context, table, column, aggregate string, start, end time.Time, interval, tz string, where func(*gorm.DB) *gorm.DB) ([]BucketSum, error) {
	expr, args := r.bucketExpr(interval, tz, column)

	var rows []BucketSum
	q := r.db.WithContext(ctx).
		Table(table).
		Select(expr+" AS bucket, "+aggregate+" AS sum", args...).
		Where(column+" BETWEEN ? AND ?", start.Unix(), end.Unix())
	if where != nil {
		q = where(q)
	}
	err := q.Group("bucket").Order("bucket ASC").Find(&rows).Error
	return rows, err
}

// ---------- Counts ----------
func (r *dashboardRepository) CountTotalMembers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Account{}).Where("role = ?", dbm.RoleMember).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountNewMembers(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Account{}).
		Where("role = ?", dbm.RoleMember).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountActiveProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Product{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountSubscriptionsByStatus(ctx context.Context, status dbm.SubscriptionStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountCanceledInPeriod(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("status = ?", dbm.SubStatusCanceled).
		Where("canceled_at IS NOT NULL AND canceled_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountSubscribersAt(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("starts_at <= ? AND ends_at >= ?", t.Unix(), t.Unix()).
		Count(&n).Error
	return n, err
}

// ---------- Multilevel ----------
func (r *dashboardRepository) SumWalletBalances(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Wallet{}).
		Select("COALESCE(SUM(balance_minor), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *dashboardRepository) SumCommissions(ctx context.Context, start, end time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Commission{}).
		Select("COALESCE(SUM(amount_minor), 0)").
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Scan(&sum).Error
	return sum, err
}

func (r *dashboardRepository) TopEarners(ctx context.Context, start, end time.Time, limit int) ([]EarnerRow, error) {
	var rows []EarnerRow
	err := r.db.WithContext(ctx).
		Table("commissions c").
		Select(`
			c.beneficiary_id AS account_id,
			a.name AS name,
			a.email AS email,
			a.phase_level AS phase_level,
			SUM(c.amount_minor) AS amount_minor`).
		Joins("JOIN accounts a ON a.id = c.beneficiary_id").
		Where("c.deleted_at IS NULL").
		Where("c.created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("c.beneficiary_id, a.name, a.email, a.phase_level").
		Order("amount_minor DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ---------- Series ----------
func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	return r.series(ctx, "payments", "paid_at", "SUM(amount_minor)", start, end, interval, tz, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", dbm.PaymentStatusPaid).Where("paid_at IS NOT NULL")
	})
}

func (r *dashboardRepository) NewMembersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	return r.series(ctx, "accounts", "created_at", "COUNT(*)", start, end, interval, tz, func(q *gorm.DB) *gorm.DB {
		return q.Where("role = ?", dbm.RoleMember)
	})
}

func (r *dashboardRepository) NewSubsSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	return r.series(ctx, "subscriptions", "starts_at", "COUNT(*)", start, end, interval, tz, nil)
}

// ---------- MRR helpers ----------
func (r *dashboardRepository) ActiveSubscriptionsWithPlan(ctx context.Context, now time.Time) ([]SubWithPlan, error) {
	var rows []SubWithPlan
	err := r.db.WithContext(ctx).
		Table("subscriptions s").
		Select("s.id AS sub_id, s.plan_id, p.period, p.price_minor, s.status").
		Joins("JOIN plans p ON p.id = s.plan_id").
		Where("s.starts_at <= ? AND s.ends_at >= ?", now.Unix(), now.Unix()).
		Where("s.status IN ?", dbm.LiveStatuses).
		Find(&rows).Error
	return rows, err
}

// ---------- Plan mix ----------
func (r *dashboardRepository) PlanMix(ctx context.Context, now time.Time) ([]PlanMixRow, error) {
	var rows []PlanMixRow
	err := r.db.WithContext(ctx).
		Table("subscriptions s").
		Select(`
			s.plan_id,
			p.code AS plan_code,
			p.name AS plan_name,
			p.period AS period,
			p.price_minor AS price_minor,
			COUNT(*) AS count`).
		Joins("JOIN plans p ON p.id = s.plan_id").
		Where("s.starts_at <= ? AND s.ends_at >= ?", now.Unix(), now.Unix()).
		Where("s.status IN ?", dbm.LiveStatuses).
		Group("s.plan_id, p.code, p.name, p.period, p.price_minor").
		Order("count DESC").
		Find(&rows).Error
	return rows, err
}

// ---------- Recent payments ----------
func (r *dashboardRepository) RecentPaidPayments(ctx context.Context, limit int) ([]RecentPaymentRow, error) {
	var rows []RecentPaymentRow
	err := r.db.WithContext(ctx).
		Table("payments t").
		Select(`
			t.id,
			t.paid_at,
			t.amount_minor,
			t.currency,
			t.status,
			t.gateway,
			COALESCE(t.gateway_ref, '') AS gateway_ref,
			a.email`).
		Joins("LEFT JOIN accounts a ON a.id = t.account_id").
		Where("t.status = ?", dbm.PaymentStatusPaid).
		Where("t.paid_at IS NOT NULL").
		Order("t.paid_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
