package response_models

import (
	"time"

	"github.com/google/uuid"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Optional: timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalMembers          int64 `json:"total_members"`
	NewMembers            int64 `json:"new_members"`
	ActiveProducts        int64 `json:"active_products"`
	ActiveSubscriptions   int64 `json:"active_subscriptions"`
	TrialingSubscriptions int64 `json:"trialing_subscriptions"`
	PastDueSubscriptions  int64 `json:"past_due_subscriptions"`
	CanceledSubscriptions int64 `json:"canceled_subscriptions"`
	ExpiredSubscriptions  int64 `json:"expired_subscriptions"`

	// Financial KPIs
	MRRMinor  int64   `json:"mrr_minor"`  // monthly recurring revenue (minor units)
	ARRMinor  int64   `json:"arr_minor"`  // ARR = 12 * MRR
	ARPUMinor float64 `json:"arpu_minor"` // avg revenue per active subscriber (minor units)
	ChurnPct  float64 `json:"churn_pct"`  // (canceled during period / subscribers at period start) * 100

	// Multilevel KPIs
	WalletLiabilitiesMinor int64 `json:"wallet_liabilities_minor"` // sum of all wallet balances
	CommissionsPaidMinor   int64 `json:"commissions_paid_minor"`   // commissions created in range
}

type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Value  int64     `json:"value"`
}

type RevenueSeries struct {
	Currency   string        `json:"currency"`
	Points     []SeriesPoint `json:"points"`
	TotalMinor int64         `json:"total_minor"`
}

type CountSeries struct {
	Points []SeriesPoint `json:"points"`
}

type PlanMixItem struct {
	PlanID     uuid.UUID `json:"plan_id"`
	PlanCode   string    `json:"plan_code"`
	PlanName   string    `json:"plan_name"`
	Count      int64     `json:"count"`
	Percent    float64   `json:"percent"`
	Period     string    `json:"period"` // "month" | "year"
	PriceMinor int64     `json:"price_minor"`
}

type PlanMix struct {
	Items []PlanMixItem `json:"items"`
}

type TopEarner struct {
	AccountID   uuid.UUID `json:"account_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhaseLevel  int       `json:"phase_level"`
	AmountMinor int64     `json:"amount_minor"`
}

type RecentPayment struct {
	ID           uuid.UUID  `json:"id"`
	PaidAt       *time.Time `json:"paid_at"`
	AmountMinor  int64      `json:"amount_minor"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	Gateway      string     `json:"gateway"`
	GatewayRef   string     `json:"gateway_ref"`
	AccountEmail string     `json:"account_email"`
}

type DashboardReport struct {
	Range          TimeRange       `json:"range"`
	KPIs           KPIBlock        `json:"kpis"`
	Revenue        RevenueSeries   `json:"revenue"`
	NewMembers     CountSeries     `json:"new_members"`
	NewSubs        CountSeries     `json:"new_subscriptions"`
	PlanMix        PlanMix         `json:"plan_mix"`
	TopEarners     []TopEarner     `json:"top_earners"`
	RecentPayments []RecentPayment `json:"recent_payments"`
}
