package response_models

import (
	"github.com/google/uuid"
)

type SubscriptionPlan struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`                  // e.g., "starter_monthly", "pro_yearly"
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	BackgroundImage string    `json:"background_image"`
	Period          string    `json:"period"`                // "month" | "year"
	Price           int64     `json:"price"`                 // minor units
	Currency        string    `json:"currency"`
	TrialDays       int32     `json:"trial_days"`
	IsActive        bool      `json:"is_active"`
	Features        []string  `json:"features,omitempty"`
}

type SubscriptionResponse struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	PlanCode  string    `json:"plan_code"`
	PlanName  string    `json:"plan_name"`
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	StartsAt  int64     `json:"starts_at"`
	EndsAt    int64     `json:"ends_at"`
	AutoRenew bool      `json:"auto_renew"`
}

type RenewalReport struct {
	Processed int      `json:"processed"`
	Renewed   int      `json:"renewed"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Expired   int      `json:"expired"`
	Errors    []string `json:"errors,omitempty"`
}
