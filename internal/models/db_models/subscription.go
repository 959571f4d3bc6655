package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionStatus string

const (
	SubStatusTrialing SubscriptionStatus = "trialing"
	SubStatusActive   SubscriptionStatus = "active"
	SubStatusPastDue  SubscriptionStatus = "past_due"
	SubStatusCanceled SubscriptionStatus = "canceled"
	SubStatusExpired  SubscriptionStatus = "expired"
)

// LiveStatuses are the statuses that still entitle a member to their plan.
var LiveStatuses = []SubscriptionStatus{SubStatusActive, SubStatusTrialing, SubStatusPastDue}

type Subscription struct {
	BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;index"`
	PlanID    uuid.UUID `gorm:"type:uuid;index"`

	Status     SubscriptionStatus `gorm:"size:16;index"`
	StartsAt   int64              `gorm:"not null"`
	EndsAt     int64              `gorm:"not null;index"`
	CanceledAt *int64
	PastDueAt  *int64
	AutoRenew  bool `gorm:"default:true"`

	// Gateway coupling: "card", "wallet" or "paypal".
	Provider           string `gorm:"size:16;index"`
	ProviderCustomerID string `gorm:"index"`
	PaymentMethodRef   string

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Account Account `gorm:"foreignKey:AccountID"`
	Plan    Plan    `gorm:"foreignKey:PlanID"`
}
