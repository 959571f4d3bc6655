package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Payment struct {
	BaseModel
	AccountID      uuid.UUID     `gorm:"type:uuid;index"`
	SubscriptionID *uuid.UUID    `gorm:"type:uuid;index"` // nil for one-off purchases
	AmountMinor    int64
	Currency       string        `gorm:"size:3"`
	Status         PaymentStatus `gorm:"size:16;index"`

	Gateway string `gorm:"size:16;index"`
	// Nullable so failed attempts without a gateway reference don't collide.
	GatewayRef    *string `gorm:"uniqueIndex;size:128"`
	FailureReason string

	PaidAt *int64 `gorm:"index"`

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Account      Account       `gorm:"foreignKey:AccountID"`
	Subscription *Subscription `gorm:"foreignKey:SubscriptionID"`
}
