package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Phase struct {
	Level int    `gorm:"primaryKey;autoIncrement:false"`
	Name  string `gorm:"size:64"`
	// Percentages, 30 = 30%.
	CommissionRate    decimal.Decimal `gorm:"type:numeric(5,2)"`
	NetworkRate       decimal.Decimal `gorm:"type:numeric(5,2)"`
	MaxNetworkDepth   int
	MinPersonalVolume int64
	UpdatedAt         int64 `gorm:"autoUpdateTime"`
}

type CommissionSource string

const (
	SourceSale         CommissionSource = "sale"
	SourceSubscription CommissionSource = "subscription"
)

type Commission struct {
	BaseModel
	// Unique per (source, ref, beneficiary, level) so replays don't pay twice.
	BeneficiaryID uuid.UUID        `gorm:"type:uuid;index;uniqueIndex:idx_commission_once"`
	OriginID      uuid.UUID        `gorm:"type:uuid;index"`
	Source        CommissionSource `gorm:"size:16;uniqueIndex:idx_commission_once"`
	RefID         string           `gorm:"size:64;uniqueIndex:idx_commission_once"`
	Level         int              `gorm:"uniqueIndex:idx_commission_once"`
	PhaseLevel    int
	Rate          decimal.Decimal `gorm:"type:numeric(5,2)"`
	BaseMinor     int64
	AmountMinor   int64
	Currency      string `gorm:"size:3"`
}
