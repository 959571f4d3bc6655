package db_models

import "github.com/google/uuid"

type Wallet struct {
	BaseModel
	AccountID    uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	BalanceMinor int64     `gorm:"not null;default:0;check:balance_minor >= 0"`
	Currency     string    `gorm:"size:3"`
}

type WalletTxnKind string

const (
	WalletCredit WalletTxnKind = "credit"
	WalletDebit  WalletTxnKind = "debit"
)

type WalletTxnReason string

const (
	ReasonCommission   WalletTxnReason = "commission"
	ReasonPurchase     WalletTxnReason = "purchase"
	ReasonSubscription WalletTxnReason = "subscription"
	ReasonWithdrawal   WalletTxnReason = "withdrawal"
	ReasonAdjustment   WalletTxnReason = "adjustment"
	ReasonRefund       WalletTxnReason = "refund"
)

type WalletTransaction struct {
	BaseModel
	WalletID     uuid.UUID       `gorm:"type:uuid;index"`
	Kind         WalletTxnKind   `gorm:"size:8"`
	Reason       WalletTxnReason `gorm:"size:16;index"`
	AmountMinor  int64
	BalanceAfter int64
	RefType      string `gorm:"size:32"`
	RefID        string `gorm:"size:64;index"`
	Description  string
}
