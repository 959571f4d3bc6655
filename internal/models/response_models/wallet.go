package response_models

import "github.com/google/uuid"

type WalletResponse struct {
	AccountID    uuid.UUID `json:"account_id"`
	BalanceMinor int64     `json:"balance_minor"`
	Currency     string    `json:"currency"`
}

type WalletTransactionResponse struct {
	ID           uuid.UUID `json:"id"`
	Kind         string    `json:"kind"`
	Reason       string    `json:"reason"`
	AmountMinor  int64     `json:"amount_minor"`
	BalanceAfter int64     `json:"balance_after"`
	RefType      string    `json:"ref_type,omitempty"`
	RefID        string    `json:"ref_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    int64     `json:"created_at"`
}

type CommissionResponse struct {
	ID            uuid.UUID `json:"id"`
	BeneficiaryID uuid.UUID `json:"beneficiary_id"`
	OriginID      uuid.UUID `json:"origin_id"`
	Source        string    `json:"source"`
	RefID         string    `json:"ref_id"`
	Level         int       `json:"level"`
	PhaseLevel    int       `json:"phase_level"`
	Rate          string    `json:"rate"`
	BaseMinor     int64     `json:"base_minor"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency"`
	CreatedAt     int64     `json:"created_at"`
}

type PhaseResponse struct {
	Level             int    `json:"level"`
	Name              string `json:"name"`
	CommissionRate    string `json:"commission_rate"`
	NetworkRate       string `json:"network_rate"`
	MaxNetworkDepth   int    `json:"max_network_depth"`
	MinPersonalVolume int64  `json:"min_personal_volume"`
}

type NetworkSummary struct {
	DirectReferrals int64 `json:"direct_referrals"`
	NetworkSize     int64 `json:"network_size"`
}

// MemberSummary is assembled from independent reads; any field whose read
// failed holds its zero value and is listed in Degraded.
type MemberSummary struct {
	AccountID    uuid.UUID             `json:"account_id"`
	Phase        PhaseResponse         `json:"phase"`
	Subscription *SubscriptionResponse `json:"subscription"`
	Wallet       WalletResponse        `json:"wallet"`
	Network      NetworkSummary        `json:"network"`
	Degraded     []string              `json:"degraded,omitempty"`
}
