package request_models

type SubscribeRequest struct {
	PlanCode         string `json:"plan_code" binding:"required"`
	Provider         string `json:"provider" binding:"required,oneof=card wallet paypal"`
	CustomerRef      string `json:"customer_ref" binding:"omitempty,max=128"`
	PaymentMethodRef string `json:"payment_method_ref" binding:"required_unless=Provider wallet,max=128"`
}

type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"at_period_end"`
}

type WalletAdjustmentRequest struct {
	// Signed: positive credits, negative debits.
	AmountMinor int64  `json:"amount_minor" binding:"required,ne=0"`
	Note        string `json:"note" binding:"required,max=255"`
}

type RecordSaleRequest struct {
	SellerID    string `json:"seller_id" binding:"required,uuid"`
	BuyerID     string `json:"buyer_id" binding:"required,uuid"`
	AmountMinor int64  `json:"amount_minor" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"required,len=3"`
	OrderRef    string `json:"order_ref" binding:"required,max=64"`
}

type UpdatePhaseRequest struct {
	Name              string `json:"name" binding:"required,max=64"`
	CommissionRate    string `json:"commission_rate" binding:"required,numeric"`
	NetworkRate       string `json:"network_rate" binding:"required,numeric"`
	MaxNetworkDepth   *int   `json:"max_network_depth" binding:"required,min=0,max=20"`
	MinPersonalVolume *int64 `json:"min_personal_volume" binding:"required,min=0"`
}
