package response_models

type AccountLoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type AccountResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Status       string  `json:"status"`
	SponsorID    *string `json:"sponsor_id,omitempty"`
	ReferralCode string  `json:"referral_code"`
	PhaseLevel   int     `json:"phase_level"`
	CreatedAt    int64   `json:"created_at"`
}
