package request_models

type ProductRequest struct {
	SKU            string   `json:"sku" binding:"required,max=64"`
	Name           string   `json:"name" binding:"required,max=255"`
	Description    string   `json:"description" binding:"max=5000"`
	PriceMinor     *int64   `json:"price_minor" binding:"required,min=0"`
	Currency       string   `json:"currency" binding:"required,len=3,alpha"`
	Stock          *int     `json:"stock" binding:"required,min=0"`
	Category       string   `json:"category" binding:"max=64"`
	Commissionable *bool    `json:"commissionable" binding:"required"`
	IsActive       *bool    `json:"is_active" binding:"required"`
	Tags           []string `json:"tags" binding:"max=20,dive,max=32"`
	Images         []string `json:"images" binding:"max=10,dive,url"`
}

type PlanRequest struct {
	Code            string   `json:"code" binding:"required,max=64"`
	Name            string   `json:"name" binding:"required,max=255"`
	Description     *string  `json:"description" binding:"omitempty,max=2000"`
	BackgroundImage string   `json:"background_image" binding:"omitempty,url"`
	Period          string   `json:"period" binding:"required,oneof=month year"`
	PriceMinor      *int64   `json:"price_minor" binding:"required,min=0"`
	Currency        string   `json:"currency" binding:"required,len=3,alpha"`
	TrialDays       int32    `json:"trial_days" binding:"min=0,max=365"`
	IsActive        *bool    `json:"is_active" binding:"required"`
	Features        []string `json:"features" binding:"max=50,dive,max=128"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
