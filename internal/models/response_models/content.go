package response_models

type SiteContent struct {
	Settings SiteSettingsResponse   `json:"settings"`
	Blocks   []LandingBlockResponse `json:"blocks"`
}

type SiteSettingsResponse struct {
	SiteName       string `json:"site_name"`
	LogoURL        string `json:"logo_url"`
	FaviconURL     string `json:"favicon_url"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	SupportEmail   string `json:"support_email"`
	FooterText     string `json:"footer_text"`
	UpdatedAt      int64  `json:"updated_at"`
}

type LandingBlockResponse struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Body        string `json:"body"`
	ImageURL    string `json:"image_url"`
	CTAText     string `json:"cta_text"`
	CTAURL      string `json:"cta_url"`
	Position    int    `json:"position"`
	IsPublished bool   `json:"is_published"`
}

type RenderedEmail struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type ProductResponse struct {
	ID             string   `json:"id"`
	SKU            string   `json:"sku"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	PriceMinor     int64    `json:"price_minor"`
	Currency       string   `json:"currency"`
	Stock          int      `json:"stock"`
	Category       string   `json:"category"`
	Commissionable bool     `json:"commissionable"`
	IsActive       bool     `json:"is_active"`
	Tags           []string `json:"tags"`
	Images         []string `json:"images"`
	UpdatedAt      int64    `json:"updated_at"`
}

type EmailTemplateResponse struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
	IsActive bool   `json:"is_active"`
}
