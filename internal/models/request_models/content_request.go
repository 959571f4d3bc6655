package request_models

type SiteSettingsRequest struct {
	SiteName       string `json:"site_name" binding:"required,max=128"`
	LogoURL        string `json:"logo_url" binding:"omitempty,url"`
	FaviconURL     string `json:"favicon_url" binding:"omitempty,url"`
	PrimaryColor   string `json:"primary_color" binding:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondary_color" binding:"omitempty,hexcolor"`
	SupportEmail   string `json:"support_email" binding:"omitempty,email"`
	FooterText     string `json:"footer_text" binding:"max=2000"`
}

type LandingBlockRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Subtitle    string `json:"subtitle" binding:"max=255"`
	Body        string `json:"body" binding:"max=20000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
	CTAText     string `json:"cta_text" binding:"max=64"`
	CTAURL      string `json:"cta_url" binding:"omitempty,url"`
	Position    int    `json:"position" binding:"min=0"`
	IsPublished bool   `json:"is_published"`
}

type ReorderBlocksRequest struct {
	Keys []string `json:"keys" binding:"required,min=1,dive,required"`
}

type EmailTemplateRequest struct {
	Name     string `json:"name" binding:"required,max=128"`
	Subject  string `json:"subject" binding:"required,max=255"`
	HTMLBody string `json:"html_body" binding:"required"`
	TextBody string `json:"text_body"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

type TemplatePreviewRequest struct {
	Data map[string]any `json:"data"`
}

type TemplateSendTestRequest struct {
	To   string         `json:"to" binding:"required,email"`
	Data map[string]any `json:"data"`
}

type AdminNoteRequest struct {
	SubjectMemberID string `json:"subject_member_id" binding:"omitempty,uuid"`
	Body            string `json:"body" binding:"required,max=10000"`
	Pinned          bool   `json:"pinned"`
}
