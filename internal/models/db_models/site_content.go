package db_models

// SiteSettings is a single-row table holding site branding.
type SiteSettings struct {
	ID             uint `gorm:"primaryKey"`
	SiteName       string
	LogoURL        string
	FaviconURL     string
	PrimaryColor   string `gorm:"size:7"`
	SecondaryColor string `gorm:"size:7"`
	SupportEmail   string
	FooterText     string `gorm:"type:text"`
	UpdatedAt      int64  `gorm:"autoUpdateTime"`
}

const SiteSettingsID uint = 1

type LandingBlock struct {
	BaseModel
	Key         string `gorm:"uniqueIndex;size:64"`
	Title       string
	Subtitle    string
	Body        string `gorm:"type:text"`
	ImageURL    string
	CTAText     string `gorm:"column:cta_text"`
	CTAURL      string `gorm:"column:cta_url"`
	Position    int    `gorm:"index"`
	IsPublished bool   `gorm:"default:false"`
}
