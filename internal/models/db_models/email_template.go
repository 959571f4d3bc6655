package db_models

type EmailTemplate struct {
	BaseModel
	Key      string `gorm:"uniqueIndex;size:64"` // e.g. "subscription.renewed"
	Name     string
	Subject  string
	HTMLBody string `gorm:"column:html_body;type:text"`
	TextBody string `gorm:"type:text"`
	IsActive bool   `gorm:"default:true"`
}
