package db_models

import "github.com/lib/pq"

type Product struct {
	BaseModel
	SKU            string `gorm:"column:sku;uniqueIndex;size:64"`
	Name           string `gorm:"not null"`
	Description    string `gorm:"type:text"`
	PriceMinor     int64  `gorm:"not null;check:price_minor >= 0"`
	Currency       string `gorm:"size:3"`
	Stock          int    `gorm:"not null;default:0;check:stock >= 0"`
	Category       string `gorm:"size:64;index"`
	Commissionable bool   `gorm:"default:true"`
	IsActive       bool   `gorm:"default:true;index"`

	Tags   pq.StringArray `gorm:"type:text[]"`
	Images pq.StringArray `gorm:"type:text[]"`
}
