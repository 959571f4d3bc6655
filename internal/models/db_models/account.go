package db_models

import "github.com/google/uuid"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string
	Role         string        `gorm:"size:16;default:member"`
	Status       AccountStatus `gorm:"size:16;default:active;index"`

	// Single-parent pointer into the referral tree.
	SponsorID    *uuid.UUID `gorm:"type:uuid;index"`
	ReferralCode string     `gorm:"uniqueIndex;size:16"`
	PhaseLevel   int        `gorm:"default:0;index"`

	Sponsor *Account `gorm:"foreignKey:SponsorID"`
}
