package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	BaseModel
	ActorID    *uuid.UUID `gorm:"type:uuid;index"` // nil for system actions
	Action     string     `gorm:"size:64;index"`
	EntityType string     `gorm:"size:32;index"`
	EntityID   string     `gorm:"size:64;index"`
	IP         string     `gorm:"size:64"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}

type AdminNote struct {
	BaseModel
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubjectMemberID *uuid.UUID `gorm:"type:uuid;index"`
	Body            string     `gorm:"type:text;not null"`
	Pinned          bool       `gorm:"default:false"`
}
