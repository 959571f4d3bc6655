package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

type AuditFilter struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
}

type AuditRepository interface {
	Insert(ctx context.Context, entry *db_models.AuditLog) error
	List(ctx context.Context, filter AuditFilter, page, pageSize int) ([]db_models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, entry *db_models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter, page, pageSize int) ([]db_models.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&db_models.AuditLog{})
	if filter.ActorID != nil {
		q = q.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []db_models.AuditLog
	if err := q.Scopes(paginate(page, pageSize)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
