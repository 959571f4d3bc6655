package repositories

import (
	"context"

	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

type EmailTemplateRepository interface {
	List(ctx context.Context) ([]db_models.EmailTemplate, error)
	FindByKey(ctx context.Context, key string) (*db_models.EmailTemplate, error)
	Save(ctx context.Context, tpl *db_models.EmailTemplate) error
	Delete(ctx context.Context, key string) error
}

type emailTemplateRepository struct {
	db *gorm.DB
}

func NewEmailTemplateRepository(db *gorm.DB) EmailTemplateRepository {
	return &emailTemplateRepository{db: db}
}

func (r *emailTemplateRepository) List(ctx context.Context) ([]db_models.EmailTemplate, error) {
	var templates []db_models.EmailTemplate
	err := r.db.WithContext(ctx).Order("key ASC").Find(&templates).Error
	return templates, err
}

func (r *emailTemplateRepository) FindByKey(ctx context.Context, key string) (*db_models.EmailTemplate, error) {
	var tpl db_models.EmailTemplate
	err := r.db.WithContext(ctx).First(&tpl, "key = ?", key).Error
	return notFoundAsNil(&tpl, err)
}

func (r *emailTemplateRepository) Save(ctx context.Context, tpl *db_models.EmailTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}

func (r *emailTemplateRepository) Delete(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&db_models.EmailTemplate{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
