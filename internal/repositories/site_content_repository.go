package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mlmadmin/internal/models/db_models"
)

type SiteContentRepository interface {
	GetSettings(ctx context.Context) (*db_models.SiteSettings, error)
	SaveSettings(ctx context.Context, settings *db_models.SiteSettings) error

	ListBlocks(ctx context.Context, publishedOnly bool) ([]db_models.LandingBlock, error)
	FindBlockByKey(ctx context.Context, key string) (*db_models.LandingBlock, error)
	SaveBlock(ctx context.Context, block *db_models.LandingBlock) error
	DeleteBlock(ctx context.Context, key string) error
	SetPositions(ctx context.Context, keys []string) error
}

type siteContentRepository struct {
	db *gorm.DB
}

func NewSiteContentRepository(db *gorm.DB) SiteContentRepository {
	return &siteContentRepository{db: db}
}

// GetSettings returns an empty settings row when none has been saved yet.
func (r *siteContentRepository) GetSettings(ctx context.Context) (*db_models.SiteSettings, error) {
	var settings db_models.SiteSettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", db_models.SiteSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &db_models.SiteSettings{ID: db_models.SiteSettingsID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *siteContentRepository) SaveSettings(ctx context.Context, settings *db_models.SiteSettings) error {
	settings.ID = db_models.SiteSettingsID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(settings).Error
}

func (r *siteContentRepository) ListBlocks(ctx context.Context, publishedOnly bool) ([]db_models.LandingBlock, error) {
	q := r.db.WithContext(ctx).Order("position ASC, key ASC")
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var blocks []db_models.LandingBlock
	if err := q.Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *siteContentRepository) FindBlockByKey(ctx context.Context, key string) (*db_models.LandingBlock, error) {
	var block db_models.LandingBlock
	err := r.db.WithContext(ctx).First(&block, "key = ?", key).Error
	return notFoundAsNil(&block, err)
}

func (r *siteContentRepository) SaveBlock(ctx context.Context, block *db_models.LandingBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}

func (r *siteContentRepository) DeleteBlock(ctx context.Context, key string) error {
	// Hard delete so the key can be reused.
	res := r.db.WithContext(ctx).Unscoped().Delete(&db_models.LandingBlock{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPositions assigns positions 0..n-1 following keys order, in one transaction.
func (r *siteContentRepository) SetPositions(ctx context.Context, keys []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, key := range keys {
			res := tx.Model(&db_models.LandingBlock{}).Where("key = ?", key).Update("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
