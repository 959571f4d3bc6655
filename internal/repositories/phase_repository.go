package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mlmadmin/internal/models/db_models"
)

type PhaseRepository interface {
	List(ctx context.Context) ([]db_models.Phase, error)
	FindByLevel(ctx context.Context, level int) (*db_models.Phase, error)
	Upsert(ctx context.Context, phase *db_models.Phase) error
}

type phaseRepository struct {
	db *gorm.DB
}

func NewPhaseRepository(db *gorm.DB) PhaseRepository {
	return &phaseRepository{db: db}
}

func (r *phaseRepository) List(ctx context.Context) ([]db_models.Phase, error) {
	var phases []db_models.Phase
	err := r.db.WithContext(ctx).Order("level ASC").Find(&phases).Error
	return phases, err
}

func (r *phaseRepository) FindByLevel(ctx context.Context, level int) (*db_models.Phase, error) {
	var phase db_models.Phase
	err := r.db.WithContext(ctx).First(&phase, "level = ?", level).Error
	return notFoundAsNil(&phase, err)
}

func (r *phaseRepository) Upsert(ctx context.Context, phase *db_models.Phase) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "level"}},
		UpdateAll: true,
	}).Create(phase).Error
}
