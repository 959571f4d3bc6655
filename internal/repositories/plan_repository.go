package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

type IPlanRepository interface {
	Create(ctx context.Context, plan *db_models.Plan) error
	Save(ctx context.Context, plan *db_models.Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error)
	GetPlanByCode(ctx context.Context, code string) (*db_models.Plan, error)
	GetAllPlans(ctx context.Context, activeOnly bool) ([]db_models.Plan, error)
}

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) IPlanRepository {
	return &PlanRepository{db: db}
}

func (p PlanRepository) Create(ctx context.Context, plan *db_models.Plan) error {
	return p.db.WithContext(ctx).Create(plan).Error
}

func (p PlanRepository) Save(ctx context.Context, plan *db_models.Plan) error {
	return p.db.WithContext(ctx).Save(plan).Error
}

func (p PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Delete(&db_models.Plan{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p PlanRepository) GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error) {
	var plan db_models.Plan
	err := p.db.WithContext(ctx).First(&plan, "id = ?", planID).Error
	return notFoundAsNil(&plan, err)
}

func (p PlanRepository) GetPlanByCode(ctx context.Context, code string) (*db_models.Plan, error) {
	var plan db_models.Plan
	err := p.db.WithContext(ctx).First(&plan, "code = ?", code).Error
	return notFoundAsNil(&plan, err)
}

func (p PlanRepository) GetAllPlans(ctx context.Context, activeOnly bool) ([]db_models.Plan, error) {
	q := p.db.WithContext(ctx).Order("price_minor ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var plans []db_models.Plan
	if err := q.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
