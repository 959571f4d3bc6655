package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

type PlanServiceInterface interface {
	GetPlans(ctx context.Context, activeOnly bool) ([]response_models.SubscriptionPlan, error)
	GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, request request_models.PlanRequest) (response_models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, planId uuid.UUID, request request_models.PlanRequest) (response_models.SubscriptionPlan, error)
	SetPlanActive(ctx context.Context, planId uuid.UUID, active bool) (response_models.SubscriptionPlan, error)
	DeletePlan(ctx context.Context, planId uuid.UUID) error
}

func NewPlanService(planRepo repositories.IPlanRepository) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
	}
}

type PlanService struct {
	planRepo repositories.IPlanRepository
}

func (p *PlanService) GetPlans(ctx context.Context, activeOnly bool) ([]response_models.SubscriptionPlan, error) {
	plans, err := p.planRepo.GetAllPlans(ctx, activeOnly)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.SubscriptionPlan, 0, len(plans))
	for i := range plans {
		result = append(result, toPlanResponse(&plans[i]))
	}
	return result, nil
}

func (p *PlanService) GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.SubscriptionPlan, error) {
	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.SubscriptionPlan{}, utils.ErrDatabaseError
	}
	if plan == nil {
		return response_models.SubscriptionPlan{}, utils.ErrPlanNotFound
	}
	return toPlanResponse(plan), nil
}

func (p *PlanService) CreatePlan(ctx context.Context, request request_models.PlanRequest) (response_models.SubscriptionPlan, error) {
	plan := &db_models.Plan{}
	if err := applyPlanRequest(plan, request); err != nil {
		return response_models.SubscriptionPlan{}, err
	}

	if err := p.planRepo.Create(ctx, plan); err != nil {
		if repositories.IsDuplicateKey(err) {
			return response_models.SubscriptionPlan{}, utils.ErrDuplicateRecord
		}
		return response_models.SubscriptionPlan{}, utils.ErrDatabaseError
	}

	logrus.WithFields(logrus.Fields{"plan_id": plan.ID, "code": plan.Code}).Info("plan created")
	return toPlanResponse(plan), nil
}

func (p *PlanService) UpdatePlan(ctx context.Context, planId uuid.UUID, request request_models.PlanRequest) (response_models.SubscriptionPlan, error) {
	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.SubscriptionPlan{}, utils.ErrDatabaseError
	}
	if plan == nil {
		return response_models.SubscriptionPlan{}, utils.ErrPlanNotFound
	}

	if err := applyPlanRequest(plan, request); err != nil {
		return response_models.SubscriptionPlan{}, err
	}
	if err := p.planRepo.Save(ctx, plan); err != nil {
		if repositories.IsDuplicateKey(err) {
			return response_models.SubscriptionPlan{}, utils.ErrDuplicateRecord
		}
		return response_models.SubscriptionPlan{}, utils.ErrDatabaseError
	}
	return toPlanResponse(plan), nil
}

func (p *PlanService) SetPlanActive(ctx context.Context, planId uuid.UUID, active bool) (response_models.SubscriptionPlan, error) {
	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.SubscriptionPlan{}, utils.ErrDatabaseError
	}
	if plan == nil {
		return response_models.SubscriptionPlan{}, utils.ErrPlanNotFound
	}

	plan.IsActive = active
	if err := p.planRepo.Save(ctx, plan); err != nil {
		return response_models.SubscriptionPlan{}, utils.ErrDatabaseError
	}
	return toPlanResponse(plan), nil
}

// DeletePlan soft-deletes; existing subscriptions keep their plan row.
func (p *PlanService) DeletePlan(ctx context.Context, planId uuid.UUID) error {
	if err := p.planRepo.Delete(ctx, planId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrPlanNotFound
		}
		return utils.ErrDatabaseError
	}
	return nil
}

func applyPlanRequest(plan *db_models.Plan, request request_models.PlanRequest) error {
	features := request.Features
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return utils.ErrInvalidInput
	}

	plan.Code = strings.TrimSpace(request.Code)
	plan.Name = strings.TrimSpace(request.Name)
	plan.Description = request.Description
	plan.BackgroundImage = request.BackgroundImage
	plan.Period = db_models.BillingPeriod(request.Period)
	plan.PriceMinor = *request.PriceMinor
	plan.Currency = strings.ToUpper(request.Currency)
	plan.TrialDays = request.TrialDays
	plan.IsActive = *request.IsActive
	plan.Features = datatypes.JSON(raw)
	return nil
}

func toPlanResponse(plan *db_models.Plan) response_models.SubscriptionPlan {
	var features []string
	if len(plan.Features) > 0 {
		if err := json.Unmarshal(plan.Features, &features); err != nil {
			logrus.WithField("plan_id", plan.ID).WithError(err).Warn("plan features are not a string list")
		}
	}

	return response_models.SubscriptionPlan{
		ID:              plan.ID,
		Code:            plan.Code,
		Name:            plan.Name,
		Description:     plan.Description,
		BackgroundImage: plan.BackgroundImage,
		Price:           plan.PriceMinor,
		Currency:        plan.Currency,
		Period:          string(plan.Period),
		TrialDays:       plan.TrialDays,
		IsActive:        plan.IsActive,
		Features:        features,
	}
}
