package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"mlmadmin/pkg/utils"
)

func TestSetPlanActiveTogglesVisibility(t *testing.T) {
	plan := activePlan()
	repo := newFakePlanRepo(plan)
	svc := NewPlanService(repo)
	ctx := context.Background()

	res, err := svc.SetPlanActive(ctx, plan.ID, false)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if res.IsActive {
		t.Fatalf("response = %+v", res)
	}
	visible, err := svc.GetPlans(ctx, true)
	if err != nil || len(visible) != 0 {
		t.Fatalf("active plans = %+v err = %v", visible, err)
	}
	all, _ := svc.GetPlans(ctx, false)
	if len(all) != 1 {
		t.Fatalf("all plans = %d", len(all))
	}

	res, err = svc.SetPlanActive(ctx, plan.ID, true)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !res.IsActive || res.Code != plan.Code {
		t.Fatalf("response = %+v", res)
	}
	if stored, _ := repo.GetPlanInfoById(ctx, plan.ID); !stored.IsActive {
		t.Fatal("activation not saved")
	}
}

func TestSetPlanActiveMissingPlan(t *testing.T) {
	_, err := NewPlanService(newFakePlanRepo()).SetPlanActive(context.Background(), uuid.New(), true)
	if !errors.Is(err, utils.ErrPlanNotFound) {
		t.Fatalf("err = %v, want ErrPlanNotFound", err)
	}
}
