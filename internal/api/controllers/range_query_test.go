package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/services"
)

var rangeNow = time.Date(2026, 3, 15, 12, 30, 45, 0, time.UTC)

type stubDashboard struct {
	got *resp.TimeRange
}

func (s *stubDashboard) BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	s.got = &rng
	return &resp.DashboardReport{}, nil
}

type stubCommissionList struct {
	services.CommissionServiceInterface
	start, end time.Time
	called     bool
}

func (s *stubCommissionList) ListCommissions(ctx context.Context, beneficiaryID *uuid.UUID, start, end time.Time, page, pageSize int) ([]resp.CommissionResponse, int64, error) {
	s.called = true
	s.start, s.end = start, end
	return []resp.CommissionResponse{}, 0, nil
}

func newDashboardRouter(svc services.DashboardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewDashboardController(svc)
	ctrl.now = func() time.Time { return rangeNow }
	r := gin.New()
	r.GET("/admin/dashboard", ctrl.GetDashboard)
	return r
}

func TestDashboardRange(t *testing.T) {
	end := rangeNow.Truncate(time.Minute)

	tests := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"default window", "", end.AddDate(0, 0, -30), end},
		{"last days", "?last_days=7", end.AddDate(0, 0, -7), end},
		{
			"reversed bounds",
			"?start=2026-02-01T00:00:00Z&end=2026-01-01T00:00:00Z",
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{"start only", "?start=2026-03-01T00:00:00Z", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), end},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubDashboard{}
			w := doJSON(newDashboardRouter(svc), http.MethodGet, "/admin/dashboard"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
			}
			if !svc.got.Start.Equal(tt.wantStart) || !svc.got.End.Equal(tt.wantEnd) {
				t.Fatalf("range = %s..%s, want %s..%s", svc.got.Start, svc.got.End, tt.wantStart, tt.wantEnd)
			}
			if svc.got.Interval != "day" || svc.got.Timezone != "UTC" {
				t.Fatalf("range = %+v", svc.got)
			}
		})
	}
}

func TestDashboardRejectsBadQuery(t *testing.T) {
	queries := []string{
		"?last_days=7&start=2026-01-01T00:00:00Z",
		"?last_days=0",
		"?start=yesterday",
		"?interval=hour",
		"?tz=Mars/Olympus",
	}
	for _, q := range queries {
		svc := &stubDashboard{}
		w := doJSON(newDashboardRouter(svc), http.MethodGet, "/admin/dashboard"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", q, w.Code)
		}
		if svc.got != nil {
			t.Fatalf("%s: reached the service", q)
		}
	}
}

func TestListCommissionsRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubCommissionList{}
	r := gin.New()
	r.GET("/admin/commissions", NewCommissionController(svc).ListCommissions)

	w := doJSON(r, http.MethodGet, "/admin/commissions?end=2026-01-01T00:00:00Z&start=2026-02-01T00:00:00Z", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !svc.start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) || !svc.end.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("range = %s..%s", svc.start, svc.end)
	}

	// Open-ended by default.
	svc.called = false
	if w := doJSON(r, http.MethodGet, "/admin/commissions", ""); w.Code != http.StatusOK || !svc.called {
		t.Fatalf("status = %d", w.Code)
	}
	if !svc.start.IsZero() || !svc.end.IsZero() {
		t.Fatalf("range = %s..%s, want unbounded", svc.start, svc.end)
	}

	svc.called = false
	if w := doJSON(r, http.MethodGet, "/admin/commissions?end=soon", ""); w.Code != http.StatusBadRequest || svc.called {
		t.Fatalf("status = %d called = %v", w.Code, svc.called)
	}
}
