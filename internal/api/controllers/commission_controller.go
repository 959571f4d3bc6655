package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type CommissionController struct {
	commissionService services.CommissionServiceInterface
}

func NewCommissionController(commissionService services.CommissionServiceInterface) *CommissionController {
	return &CommissionController{commissionService: commissionService}
}

type uplineEntry struct {
	Level      int       `json:"level"`
	AccountID  uuid.UUID `json:"account_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	PhaseLevel int       `json:"phase_level"`
}

// ListPhases godoc
// @Summary List phases
// @Tags Phases
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /phases [get]
func (cc *CommissionController) ListPhases(c *gin.Context) {
	phases, err := cc.commissionService.ListPhases(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, phases, "Phases fetched successfully")
}

// UpdatePhase godoc
// @Summary Create or update a phase
// @Description Rates are percentages, "30" means 30%
// @Tags Admin Phases
// @Accept json
// @Produce json
// @Param level path int true "Phase level"
// @Param request body request_models.UpdatePhaseRequest true "Phase"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/phases/{level} [put]
func (cc *CommissionController) UpdatePhase(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 0 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid phase level")
		return
	}
	var req request_models.UpdatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	phase, err := cc.commissionService.UpdatePhase(c.Request.Context(), level, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, phase, "Phase saved")
}

// MyCommissions godoc
// @Summary Current member's commissions
// @Tags Commissions
// @Produce json
// @Param start query string false "RFC3339 start"
// @Param end query string false "RFC3339 end"
// @Param last_days query int false "Lookback in days, instead of start/end"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /commissions [get]
func (cc *CommissionController) MyCommissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cc.listCommissions(c, &userID)
}

// ListCommissions godoc
// @Summary List commissions
// @Tags Admin Commissions
// @Produce json
// @Param member_id query string false "Beneficiary member ID"
// @Param start query string false "RFC3339 start"
// @Param end query string false "RFC3339 end"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/commissions [get]
func (cc *CommissionController) ListCommissions(c *gin.Context) {
	var beneficiary *uuid.UUID
	if raw := c.Query("member_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid member ID")
			return
		}
		beneficiary = &id
	}
	cc.listCommissions(c, beneficiary)
}

func (cc *CommissionController) listCommissions(c *gin.Context, beneficiary *uuid.UUID) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	start, end, ok := timeRangeQuery(c, time.Now())
	if !ok {
		return
	}

	rows, total, err := cc.commissionService.ListCommissions(c.Request.Context(), beneficiary, start, end, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, rows, page, pageSize, total, "Commissions fetched successfully")
}

// RecordSale godoc
// @Summary Record a product sale
// @Description Pays the seller commission and the network overrides of the seller's upline. Replaying the same order_ref pays nothing twice.
// @Tags Admin Commissions
// @Accept json
// @Produce json
// @Param request body request_models.RecordSaleRequest true "Sale"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/sales [post]
func (cc *CommissionController) RecordSale(c *gin.Context) {
	var req request_models.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := cc.commissionService.RecordSale(c.Request.Context(), services.SaleInput{
		SellerID:    uuid.MustParse(req.SellerID),
		BuyerID:     uuid.MustParse(req.BuyerID),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		OrderRef:    req.OrderRef,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, "Sale recorded")
}

// Upline godoc
// @Summary A member's upline chain
// @Tags Admin Members
// @Produce json
// @Param id path string true "Member ID"
// @Param depth query int false "Levels to walk (default: configured bound)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id}/upline [get]
func (cc *CommissionController) Upline(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	depth, err := strconv.Atoi(c.DefaultQuery("depth", "0"))
	if err != nil || depth < 0 || depth > 20 {
		utils.RespondError(c, http.StatusBadRequest, "depth must be between 0 and 20")
		return
	}

	chain, err := cc.commissionService.GetUplineChain(c.Request.Context(), id, depth)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	out := make([]uplineEntry, 0, len(chain))
	for _, m := range chain {
		out = append(out, uplineEntry{
			Level:      m.Level,
			AccountID:  m.Account.ID,
			Name:       m.Account.Name,
			Email:      m.Account.Email,
			Status:     string(m.Account.Status),
			PhaseLevel: m.Account.PhaseLevel,
		})
	}
	utils.RespondSuccess(c, out, "Upline fetched successfully")
}
