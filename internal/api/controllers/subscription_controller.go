package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type SubscriptionController struct {
	subscriptionService services.SubscriptionServiceInterface
	renewalService      services.RenewalServiceInterface
}

func NewSubscriptionController(
	subscriptionService services.SubscriptionServiceInterface,
	renewalService services.RenewalServiceInterface,
) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
		renewalService:      renewalService,
	}
}

// Subscribe godoc
// @Summary Subscribe to a plan
// @Description Charges the first period through the chosen provider (card, wallet or paypal) and activates the subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body request_models.SubscribeRequest true "Subscribe payload"
// @Success 201 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions [post]
func (s *SubscriptionController) Subscribe(c *gin.Context) {
	var request request_models.SubscribeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, err := s.subscriptionService.Subscribe(c.Request.Context(), userID, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, sub, "Subscription created successfully")
}

// GetCurrent godoc
// @Summary Current subscription
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/current [get]
func (s *SubscriptionController) GetCurrent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, err := s.subscriptionService.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, sub, "Subscription fetched successfully")
}

// Cancel godoc
// @Summary Cancel a subscription
// @Description Cancels now, or stops auto renewal so it ends with the current period
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param request body request_models.CancelSubscriptionRequest false "Cancel options"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/{id}/cancel [post]
func (s *SubscriptionController) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request request_models.CancelSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	sub, err := s.subscriptionService.Cancel(c.Request.Context(), userID, id, request.AtPeriodEnd)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, sub, "Subscription canceled")
}

// ListSubscriptions godoc
// @Summary List subscriptions
// @Tags Admin Subscriptions
// @Produce json
// @Param status query string false "trialing | active | past_due | canceled | expired"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions [get]
func (s *SubscriptionController) ListSubscriptions(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	status := c.Query("status")
	switch status {
	case "", "trialing", "active", "past_due", "canceled", "expired":
	default:
		utils.RespondError(c, http.StatusBadRequest, "Invalid status filter")
		return
	}

	subs, total, err := s.subscriptionService.List(c.Request.Context(), status, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, subs, page, pageSize, total, "Subscriptions fetched successfully")
}

// RunRenewals godoc
// @Summary Run the renewal pass now
// @Description Charges every due subscription and expires those past the grace period
// @Tags Admin Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions/renewals/run [post]
func (s *SubscriptionController) RunRenewals(c *gin.Context) {
	report, err := s.renewalService.RenewDue(c.Request.Context(), time.Now())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Renewal run finished")
}
