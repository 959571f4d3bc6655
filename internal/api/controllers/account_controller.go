package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/middleware"
	"mlmadmin/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
	summary        services.MemberSummaryServiceInterface
	csrf           *middleware.CSRFTokens
}

func NewAccountController(
	accountService services.AccountServiceInterface,
	summary services.MemberSummaryServiceInterface,
	csrf *middleware.CSRFTokens,
) *AccountController {
	return &AccountController{
		accountService: accountService,
		summary:        summary,
		csrf:           csrf,
	}
}

// Register godoc
// @Summary Register a new member
// @Description Create a member account, optionally under the sponsor owning the referral code
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.SignUpRequest true "Account registration payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /accounts/register [post]
func (a *AccountController) Register(c *gin.Context) {
	var req request_models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	account, err := a.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, account, "Account created successfully")
}

// Login godoc
// @Summary Login to an account
// @Description Authenticate a member or admin and return a token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.LoginRequest true "Login payload"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /accounts/login [post]
func (a *AccountController) Login(c *gin.Context) {
	var req request_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, err := a.accountService.Login(req, c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, token, "Login successful")
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Sends a password reset token to the provided email if it exists
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.RequestForgotPassword true "Forgot password payload"
// @Success 200 {object} utils.APIResponse
// @Router /accounts/forgot-password [post]
func (a *AccountController) ForgotPassword(c *gin.Context) {
	var req request_models.RequestForgotPassword
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "If the email exists, a reset link has been sent")
}

// ResetPassword godoc
// @Summary Reset password
// @Description Resets the password using a valid reset token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.ForgotPasswordRequest true "Password reset payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /accounts/reset-password [post]
func (a *AccountController) ResetPassword(c *gin.Context) {
	var req request_models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.ResetPassword(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Password has been reset successfully")
}

// Me godoc
// @Summary Current account
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /accounts/me [get]
func (a *AccountController) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	account, err := a.accountService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, account, "Account fetched successfully")
}

// MySummary godoc
// @Summary Member dashboard summary
// @Description Phase, current subscription, wallet and network size. Fields that could not be read are listed in degraded.
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /accounts/me/summary [get]
func (a *AccountController) MySummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := a.summary.Summary(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, summary, "Summary fetched successfully")
}

// CSRFToken godoc
// @Summary Issue a CSRF token
// @Description Returns a token bound to the caller; send it back in the X-CSRF-Token header on mutations
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /csrf-token [get]
func (a *AccountController) CSRFToken(c *gin.Context) {
	token, err := a.csrf.Issue(c.GetString(middleware.ContextUserID))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CSRFCookie, token, 3600, "/", "", c.Request.TLS != nil, false)
	utils.RespondSuccess(c, gin.H{"csrf_token": token}, "CSRF token issued")
}

// ListMembers godoc
// @Summary List members
// @Tags Admin Members
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param search query string false "Name or email contains"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members [get]
func (a *AccountController) ListMembers(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	members, total, err := a.accountService.ListMembers(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, members, page, pageSize, total, "Members fetched successfully")
}

// GetMember godoc
// @Summary Get a member
// @Tags Admin Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id} [get]
func (a *AccountController) GetMember(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	account, err := a.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, account, "Member fetched successfully")
}

// MemberSummary godoc
// @Summary Member summary
// @Tags Admin Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id}/summary [get]
func (a *AccountController) MemberSummary(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	summary, err := a.summary.Summary(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, summary, "Summary fetched successfully")
}

// SetMemberPhase godoc
// @Summary Set a member's phase
// @Tags Admin Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body request_models.SetMemberPhaseRequest true "Phase"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id}/phase [put]
func (a *AccountController) SetMemberPhase(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.SetMemberPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.SetMemberPhase(c.Request.Context(), id, *req.PhaseLevel); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Member phase updated")
}

// SetMemberStatus godoc
// @Summary Suspend or reactivate a member
// @Tags Admin Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body request_models.SetMemberStatusRequest true "Status"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id}/status [put]
func (a *AccountController) SetMemberStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.SetMemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.SetMemberStatus(c.Request.Context(), id, db_models.AccountStatus(req.Status)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Member status updated")
}
