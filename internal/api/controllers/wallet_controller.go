package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type WalletController struct {
	walletService services.WalletServiceInterface
}

func NewWalletController(walletService services.WalletServiceInterface) *WalletController {
	return &WalletController{walletService: walletService}
}

// MyWallet godoc
// @Summary Current member's wallet
// @Tags Wallet
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /wallet [get]
func (w *WalletController) MyWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wallet, err := w.walletService.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, wallet, "Wallet fetched successfully")
}

// MyTransactions godoc
// @Summary Current member's wallet ledger
// @Tags Wallet
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (w *WalletController) MyTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	txns, total, err := w.walletService.Transactions(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, txns, page, pageSize, total, "Transactions fetched successfully")
}

// MemberWallet godoc
// @Summary A member's wallet
// @Tags Admin Wallets
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id}/wallet [get]
func (w *WalletController) MemberWallet(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	wallet, err := w.walletService.GetOrCreateWallet(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, wallet, "Wallet fetched successfully")
}

// MemberTransactions godoc
// @Summary A member's wallet ledger
// @Tags Admin Wallets
// @Produce json
// @Param id path string true "Member ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id}/wallet/transactions [get]
func (w *WalletController) MemberTransactions(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	txns, total, err := w.walletService.Transactions(c.Request.Context(), id, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, txns, page, pageSize, total, "Transactions fetched successfully")
}

// Adjust godoc
// @Summary Adjust a member's balance
// @Description Positive amounts credit, negative amounts debit. A debit larger than the balance is rejected.
// @Tags Admin Wallets
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body request_models.WalletAdjustmentRequest true "Adjustment"
// @Success 200 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/members/{id}/wallet/adjust [post]
func (w *WalletController) Adjust(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req request_models.WalletAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	txn, err := w.walletService.Adjust(c.Request.Context(), id, adminID, req.AmountMinor, req.Note)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, txn, "Wallet adjusted")
}
