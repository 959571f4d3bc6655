package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type PagedData struct {
	Items    interface{} `json:"items"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int64       `json:"total"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

type errorMapping struct {
	target  error
	code    int
	message string
}

var serviceErrors = []errorMapping{
	{ErrInvalidPage, http.StatusBadRequest, "Page must be greater than 0"},
	{ErrInvalidPageSize, http.StatusBadRequest, "Page size must be between 1 and 100"},
	{ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
	{RecordNotFound, http.StatusNotFound, "Record not found"},
	{ErrDuplicateRecord, http.StatusConflict, "Record already exists"},
	{ErrAccountNotFound, http.StatusNotFound, "Account not found"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{ErrEmailAlreadyExists, http.StatusConflict, "Email already registered"},
	{ErrInvalidReferral, http.StatusBadRequest, "Referral code is not valid"},
	{ErrAccountSuspended, http.StatusForbidden, "Account is suspended"},
	{ErrInvalidResetToken, http.StatusBadRequest, "Reset token is invalid or expired"},
	{ErrInvalidAmount, http.StatusBadRequest, "Amount must be greater than zero"},
	{ErrInsufficientBalance, http.StatusUnprocessableEntity, "Insufficient wallet balance"},
	{ErrPlanNotFound, http.StatusNotFound, "Plan not found"},
	{ErrPlanInactive, http.StatusUnprocessableEntity, "Plan is not active"},
	{ErrSubscriptionNotFound, http.StatusNotFound, "Subscription not found"},
	{ErrAlreadySubscribed, http.StatusConflict, "Member already has an active subscription"},
	{ErrUnsupportedGateway, http.StatusBadRequest, "Unsupported payment provider"},
	{ErrPaymentDeclined, http.StatusPaymentRequired, "Payment was declined"},
	{ErrDuplicateGatewayRef, http.StatusConflict, "Payment already recorded"},
	{ErrTemplateRender, http.StatusUnprocessableEntity, "Template could not be rendered"},
	{ErrMailDeliveryFailed, http.StatusBadGateway, "Email could not be sent"},
	{ErrPhaseNotFound, http.StatusNotFound, "Phase not found"},
	{ErrRenewalInProgress, http.StatusConflict, "A renewal run is already in progress"},
}

func HandleServiceError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			RespondError(c, m.code, m.message)
			return
		}
	}

	logrus.WithFields(logrus.Fields{
		"trace_id": c.GetString("trace_id"),
		"path":     c.FullPath(),
	}).WithError(err).Error("unhandled service error")
	RespondError(c, http.StatusInternalServerError, "Internal server error")
}
