package utils

import "errors"

var (
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
	RecordNotFound     = errors.New("record not found")
	ErrDuplicateRecord = errors.New("record already exists")
	ErrInvalidInput    = errors.New("invalid input")

	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidReferral    = errors.New("invalid referral code")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanInactive         = errors.New("plan is not active")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAlreadySubscribed    = errors.New("member already has an active subscription")
	ErrUnsupportedGateway   = errors.New("unsupported payment gateway")
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrDuplicateGatewayRef  = errors.New("gateway reference already recorded")
	ErrTemplateRender       = errors.New("template render failed")
	ErrMailDeliveryFailed   = errors.New("mail delivery failed")
	ErrPhaseNotFound        = errors.New("phase not found")
	ErrRenewalInProgress    = errors.New("renewal run already in progress")
)
