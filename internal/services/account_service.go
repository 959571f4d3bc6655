package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	mem "mlmadmin/pkg/memcache"
	"mlmadmin/pkg/utils"
)

const (
	referralCodeLength = 8
	resetTokenTTL      = 30 * time.Minute
)

type AccountServiceInterface interface {
	Login(request request_models.LoginRequest, ctx context.Context) (*resp.AccountLoginResponse, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*resp.AccountResponse, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*resp.AccountResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, request request_models.ForgotPasswordRequest) error

	ListMembers(ctx context.Context, page, pageSize int, search string) ([]resp.AccountResponse, int64, error)
	SetMemberPhase(ctx context.Context, id uuid.UUID, level int) error
	SetMemberStatus(ctx context.Context, id uuid.UUID, status db_models.AccountStatus) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	phaseRepo   repositories.PhaseRepository
	tokens      *utils.TokenIssuer
	resetTokens mem.ResetTokenStore
	mail        IMailService
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	phaseRepo repositories.PhaseRepository,
	tokens *utils.TokenIssuer,
	resetTokens mem.ResetTokenStore,
	mail IMailService,
) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		phaseRepo:   phaseRepo,
		tokens:      tokens,
		resetTokens: resetTokens,
		mail:        mail,
	}
}

func (a *AccountService) Login(request request_models.LoginRequest, ctx context.Context) (*resp.AccountLoginResponse, error) {
	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}
	if account.Status == db_models.AccountSuspended {
		return nil, utils.ErrAccountSuspended
	}

	token, err := a.tokens.CreateToken(account.ID, account.Role)
	if err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"took":       time.Since(startTime).String(),
	}).Debug("login succeeded")

	return &resp.AccountLoginResponse{Token: token, Role: account.Role}, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*resp.AccountResponse, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))

	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	var sponsorID *uuid.UUID
	if code := strings.TrimSpace(request.ReferralCode); code != "" {
		sponsor, err := a.accountRepo.FindByReferralCode(ctx, code)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if sponsor == nil || sponsor.Status != db_models.AccountActive {
			return nil, utils.ErrInvalidReferral
		}
		sponsorID = &sponsor.ID
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	newAccount := &db_models.Account{
		Name:         request.DisplayName,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         db_models.RoleMember,
		Status:       db_models.AccountActive,
		SponsorID:    sponsorID,
	}

	// Referral codes are random; retry on the rare collision.
	for attempt := 0; attempt < 5; attempt++ {
		newAccount.ReferralCode, err = utils.GenerateReferralCode(referralCodeLength)
		if err != nil {
			return nil, err
		}
		err = a.accountRepo.Insert(ctx, newAccount)
		if !repositories.IsDuplicateKey(err) {
			break
		}
		// A concurrent signup may have taken the email; only a referral code
		// collision is worth another attempt.
		taken, findErr := a.accountRepo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, utils.ErrDatabaseError
		}
		if taken != nil {
			return nil, utils.ErrEmailAlreadyExists
		}
		newAccount.ID = uuid.Nil
	}
	if err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, utils.ErrEmailAlreadyExists
		}
		return nil, utils.ErrDatabaseError
	}

	logrus.WithFields(logrus.Fields{
		"account_id": newAccount.ID,
		"sponsor_id": sponsorID,
	}).Info("member registered")
	return toAccountResponse(newAccount), nil
}

func (a *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*resp.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	return toAccountResponse(account), nil
}

// RequestPasswordReset does not reveal whether the email is registered.
func (a *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		logrus.WithField("email", email).Info("password reset requested for unknown email")
		return nil
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	a.resetTokens.Set(token, account.Email, resetTokenTTL)

	if err := a.mail.SendMailToResetPassword(account.Email, token); err != nil {
		logrus.WithField("account_id", account.ID).WithError(err).Error("send reset password email")
		return utils.ErrMailDeliveryFailed
	}
	return nil
}

func (a *AccountService) ResetPassword(ctx context.Context, request request_models.ForgotPasswordRequest) error {
	email := a.resetTokens.Consume(request.Token)
	if email == "" || !strings.EqualFold(email, request.Email) {
		return utils.ErrInvalidResetToken
	}

	hashed, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if err := a.accountRepo.UpdatePassword(ctx, email, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrAccountNotFound
		}
		return utils.ErrDatabaseError
	}
	return nil
}

func (a *AccountService) ListMembers(ctx context.Context, page, pageSize int, search string) ([]resp.AccountResponse, int64, error) {
	accounts, total, err := a.accountRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}

	out := make([]resp.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, *toAccountResponse(&accounts[i]))
	}
	return out, total, nil
}

func (a *AccountService) SetMemberPhase(ctx context.Context, id uuid.UUID, level int) error {
	phase, err := a.phaseRepo.FindByLevel(ctx, level)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if phase == nil && !isDefaultPhase(level) {
		return utils.ErrPhaseNotFound
	}

	if err := a.accountRepo.UpdatePhase(ctx, id, level); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrAccountNotFound
		}
		return utils.ErrDatabaseError
	}
	return nil
}

func (a *AccountService) SetMemberStatus(ctx context.Context, id uuid.UUID, status db_models.AccountStatus) error {
	if status != db_models.AccountActive && status != db_models.AccountSuspended {
		return utils.ErrInvalidInput
	}
	if err := a.accountRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrAccountNotFound
		}
		return utils.ErrDatabaseError
	}
	return nil
}

func isDefaultPhase(level int) bool {
	for _, p := range DefaultPhases() {
		if p.Level == level {
			return true
		}
	}
	return false
}

func toAccountResponse(a *db_models.Account) *resp.AccountResponse {
	out := &resp.AccountResponse{
		ID:           a.ID.String(),
		Name:         a.Name,
		Email:        a.Email,
		Role:         a.Role,
		Status:       string(a.Status),
		ReferralCode: a.ReferralCode,
		PhaseLevel:   a.PhaseLevel,
		CreatedAt:    a.CreatedAt,
	}
	if a.SponsorID != nil {
		s := a.SponsorID.String()
		out.SponsorID = &s
	}
	return out
}
