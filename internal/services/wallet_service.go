package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

// WalletRef ties a ledger line to the thing that caused it.
type WalletRef struct {
	Type        string
	ID          string
	Description string
	// OncePerRef turns a replay with the same Type/ID into a no-op.
	OncePerRef bool
}

type WalletServiceInterface interface {
	GetOrCreateWallet(ctx context.Context, accountID uuid.UUID) (*resp.WalletResponse, error)
	Balance(ctx context.Context, accountID uuid.UUID) (int64, error)
	Credit(ctx context.Context, accountID uuid.UUID, amountMinor int64, reason db_models.WalletTxnReason, ref WalletRef) (*resp.WalletTransactionResponse, error)
	Debit(ctx context.Context, accountID uuid.UUID, amountMinor int64, reason db_models.WalletTxnReason, ref WalletRef) (*resp.WalletTransactionResponse, error)
	Transactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]resp.WalletTransactionResponse, int64, error)
	// Adjust applies a signed admin correction: positive credits, negative debits.
	Adjust(ctx context.Context, accountID, adminID uuid.UUID, signedAmountMinor int64, note string) (*resp.WalletTransactionResponse, error)
}

type WalletService struct {
	walletRepo  repositories.WalletRepository
	accountRepo repositories.AccountRepository
	currency    string
}

func NewWalletService(walletRepo repositories.WalletRepository, accountRepo repositories.AccountRepository, currency string) WalletServiceInterface {
	return &WalletService{
		walletRepo:  walletRepo,
		accountRepo: accountRepo,
		currency:    currency,
	}
}

func (s *WalletService) GetOrCreateWallet(ctx context.Context, accountID uuid.UUID) (*resp.WalletResponse, error) {
	if err := s.ensureAccount(ctx, accountID); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetOrCreate(ctx, accountID, s.currency)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toWalletResponse(wallet), nil
}

// Balance reports 0 for members that never had a wallet.
func (s *WalletService) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	wallet, err := s.walletRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return 0, utils.ErrDatabaseError
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.BalanceMinor, nil
}

func (s *WalletService) Credit(ctx context.Context, accountID uuid.UUID, amountMinor int64, reason db_models.WalletTxnReason, ref WalletRef) (*resp.WalletTransactionResponse, error) {
	return s.apply(ctx, accountID, db_models.WalletCredit, amountMinor, reason, ref)
}

func (s *WalletService) Debit(ctx context.Context, accountID uuid.UUID, amountMinor int64, reason db_models.WalletTxnReason, ref WalletRef) (*resp.WalletTransactionResponse, error) {
	return s.apply(ctx, accountID, db_models.WalletDebit, amountMinor, reason, ref)
}

func (s *WalletService) Transactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]resp.WalletTransactionResponse, int64, error) {
	if page < 1 {
		return nil, 0, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return nil, 0, utils.ErrInvalidPageSize
	}

	txns, total, err := s.walletRepo.ListTransactions(ctx, accountID, page, pageSize)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}

	out := make([]resp.WalletTransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, *toWalletTxnResponse(&txns[i]))
	}
	return out, total, nil
}

func (s *WalletService) Adjust(ctx context.Context, accountID, adminID uuid.UUID, signedAmountMinor int64, note string) (*resp.WalletTransactionResponse, error) {
	if signedAmountMinor == 0 {
		return nil, utils.ErrInvalidAmount
	}
	if err := s.ensureAccount(ctx, accountID); err != nil {
		return nil, err
	}

	ref := WalletRef{Type: "admin", ID: adminID.String(), Description: note}
	if signedAmountMinor > 0 {
		return s.Credit(ctx, accountID, signedAmountMinor, db_models.ReasonAdjustment, ref)
	}
	return s.Debit(ctx, accountID, -signedAmountMinor, db_models.ReasonAdjustment, ref)
}

func (s *WalletService) apply(ctx context.Context, accountID uuid.UUID, kind db_models.WalletTxnKind, amountMinor int64, reason db_models.WalletTxnReason, ref WalletRef) (*resp.WalletTransactionResponse, error) {
	if amountMinor <= 0 {
		return nil, utils.ErrInvalidAmount
	}

	txn, err := s.walletRepo.Apply(ctx, repositories.WalletEntry{
		AccountID:   accountID,
		Currency:    s.currency,
		Kind:        kind,
		Reason:      reason,
		AmountMinor: amountMinor,
		RefType:     ref.Type,
		RefID:       ref.ID,
		Description: ref.Description,
		OncePerRef:  ref.OncePerRef,
	})
	if errors.Is(err, repositories.ErrInsufficientFunds) {
		return nil, utils.ErrInsufficientBalance
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"kind":       kind,
			"amount":     amountMinor,
		}).WithError(err).Error("wallet entry failed")
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id":    accountID,
		"kind":          kind,
		"reason":        reason,
		"amount":        amountMinor,
		"balance_after": txn.BalanceAfter,
	}).Info("wallet entry applied")
	return toWalletTxnResponse(txn), nil
}

func (s *WalletService) ensureAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}
	return nil
}

func toWalletResponse(w *db_models.Wallet) *resp.WalletResponse {
	return &resp.WalletResponse{
		AccountID:    w.AccountID,
		BalanceMinor: w.BalanceMinor,
		Currency:     w.Currency,
	}
}

func toWalletTxnResponse(t *db_models.WalletTransaction) *resp.WalletTransactionResponse {
	return &resp.WalletTransactionResponse{
		ID:           t.ID,
		Kind:         string(t.Kind),
		Reason:       string(t.Reason),
		AmountMinor:  t.AmountMinor,
		BalanceAfter: t.BalanceAfter,
		RefType:      t.RefType,
		RefID:        t.RefID,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}
