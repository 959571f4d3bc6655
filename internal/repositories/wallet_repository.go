package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type WalletEntry struct {
	AccountID   uuid.UUID
	Currency    string
	Kind        db_models.WalletTxnKind
	Reason      db_models.WalletTxnReason
	AmountMinor int64
	RefType     string
	RefID       string
	Description string
	// OncePerRef makes the entry idempotent: when the wallet already has a
	// line of the same kind for RefType/RefID, that line is returned and the
	// balance is left alone.
	OncePerRef bool
}

type WalletRepository interface {
	GetOrCreate(ctx context.Context, accountID uuid.UUID, currency string) (*db_models.Wallet, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Wallet, error)
	Apply(ctx context.Context, entry WalletEntry) (*db_models.WalletTransaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]db_models.WalletTransaction, int64, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetOrCreate(ctx context.Context, accountID uuid.UUID, currency string) (*db_models.Wallet, error) {
	return getOrCreateWallet(r.db.WithContext(ctx), accountID, currency)
}

func (r *walletRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Wallet, error) {
	var wallet db_models.Wallet
	err := r.db.WithContext(ctx).First(&wallet, "account_id = ?", accountID).Error
	return notFoundAsNil(&wallet, err)
}

func (r *walletRepository) Apply(ctx context.Context, entry WalletEntry) (*db_models.WalletTransaction, error) {
	var txn *db_models.WalletTransaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = applyWalletEntry(tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *walletRepository) ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]db_models.WalletTransaction, int64, error) {
	wallet, err := r.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	if wallet == nil {
		return []db_models.WalletTransaction{}, 0, nil
	}

	q := r.db.WithContext(ctx).Model(&db_models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []db_models.WalletTransaction
	if err := q.Scopes(paginate(page, pageSize)).Order("created_at DESC").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func getOrCreateWallet(db *gorm.DB, accountID uuid.UUID, currency string) (*db_models.Wallet, error) {
	var wallet db_models.Wallet
	err := db.Where(db_models.Wallet{AccountID: accountID}).
		Attrs(db_models.Wallet{Currency: currency}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// applyWalletEntry must run inside a transaction. Debits use a conditional
// update so the balance never goes negative even under concurrent debits.
func applyWalletEntry(tx *gorm.DB, entry WalletEntry) (*db_models.WalletTransaction, error) {
	wallet, err := getOrCreateWallet(tx, entry.AccountID, entry.Currency)
	if err != nil {
		return nil, err
	}

	if entry.OncePerRef {
		if entry.RefType == "" || entry.RefID == "" {
			return nil, errors.New("idempotent wallet entry needs a reference")
		}
		var prior db_models.WalletTransaction
		err := tx.Where("wallet_id = ? AND kind = ? AND ref_type = ? AND ref_id = ?",
			wallet.ID, entry.Kind, entry.RefType, entry.RefID).
			Take(&prior).Error
		if err == nil {
			return &prior, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var res *gorm.DB
	switch entry.Kind {
	case db_models.WalletCredit:
		res = tx.Model(&db_models.Wallet{}).
			Where("id = ?", wallet.ID).
			Update("balance_minor", gorm.Expr("balance_minor + ?", entry.AmountMinor))
	case db_models.WalletDebit:
		res = tx.Model(&db_models.Wallet{}).
			Where("id = ? AND balance_minor >= ?", wallet.ID, entry.AmountMinor).
			Update("balance_minor", gorm.Expr("balance_minor - ?", entry.AmountMinor))
	default:
		return nil, errors.New("unknown wallet entry kind")
	}
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientFunds
	}

	var fresh db_models.Wallet
	if err := tx.First(&fresh, "id = ?", wallet.ID).Error; err != nil {
		return nil, err
	}

	txn := &db_models.WalletTransaction{
		WalletID:     wallet.ID,
		Kind:         entry.Kind,
		Reason:       entry.Reason,
		AmountMinor:  entry.AmountMinor,
		BalanceAfter: fresh.BalanceMinor,
		RefType:      entry.RefType,
		RefID:        entry.RefID,
		Description:  entry.Description,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}
