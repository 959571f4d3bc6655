package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

type AccountRepository interface {
	Insert(ctx context.Context, account *db_models.Account) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
	FindByReferralCode(ctx context.Context, code string) (*db_models.Account, error)
	List(ctx context.Context, page, pageSize int, search string) ([]db_models.Account, int64, error)

	UpdatePhase(ctx context.Context, id uuid.UUID, level int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status db_models.AccountStatus) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	// Referral tree
	CountDirectReferrals(ctx context.Context, id uuid.UUID) (int64, error)
	ListReferralIDs(ctx context.Context, sponsorIDs []uuid.UUID) ([]uuid.UUID, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) Insert(ctx context.Context, account *db_models.Account) error {
	return a.db.WithContext(ctx).Create(account).Error
}

func (a *accountRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "id = ?", id).Error
	return notFoundAsNil(&account, err)
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "email = ?", strings.ToLower(email)).Error
	return notFoundAsNil(&account, err)
}

func (a *accountRepository) FindByReferralCode(ctx context.Context, code string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "referral_code = ?", strings.ToUpper(code)).Error
	return notFoundAsNil(&account, err)
}

func (a *accountRepository) List(ctx context.Context, page, pageSize int, search string) ([]db_models.Account, int64, error) {
	q := a.db.WithContext(ctx).Model(&db_models.Account{})
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []db_models.Account
	err := q.Scopes(paginate(page, pageSize)).Order("created_at DESC").Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (a *accountRepository) UpdatePhase(ctx context.Context, id uuid.UUID, level int) error {
	res := a.db.WithContext(ctx).Model(&db_models.Account{}).Where("id = ?", id).Update("phase_level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *accountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status db_models.AccountStatus) error {
	res := a.db.WithContext(ctx).Model(&db_models.Account{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *accountRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res := a.db.WithContext(ctx).Model(&db_models.Account{}).
		Where("email = ?", strings.ToLower(email)).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *accountRepository) CountDirectReferrals(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&db_models.Account{}).Where("sponsor_id = ?", id).Count(&n).Error
	return n, err
}

func (a *accountRepository) ListReferralIDs(ctx context.Context, sponsorIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(sponsorIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := a.db.WithContext(ctx).Model(&db_models.Account{}).
		Where("sponsor_id IN ?", sponsorIDs).
		Pluck("id", &ids).Error
	return ids, err
}
