package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

var (
	ErrCommissionExists    = errors.New("commission already recorded")
	ErrDuplicateGatewayRef = errors.New("gateway reference already recorded")
)

type CommissionFilter struct {
	BeneficiaryID *uuid.UUID
	Start, End    time.Time
}

type CommissionRepository interface {
	// CreateWithCredit inserts the commission and credits the beneficiary's
	// wallet in one transaction. Returns ErrCommissionExists for replays.
	CreateWithCredit(ctx context.Context, commission *db_models.Commission) error
	List(ctx context.Context, filter CommissionFilter, page, pageSize int) ([]db_models.Commission, int64, error)
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) CreateWithCredit(ctx context.Context, commission *db_models.Commission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(commission).Error; err != nil {
			if IsDuplicateKey(err) {
				return ErrCommissionExists
			}
			return err
		}

		_, err := applyWalletEntry(tx, WalletEntry{
			AccountID:   commission.BeneficiaryID,
			Currency:    commission.Currency,
			Kind:        db_models.WalletCredit,
			Reason:      db_models.ReasonCommission,
			AmountMinor: commission.AmountMinor,
			RefType:     "commission",
			RefID:       commission.ID.String(),
			Description: string(commission.Source) + " " + commission.RefID,
		})
		return err
	})
}

func (r *commissionRepository) List(ctx context.Context, filter CommissionFilter, page, pageSize int) ([]db_models.Commission, int64, error) {
	q := r.db.WithContext(ctx).Model(&db_models.Commission{})
	if filter.BeneficiaryID != nil {
		q = q.Where("beneficiary_id = ?", *filter.BeneficiaryID)
	}
	if !filter.Start.IsZero() {
		q = q.Where("created_at >= ?", filter.Start.Unix())
	}
	if !filter.End.IsZero() {
		q = q.Where("created_at <= ?", filter.End.Unix())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []db_models.Commission
	if err := q.Scopes(paginate(page, pageSize)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
