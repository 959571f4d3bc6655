package repositories

import (
	"context"

	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *db_models.Payment) error
	FindByGatewayRef(ctx context.Context, gateway, ref string) (*db_models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *db_models.Payment) error {
	err := r.db.WithContext(ctx).Omit("Account", "Subscription").Create(payment).Error
	if IsDuplicateKey(err) {
		return ErrDuplicateGatewayRef
	}
	return err
}

func (r *paymentRepository) FindByGatewayRef(ctx context.Context, gateway, ref string) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_ref = ?", gateway, ref).
		First(&payment).Error
	return notFoundAsNil(&payment, err)
}
