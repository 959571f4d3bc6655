package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *db_models.Subscription) error
	Save(ctx context.Context, sub *db_models.Subscription) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Subscription, error)
	// FindCurrent returns the member's newest subscription in a live status.
	FindCurrent(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error)
	// ListDue returns auto-renewing live subscriptions whose period ended at or before now.
	ListDue(ctx context.Context, now int64) ([]db_models.Subscription, error)
	// ListPastDueSince returns past-due subscriptions that became past due at or before cutoff.
	ListPastDueSince(ctx context.Context, cutoff int64) ([]db_models.Subscription, error)
	// ListLapsed returns live subscriptions that will not renew and whose period is over.
	ListLapsed(ctx context.Context, now int64) ([]db_models.Subscription, error)
	List(ctx context.Context, status string, page, pageSize int) ([]db_models.Subscription, int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Omit("Account", "Plan").Create(sub).Error
}

func (r *subscriptionRepository) Save(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Omit("Account", "Plan").Save(sub).Error
}

func (r *subscriptionRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").First(&sub, "id = ?", id).Error
	return notFoundAsNil(&sub, err)
}

func (r *subscriptionRepository) FindCurrent(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("account_id = ? AND status IN ?", accountID, db_models.LiveStatuses).
		Order("ends_at DESC").
		First(&sub).Error
	return notFoundAsNil(&sub, err)
}

func (r *subscriptionRepository) ListDue(ctx context.Context, now int64) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Preload("Account").
		Where("auto_renew = ? AND ends_at <= ?", true, now).
		Where("status IN ?", []db_models.SubscriptionStatus{db_models.SubStatusActive, db_models.SubStatusTrialing, db_models.SubStatusPastDue}).
		Order("ends_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) ListPastDueSince(ctx context.Context, cutoff int64) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Preload("Account").
		Where("status = ? AND past_due_at IS NOT NULL AND past_due_at <= ?", db_models.SubStatusPastDue, cutoff).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) ListLapsed(ctx context.Context, now int64) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("auto_renew = ? AND ends_at <= ?", false, now).
		Where("status IN ?", db_models.LiveStatuses).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) List(ctx context.Context, status string, page, pageSize int) ([]db_models.Subscription, int64, error) {
	q := r.db.WithContext(ctx).Model(&db_models.Subscription{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []db_models.Subscription
	if err := q.Preload("Plan").Scopes(paginate(page, pageSize)).Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}
