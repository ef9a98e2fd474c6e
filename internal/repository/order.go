package repository

import (
	"context"
	"errors"
	"time"

	"promptpay-checkout/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when no order matches the given key.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the keyed order store. At most one order exists per
// payment charge id (unique index), so charge-id lookups never fan out.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (string, error)
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByChargeID(ctx context.Context, chargeID string) (*model.Order, error)
	// UpdateStatusIfPending applies a terminal transition guarded by
	// "status is still pending". Returns false when the guard did not
	// match, i.e. a concurrent reconciliation won the race.
	UpdateStatusIfPending(ctx context.Context, orderID string, status model.OrderStatus, details datatypes.JSON) (bool, error)
	// UpdateDetails refreshes the payment snapshot without touching
	// status, used for idempotent re-delivery of the same outcome.
	UpdateDetails(ctx context.Context, orderID string, details datatypes.JSON) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) (string, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return "", err
	}

	return order.ID, nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByChargeID(ctx context.Context, chargeID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("payment_charge_id = ?", chargeID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) UpdateStatusIfPending(ctx context.Context, orderID string, status model.OrderStatus, details datatypes.JSON) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":          status,
			"payment_details": details,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) UpdateDetails(ctx context.Context, orderID string, details datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_details": details,
			"updated_at":      time.Now(),
		}).Error
}
