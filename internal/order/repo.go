package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Create(ctx context.Context, o *Order) error {
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *GormRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) (int64, []Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&Order{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]Order, 0, limit)
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// SetStatus moves an order to status if the transition is allowed. changed is
// false when the order already had that status.
func (r *GormRepo) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (o *Order, changed bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := CheckTransition(cur.Status, status); err != nil {
			return err
		}
		if cur.Status == status {
			return nil
		}

		if err := tx.Model(&cur).Update("status", status).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	o, err = r.Get(ctx, id)
	return o, changed, err
}
