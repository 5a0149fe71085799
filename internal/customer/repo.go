package customer

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

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *GormRepo) db(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

func (r *GormRepo) CreateProfile(ctx context.Context, tx *gorm.DB, p *Profile) error {
	return r.db(ctx, tx).Create(p).Error
}

func (r *GormRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormRepo) SaveProfile(ctx context.Context, p *Profile) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

// ListAddresses returns the default address first, then the rest oldest first.
func (r *GormRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	addrs := make([]Address, 0)
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

func (r *GormRepo) DefaultAddress(ctx context.Context, userID uuid.UUID) (*Address, error) {
	var a Address
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func clearDefault(tx *gorm.DB, userID, except uuid.UUID) error {
	q := tx.Model(&Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	return q.Update("is_default", false).Error
}

// AddAddress stores a. The first address of a user becomes the default, and
// a new default unsets the previous one in the same transaction.
func (r *GormRepo) AddAddress(ctx context.Context, a *Address) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Address{}).Where("user_id = ?", a.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := clearDefault(tx, a.UserID, uuid.Nil); err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	})
}

func (r *GormRepo) UpdateAddress(ctx context.Context, userID, id uuid.UUID, apply func(*Address) error) (*Address, error) {
	var a Address
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND id = ?", userID, id).
			First(&a).Error; err != nil {
			return notFound(err)
		}

		wasDefault := a.IsDefault
		if err := apply(&a); err != nil {
			return err
		}
		if a.IsDefault && !wasDefault {
			if err := clearDefault(tx, userID, a.ID); err != nil {
				return err
			}
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAddress removes the address. Deleting the default promotes the oldest
// remaining address.
func (r *GormRepo) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Address
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&a).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&a).Error; err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}

		var next Address
		err := tx.Where("user_id = ?", userID).Order("created_at ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}
