package menu

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

func (r *GormRepo) ListItems(ctx context.Context, tenantID uuid.UUID, onlyAvailable bool) ([]MenuItem, error) {
	q := r.DB.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	items := make([]MenuItem, 0)
	if err := q.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*MenuItem, error) {
	var item MenuItem
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *GormRepo) CreateItem(ctx context.Context, item *MenuItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) SaveItem(ctx context.Context, item *MenuItem) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

func (r *GormRepo) DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]Category, error) {
	cats := make([]Category, 0)
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("display_order ASC, name ASC").
		Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, tenantID, id uuid.UUID) (*Category, error) {
	var c Category
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func categoryNameTaken(tx *gorm.DB, tenantID uuid.UUID, name string, except uuid.UUID) (bool, error) {
	var count int64
	q := tx.Model(&Category{}).Where("tenant_id = ? AND name = ?", tenantID, name)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *Category) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := categoryNameTaken(tx, c.TenantID, c.Name, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}
		return tx.Create(c).Error
	})
}

// UpdateCategory applies patch and, when the name changes, rewrites every
// item filed under the old name in the same transaction. It returns the
// number of items rewritten.
func (r *GormRepo) UpdateCategory(ctx context.Context, tenantID, id uuid.UUID, patch CategoryPatch) (*Category, int64, error) {
	var (
		c         Category
		rewritten int64
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&c).Error; err != nil {
			return notFound(err)
		}

		oldName := c.Name
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.DisplayOrder != nil {
			c.DisplayOrder = *patch.DisplayOrder
		}

		if c.Name != oldName {
			taken, err := categoryNameTaken(tx, tenantID, c.Name, c.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrConflict
			}

			res := tx.Model(&MenuItem{}).
				Where("tenant_id = ? AND category = ?", tenantID, oldName).
				Update("category", c.Name)
			if res.Error != nil {
				return res.Error
			}
			rewritten = res.RowsAffected
		}

		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &c, rewritten, nil
}

func (r *GormRepo) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
