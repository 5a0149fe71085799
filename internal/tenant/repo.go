package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) db(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

func (r *GormRepo) FindBySlug(ctx context.Context, slug string) ([]Tenant, error) {
	var out []Tenant
	if err := r.DB.WithContext(ctx).
		Where("subdomain = ?", slug).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id string) (*Tenant, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var t Tenant
	if err := r.DB.WithContext(ctx).Where("id = ?", uid).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *GormRepo) SubdomainTaken(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	var count int64
	if err := r.db(ctx, tx).Model(&Tenant{}).Where("subdomain = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) Create(ctx context.Context, tx *gorm.DB, t *Tenant) error {
	if err := r.db(ctx, tx).Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}
