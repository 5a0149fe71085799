package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

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

func (r *GormRepo) EmailTaken(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := r.db(ctx, tx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, tx *gorm.DB, u *User) error {
	return r.db(ctx, tx).Create(u).Error
}

func (r *GormRepo) CreateProfile(ctx context.Context, tx *gorm.DB, p *Profile) error {
	return r.db(ctx, tx).Create(p).Error
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ProfileByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) AddRefresh(ctx context.Context, token *RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

func refreshUsable(tx *gorm.DB, jti string) error {
	var refresh RefreshToken
	if err := tx.Where("jti = ?", jti).First(&refresh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("refresh token not found: %w", ErrUnauthorized)
		}
		return err
	}
	if refresh.Revoked || refresh.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthorized)
	}
	return nil
}

// RotateRefresh revokes oldJTI and stores next in one transaction. A revoked,
// expired or unknown oldJTI fails with ErrUnauthorized.
func (r *GormRepo) RotateRefresh(ctx context.Context, oldJTI string, next *RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refreshUsable(tx, oldJTI); err != nil {
			return err
		}
		if err := tx.Model(&RefreshToken{}).Where("jti = ?", oldJTI).Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefresh(ctx context.Context, rawToken string) error {
	return r.DB.WithContext(ctx).Model(&RefreshToken{}).
		Where("token = ?", Sha256Hex(rawToken)).
		Update("revoked", true).Error
}
