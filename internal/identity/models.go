package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleOwner    = "owner"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

type User struct {
	ID           uuid.UUID `gorm:"primaryKey"           json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"             json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile ties a user to exactly one tenant. Customer profiles carry the nil
// tenant id.
type Profile struct {
	UserID    uuid.UUID `gorm:"primaryKey"     json:"user_id"`
	TenantID  uuid.UUID `gorm:"index;not null" json:"tenant_id"`
	Role      string    `gorm:"not null"       json:"role"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uuid.UUID `gorm:"index;not null"       json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	ExpiresAt int64     `gorm:"not null"             json:"expires_at"`
	Revoked   bool      `gorm:"default:false"        json:"revoked"`
}

// Models lists every table owned by this package, for migrations.
func Models() []any {
	return []any{&User{}, &Profile{}, &RefreshToken{}}
}
