package customer

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LabelHome  = "Home"
	LabelWork  = "Work"
	LabelOther = "Other"
)

// Profile is the contact data of a customer account. UserID is the identity
// user id.
type Profile struct {
	UserID    uuid.UUID `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"not null"   json:"email"`
	Name      string    `gorm:"not null"   json:"name"`
	Phone     string    `json:"phone"`
	Addresses []Address `gorm:"-"          json:"savedAddresses"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Profile) TableName() string { return "customer_profiles" }

type Address struct {
	ID        uuid.UUID `gorm:"primaryKey"     json:"id"`
	UserID    uuid.UUID `gorm:"index;not null" json:"-"`
	Label     string    `gorm:"not null"       json:"label"`
	Street    string    `gorm:"not null"       json:"street"`
	Apartment string    `json:"apartment,omitempty"`
	City      string    `gorm:"not null"       json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `gorm:"not null"       json:"zipCode"`
	Landmark  string    `json:"landmark,omitempty"`
	IsDefault bool      `gorm:"not null"       json:"isDefault"`
	CreatedAt time.Time `gorm:"index"          json:"createdAt"`
}

func (Address) TableName() string { return "customer_addresses" }

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func Models() []any {
	return []any{&Profile{}, &Address{}}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type ProfilePatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type AddressInput struct {
	Label     string `json:"label"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Landmark  string `json:"landmark"`
	IsDefault bool   `json:"isDefault"`
}

type AddressPatch struct {
	Label     *string `json:"label"`
	Street    *string `json:"street"`
	Apartment *string `json:"apartment"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
	Landmark  *string `json:"landmark"`
	IsDefault *bool   `json:"isDefault"`
}

// Contact is what checkout needs to know about a signed-in customer.
type Contact struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address,omitempty"`
}
