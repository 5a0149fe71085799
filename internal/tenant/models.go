package tenant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionTrial = "trial"
	PlanStandard      = "standard"
)

// Tenant is one restaurant account.
type Tenant struct {
	ID                 uuid.UUID `gorm:"primaryKey"                  json:"id"`
	Name               string    `gorm:"not null"                    json:"name"`
	Subdomain          string    `gorm:"uniqueIndex;not null"        json:"subdomain"`
	OwnerName          string    `gorm:"not null"                    json:"ownerName"`
	OwnerEmail         string    `gorm:"not null"                    json:"ownerEmail"`
	OwnerPhone         string    `gorm:"not null"                    json:"ownerPhone"`
	PaymentAccountID   *string   `json:"paymentAccountId"`
	SubscriptionStatus string    `gorm:"not null;default:'trial'"    json:"subscriptionStatus"`
	SubscriptionPlan   string    `gorm:"not null;default:'standard'" json:"subscriptionPlan"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Public is what customers see on a storefront.
type Public struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

func (t Tenant) Public() Public {
	return Public{ID: t.ID.String(), Name: t.Name, Subdomain: t.Subdomain}
}
