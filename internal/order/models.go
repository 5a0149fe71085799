package order

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type Order struct {
	ID            uuid.UUID   `gorm:"primaryKey"                                     json:"id"`
	TenantID      uuid.UUID   `gorm:"index;not null"                                 json:"restaurantId"`
	Status        string      `gorm:"not null"                                       json:"status"`
	CustomerName  string      `gorm:"not null"                                       json:"customerName"`
	CustomerEmail string      `gorm:"not null"                                       json:"customerEmail"`
	CustomerPhone string      `gorm:"not null"                                       json:"customerPhone"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total         float64     `gorm:"not null"                                       json:"total"`
	CreatedAt     time.Time   `gorm:"index"                                          json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is the line as it was in the cart at checkout. Price is per unit
// and includes selected add-ons.
type OrderItem struct {
	ID                  uint      `gorm:"primaryKey"                  json:"-"`
	OrderID             uuid.UUID `gorm:"index;not null"              json:"-"`
	MenuItemID          string    `gorm:"not null"                    json:"menuItemId"`
	Name                string    `gorm:"not null"                    json:"name"`
	Quantity            int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price               float64   `gorm:"not null"                    json:"price"`
	SpecialInstructions string    `json:"specialInstructions,omitempty"`
}

func Models() []any {
	return []any{&Order{}, &OrderItem{}}
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
