package menu

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/orderdirect/internal/cart"
)

type MenuItem struct {
	ID          uuid.UUID `gorm:"primaryKey"     json:"id"`
	TenantID    uuid.UUID `gorm:"index;not null" json:"restaurantId"`
	Name        string    `gorm:"not null"       json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"       json:"price"`
	Category    string    `gorm:"index"          json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Available   bool      `gorm:"not null"       json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CartItem is the snapshot of the item a cart line holds.
func (m MenuItem) CartItem() cart.MenuItem {
	return cart.MenuItem{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		ImageURL:    m.ImageURL,
		Available:   m.Available,
	}
}

type Category struct {
	ID           uuid.UUID `gorm:"primaryKey"     json:"id"`
	TenantID     uuid.UUID `gorm:"index;not null" json:"restaurantId"`
	Name         string    `gorm:"not null"       json:"name"`
	Description  string    `json:"description,omitempty"`
	DisplayOrder int       `gorm:"not null"       json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func Models() []any {
	return []any{&MenuItem{}, &Category{}}
}

type ItemInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	Available   *bool   `json:"available"`
}

type ItemPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	Available   *bool    `json:"available"`
}

type CategoryInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"displayOrder"`
}

type CategoryPatch struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"displayOrder"`
}
