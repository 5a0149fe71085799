package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/orderdirect/internal/events"
	"github.com/Skotchmaster/orderdirect/internal/logging"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("category name already used")
)

type Service struct {
	Repo      *GormRepo
	Publisher events.Publisher
}

func NewService(db *gorm.DB, pub events.Publisher) *Service {
	return &Service{Repo: &GormRepo{DB: db}, Publisher: pub}
}

// ListAvailable is the customer-facing menu.
func (s *Service) ListAvailable(ctx context.Context, tenantID uuid.UUID) ([]MenuItem, error) {
	return s.Repo.ListItems(ctx, tenantID, true)
}

func (s *Service) ListItems(ctx context.Context, tenantID uuid.UUID) ([]MenuItem, error) {
	return s.Repo.ListItems(ctx, tenantID, false)
}

func (s *Service) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*MenuItem, error) {
	return s.Repo.GetItem(ctx, tenantID, id)
}

func validatePrice(p float64) error {
	if !(p > 0) {
		return fmt.Errorf("price must be greater than zero: %w", ErrValidation)
	}
	return nil
}

func (s *Service) CreateItem(ctx context.Context, tenantID uuid.UUID, in ItemInput) (*MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	item := MenuItem{
		TenantID:    tenantID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Available:   in.Available == nil || *in.Available,
	}
	if err := s.Repo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).With("svc", "menu").Info("menu_item_created", "tenant_id", tenantID.String(), "item_id", item.ID.String())
	return &item, nil
}

func (s *Service) UpdateItem(ctx context.Context, tenantID, id uuid.UUID, patch ItemPatch) (*MenuItem, error) {
	item, err := s.Repo.GetItem(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("name is required: %w", ErrValidation)
		}
		item.Name = name
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		item.Price = *patch.Price
	}
	if patch.Description != nil {
		item.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		item.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.Repo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) SetAvailability(ctx context.Context, tenantID, id uuid.UUID, available bool) (*MenuItem, error) {
	return s.UpdateItem(ctx, tenantID, id, ItemPatch{Available: &available})
}

func (s *Service) DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.Repo.DeleteItem(ctx, tenantID, id)
}

func (s *Service) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]Category, error) {
	return s.Repo.ListCategories(ctx, tenantID)
}

func (s *Service) CreateCategory(ctx context.Context, tenantID uuid.UUID, in CategoryInput) (*Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", ErrValidation)
	}

	c := Category{
		TenantID:     tenantID,
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCategory edits a category. A name change cascades to every item
// filed under the old name; the number of rewritten items is returned.
// Re-running a rename that already happened rewrites nothing.
func (s *Service) UpdateCategory(ctx context.Context, tenantID, id uuid.UUID, patch CategoryPatch) (*Category, int64, error) {
	l := logging.FromContext(ctx).With("svc", "menu.update_category", "tenant_id", tenantID.String(), "category_id", id.String())

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, 0, fmt.Errorf("category name is required: %w", ErrValidation)
		}
		patch.Name = &name
	}

	before, err := s.Repo.GetCategory(ctx, tenantID, id)
	if err != nil {
		return nil, 0, err
	}

	c, rewritten, err := s.Repo.UpdateCategory(ctx, tenantID, id, patch)
	if err != nil {
		l.Warn("category_update_failed", "error", err)
		return nil, 0, err
	}

	if before.Name != c.Name {
		l.Info("category_renamed", "from", before.Name, "to", c.Name, "items_rewritten", rewritten)
		events.Emit(ctx, s.Publisher, events.TopicMenu, events.Event{
			Type:     "category_renamed",
			TenantID: tenantID.String(),
			EntityID: c.ID.String(),
			Payload: map[string]any{
				"from":           before.Name,
				"to":             c.Name,
				"itemsRewritten": rewritten,
			},
		})
	}
	return c, rewritten, nil
}

func (s *Service) RenameCategory(ctx context.Context, tenantID, id uuid.UUID, newName string) (int64, error) {
	_, n, err := s.UpdateCategory(ctx, tenantID, id, CategoryPatch{Name: &newName})
	return n, err
}

func (s *Service) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.Repo.DeleteCategory(ctx, tenantID, id)
}
