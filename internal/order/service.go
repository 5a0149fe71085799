package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/orderdirect/internal/cart"
	"github.com/Skotchmaster/orderdirect/internal/events"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/pricing"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

var emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)

// CheckTransition allows open to closed and any status to itself. Nothing
// leaves closed.
func CheckTransition(from, to string) error {
	if to != StatusOpen && to != StatusClosed {
		return fmt.Errorf("unknown status %q: %w", to, ErrValidation)
	}
	if from == to || (from == StatusOpen && to == StatusClosed) {
		return nil
	}
	return fmt.Errorf("%s to %s: %w", from, to, ErrInvalidTransition)
}

type Service struct {
	Repo      *GormRepo
	Publisher events.Publisher
	Notifier  Notifier
	Calc      pricing.Calculator
}

func NewService(db *gorm.DB, pub events.Publisher, n Notifier, calc pricing.Calculator) *Service {
	return &Service{Repo: &GormRepo{DB: db}, Publisher: pub, Notifier: n, Calc: calc}
}

func (c Customer) normalized() Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Customer) validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("customer name is required: %w", ErrValidation)
	case !emailRe.MatchString(c.Email):
		return fmt.Errorf("invalid customer email: %w", ErrValidation)
	case c.Phone == "":
		return fmt.Errorf("customer phone is required: %w", ErrValidation)
	}
	return nil
}

// Checkout places an order for a bound cart. The stored total is the cart's
// derived total at this moment. Clearing the cart is the caller's job.
func (s *Service) Checkout(ctx context.Context, c cart.Cart, cust Customer) (*Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout")

	if !c.Bound() {
		return nil, fmt.Errorf("cart is empty: %w", ErrValidation)
	}
	tenantID, err := uuid.Parse(c.TenantID())
	if err != nil {
		return nil, fmt.Errorf("cart restaurant id: %w", ErrValidation)
	}
	cust = cust.normalized()
	if err := cust.validate(); err != nil {
		return nil, err
	}

	lines := c.Items()
	items := make([]OrderItem, 0, len(lines))
	for _, li := range lines {
		unit := li.MenuItem.Price
		for _, a := range li.AddOns {
			unit += a.Price
		}
		items = append(items, OrderItem{
			MenuItemID:          li.MenuItem.ID,
			Name:                li.MenuItem.Name,
			Quantity:            li.Quantity,
			Price:               pricing.Round2(unit),
			SpecialInstructions: li.SpecialInstructions,
		})
	}

	o := Order{
		TenantID:      tenantID,
		Status:        StatusOpen,
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		CustomerPhone: cust.Phone,
		Items:         items,
		Total:         c.Totals(s.Calc).Total,
	}
	if err := s.Repo.Create(ctx, &o); err != nil {
		l.Error("checkout_failed", "status", 500, "tenant_id", tenantID.String(), "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Publisher, events.TopicOrders, events.Event{
		Type:     "order_created",
		TenantID: o.TenantID.String(),
		EntityID: o.ID.String(),
		Payload:  map[string]any{"total": o.Total, "items": len(o.Items)},
	})
	l.Info("checkout_ok", "order_id", o.ID.String(), "tenant_id", o.TenantID.String(), "total", o.Total)
	return &o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.Repo.Get(ctx, id)
}

// GetForTenant hides orders of other tenants behind ErrNotFound.
func (s *Service) GetForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error) {
	o, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) (int64, []Order, error) {
	return s.Repo.ListByTenant(ctx, tenantID, offset, limit)
}

func (s *Service) Close(ctx context.Context, tenantID, id uuid.UUID) (*Order, error) {
	return s.SetStatus(ctx, tenantID, id, StatusClosed)
}

func (s *Service) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.set_status", "order_id", id.String())

	o, changed, err := s.Repo.SetStatus(ctx, tenantID, id, status)
	if err != nil {
		l.Warn("set_status_failed", "to", status, "error", err)
		return nil, err
	}
	if !changed {
		return o, nil
	}

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, *o); err != nil {
			l.Warn("order_notify_failed", "error", err)
		}
	}
	events.Emit(ctx, s.Publisher, events.TopicOrders, events.Event{
		Type:     "order_" + o.Status,
		TenantID: o.TenantID.String(),
		EntityID: o.ID.String(),
	})
	l.Info("order_status_changed", "status", o.Status)
	return o, nil
}
