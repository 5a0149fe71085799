package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/orderdirect/internal/events"
	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/logging"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("tenant not found")
	ErrConflict   = errors.New("conflict")
)

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

var emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)

type SignupRequest struct {
	RestaurantName string `json:"restaurantName"`
	OwnerName      string `json:"ownerName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Subdomain      string `json:"subdomain"`
	Password       string `json:"password"`
}

func (r SignupRequest) normalized() SignupRequest {
	r.RestaurantName = strings.TrimSpace(r.RestaurantName)
	r.OwnerName = strings.TrimSpace(r.OwnerName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Subdomain = NormalizeSlug(r.Subdomain)
	return r
}

func (r SignupRequest) validate(reserved []string) error {
	switch {
	case r.RestaurantName == "":
		return fmt.Errorf("restaurant name is required: %w", ErrValidation)
	case r.OwnerName == "":
		return fmt.Errorf("owner name is required: %w", ErrValidation)
	case !emailRe.MatchString(r.Email):
		return fmt.Errorf("invalid email address: %w", ErrValidation)
	case r.Phone == "":
		return fmt.Errorf("phone is required: %w", ErrValidation)
	case len(r.Password) < 8:
		return fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}
	return ValidateSlug(r.Subdomain, reserved)
}

type Service struct {
	Repo      *GormRepo
	Identity  *identity.Provider
	Publisher events.Publisher
	Reserved  []string
}

func NewService(db *gorm.DB, idp *identity.Provider, pub events.Publisher, reserved []string) *Service {
	return &Service{
		Repo:      &GormRepo{DB: db},
		Identity:  idp,
		Publisher: pub,
		Reserved:  reserved,
	}
}

// CheckSubdomainAvailability is false for a malformed or reserved slug and for
// one another tenant already holds.
func (s *Service) CheckSubdomainAvailability(ctx context.Context, slug string) (bool, error) {
	slug = NormalizeSlug(slug)
	if err := ValidateSlug(slug, s.Reserved); err != nil {
		return false, nil
	}
	taken, err := s.Repo.SubdomainTaken(ctx, nil, slug)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// Signup creates the tenant with its owner user and profile in one
// transaction. The tenant id is the owner's user id.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Tenant, error) {
	req = req.normalized()
	l := logging.FromContext(ctx).With("svc", "tenant.signup", "subdomain", req.Subdomain)

	if err := req.validate(s.Reserved); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid request", "error", err)
		return nil, err
	}

	id := uuid.New()
	t := Tenant{
		ID:                 id,
		Name:               req.RestaurantName,
		Subdomain:          req.Subdomain,
		OwnerName:          req.OwnerName,
		OwnerEmail:         req.Email,
		OwnerPhone:         req.Phone,
		SubscriptionStatus: SubscriptionTrial,
		SubscriptionPlan:   PlanStandard,
	}

	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.Repo.SubdomainTaken(ctx, tx, req.Subdomain)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("subdomain %q is already taken: %w", req.Subdomain, ErrConflict)
		}

		if err := s.Identity.SignUp(ctx, tx, identity.OwnerSignup{
			UserID:   id,
			TenantID: id,
			Email:    req.Email,
			Password: req.Password,
			Name:     req.OwnerName,
		}); err != nil {
			if errors.Is(err, identity.ErrConflict) {
				return fmt.Errorf("%w: %w", ErrConflict, err)
			}
			return err
		}

		return s.Repo.Create(ctx, tx, &t)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			l.Warn("signup_error", "status", 409, "reason", "conflict", "error", err)
		} else {
			l.Error("signup_error", "status", 500, "error", err)
		}
		return nil, err
	}

	events.Emit(ctx, s.Publisher, events.TopicRestaurants, events.Event{
		Type:     "restaurant_signed_up",
		TenantID: t.ID.String(),
		EntityID: t.ID.String(),
		Payload:  t.Public(),
	})
	l.Info("signup_ok", "tenant_id", t.ID.String())
	return &t, nil
}
