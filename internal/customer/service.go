package customer

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
	ErrNotFound   = errors.New("not found")
)

var emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)

type Service struct {
	Repo      *GormRepo
	Identity  *identity.Provider
	Publisher events.Publisher
}

func NewService(db *gorm.DB, idp *identity.Provider, pub events.Publisher) *Service {
	return &Service{Repo: &GormRepo{DB: db}, Identity: idp, Publisher: pub}
}

func (r SignupRequest) normalized() SignupRequest {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

func (r SignupRequest) validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("name is required: %w", ErrValidation)
	case !emailRe.MatchString(r.Email):
		return fmt.Errorf("invalid email address: %w", ErrValidation)
	case len(r.Password) < 8:
		return fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}
	return nil
}

// Signup creates the customer user and its profile in one transaction. The
// caller signs the customer in afterwards.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Profile, error) {
	req = req.normalized()
	l := logging.FromContext(ctx).With("svc", "customer.signup")

	if err := req.validate(); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid request", "error", err)
		return nil, err
	}

	p := Profile{UserID: uuid.New(), Email: req.Email, Name: req.Name, Phone: req.Phone}
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Identity.SignUpCustomer(ctx, tx, identity.CustomerSignup{
			UserID:   p.UserID,
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		}); err != nil {
			return err
		}
		return s.Repo.CreateProfile(ctx, tx, &p)
	})
	if err != nil {
		return nil, err
	}

	p.Addresses = []Address{}
	events.Emit(ctx, s.Publisher, events.TopicCustomers, events.Event{
		Type:     "customer_signed_up",
		EntityID: p.UserID.String(),
	})
	l.Info("signup_ok", "user_id", p.UserID.String())
	return &p, nil
}

// GetProfile returns the profile with its saved addresses.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Addresses, err = s.Repo.ListAddresses(ctx, userID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*Profile, error) {
	p, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("name is required: %w", ErrValidation)
		}
		p.Name = name
	}
	if patch.Phone != nil {
		p.Phone = strings.TrimSpace(*patch.Phone)
	}

	if err := s.Repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	if p.Addresses, err = s.Repo.ListAddresses(ctx, userID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	if _, err := s.Repo.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListAddresses(ctx, userID)
}

func normalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "home":
		return LabelHome
	case "work":
		return LabelWork
	}
	return LabelOther
}

func validateAddress(a *Address) error {
	switch {
	case a.Street == "":
		return fmt.Errorf("street is required: %w", ErrValidation)
	case a.City == "":
		return fmt.Errorf("city is required: %w", ErrValidation)
	case a.ZipCode == "":
		return fmt.Errorf("zip code is required: %w", ErrValidation)
	}
	return nil
}

func (s *Service) AddAddress(ctx context.Context, userID uuid.UUID, in AddressInput) (*Address, error) {
	if _, err := s.Repo.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	a := Address{
		UserID:    userID,
		Label:     normalizeLabel(in.Label),
		Street:    strings.TrimSpace(in.Street),
		Apartment: strings.TrimSpace(in.Apartment),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		ZipCode:   strings.TrimSpace(in.ZipCode),
		Landmark:  strings.TrimSpace(in.Landmark),
		IsDefault: in.IsDefault,
	}
	if err := validateAddress(&a); err != nil {
		return nil, err
	}
	if err := s.Repo.AddAddress(ctx, &a); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).With("svc", "customer").Info("address_added", "user_id", userID.String(), "address_id", a.ID.String())
	return &a, nil
}

func trimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// UpdateAddress applies patch. Setting isDefault unsets the previous default.
func (s *Service) UpdateAddress(ctx context.Context, userID, id uuid.UUID, patch AddressPatch) (*Address, error) {
	return s.Repo.UpdateAddress(ctx, userID, id, func(a *Address) error {
		if patch.Label != nil {
			a.Label = normalizeLabel(*patch.Label)
		}
		trimmed(&a.Street, patch.Street)
		trimmed(&a.Apartment, patch.Apartment)
		trimmed(&a.City, patch.City)
		trimmed(&a.State, patch.State)
		trimmed(&a.ZipCode, patch.ZipCode)
		trimmed(&a.Landmark, patch.Landmark)
		if patch.IsDefault != nil {
			a.IsDefault = *patch.IsDefault
		}
		return validateAddress(a)
	})
}

func (s *Service) SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	yes := true
	return s.UpdateAddress(ctx, userID, id, AddressPatch{IsDefault: &yes})
}

func (s *Service) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Repo.DeleteAddress(ctx, userID, id); err != nil {
		return err
	}
	logging.FromContext(ctx).With("svc", "customer").Info("address_deleted", "user_id", userID.String(), "address_id", id.String())
	return nil
}

// Contact returns the checkout details of a customer: profile contact data and
// the default address, if one is saved.
func (s *Service) Contact(ctx context.Context, userID uuid.UUID) (*Contact, error) {
	p, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := &Contact{Name: p.Name, Email: p.Email, Phone: p.Phone}

	a, err := s.Repo.DefaultAddress(ctx, userID)
	switch {
	case err == nil:
		c.Address = a
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return c, nil
}
