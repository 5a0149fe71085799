package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/orderdirect/internal/logging"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Principal is the identity the provider reports for a signed-in session.
type Principal struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
}

// SessionEvent reports a session change for one user. Principal is nil on
// sign-out.
type SessionEvent struct {
	UserID    string
	Principal *Principal
}

type OwnerSignup struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Password string
	Name     string
}

type Provider struct {
	Repo          *GormRepo
	AccessSecret  []byte
	RefreshSecret []byte

	mu     sync.Mutex
	nextID int
	subs   map[int]func(SessionEvent)
}

func NewProvider(db *gorm.DB, accessSecret, refreshSecret []byte) *Provider {
	return &Provider{
		Repo:          &GormRepo{DB: db},
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
	}
}

type CustomerSignup struct {
	UserID   uuid.UUID
	Email    string
	Password string
	Name     string
}

// SignUp creates the owner user and profile inside tx so the caller can
// commit them together with the tenant record.
func (p *Provider) SignUp(ctx context.Context, tx *gorm.DB, req OwnerSignup) error {
	return p.createAccount(ctx, tx, "identity.signup", req.Email, req.Password,
		Profile{UserID: req.UserID, TenantID: req.TenantID, Role: RoleOwner, Name: req.Name})
}

// SignUpCustomer creates a customer user. Its profile is bound to no tenant,
// so the principal never passes a tenant admin check.
func (p *Provider) SignUpCustomer(ctx context.Context, tx *gorm.DB, req CustomerSignup) error {
	return p.createAccount(ctx, tx, "identity.customer_signup", req.Email, req.Password,
		Profile{UserID: req.UserID, TenantID: uuid.Nil, Role: RoleCustomer, Name: req.Name})
}

func (p *Provider) createAccount(ctx context.Context, tx *gorm.DB, svc, email, password string, profile Profile) error {
	l := logging.FromContext(ctx).With("svc", svc)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return fmt.Errorf("email and password of at least 8 characters required: %w", ErrValidation)
	}

	taken, err := p.Repo.EmailTaken(ctx, tx, email)
	if err != nil {
		return err
	}
	if taken {
		l.Warn("signup_error", "status", 409, "reason", "email already registered")
		return fmt.Errorf("email already registered: %w", ErrConflict)
	}

	pwHash, err := HashPassword(password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}

	user := User{ID: profile.UserID, Email: email, PasswordHash: pwHash}
	if err := p.Repo.CreateUser(ctx, tx, &user); err != nil {
		return err
	}
	profile.UserID = user.ID
	return p.Repo.CreateProfile(ctx, tx, &profile)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*Principal, *Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	l := logging.FromContext(ctx).With("svc", "identity.signin", "email", email)

	user, err := p.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.Warn("signin_failed", "status", 401, "reason", "unknown email")
			return nil, nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		l.Warn("signin_failed", "status", 401, "reason", "wrong password")
		return nil, nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	principal, err := p.principalFor(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	toks, err := p.issue(ctx, principal)
	if err != nil {
		l.Error("signin_failed", "status", 500, "error", err)
		return nil, nil, err
	}

	l.Info("signin_ok", "user_id", principal.UserID, "tenant_id", principal.TenantID)
	p.notify(SessionEvent{UserID: principal.UserID, Principal: principal})
	return principal, toks, nil
}

// SignOut revokes the refresh token. Revoking an unknown token is not an error.
func (p *Provider) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := p.Repo.RevokeRefresh(ctx, refreshToken); err != nil {
		return err
	}
	if claims, err := RefreshClaimsFromToken(refreshToken, p.RefreshSecret); err == nil {
		p.notify(SessionEvent{UserID: claims.Subject})
	}
	return nil
}

// Refresh rotates a refresh token. The tenant binding is re-read from the
// profile store, never taken from the previous access token.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Principal, *Tokens, error) {
	l := logging.FromContext(ctx).With("svc", "identity.refresh")

	claims, err := RefreshClaimsFromToken(refreshToken, p.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "bad refresh token", "error", err)
		return nil, nil, fmt.Errorf("refresh token: %w", ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh subject: %w", ErrUnauthorized)
	}
	user, err := p.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("refresh user: %w", ErrUnauthorized)
		}
		return nil, nil, err
	}

	principal, err := p.principalFor(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	toks, next, err := p.sign(principal)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Repo.RotateRefresh(ctx, claims.ID, next); err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return nil, nil, err
	}
	p.notify(SessionEvent{UserID: principal.UserID, Principal: principal})
	return principal, toks, nil
}

// Current reports the principal an access token was issued for.
func (p *Provider) Current(accessToken string) (*Principal, error) {
	claims, err := AccessClaimsFromToken(accessToken, p.AccessSecret)
	if err != nil {
		return nil, err
	}
	return principalFromClaims(claims), nil
}

// Subscribe registers fn for session changes of every user: sign-in and
// refresh carry the principal, sign-out does not. The returned func removes
// the subscription.
func (p *Provider) Subscribe(fn func(SessionEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subs == nil {
		p.subs = make(map[int]func(SessionEvent))
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) notify(ev SessionEvent) {
	p.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (p *Provider) principalFor(ctx context.Context, user *User) (*Principal, error) {
	principal := &Principal{UserID: user.ID.String(), Email: user.Email}

	profile, err := p.Repo.ProfileByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		return principal, nil
	case err != nil:
		return nil, err
	}

	if profile.TenantID != uuid.Nil {
		principal.TenantID = profile.TenantID.String()
	}
	principal.Role = profile.Role
	principal.Name = profile.Name
	return principal, nil
}

func (p *Provider) issue(ctx context.Context, principal *Principal) (*Tokens, error) {
	toks, refresh, err := p.sign(principal)
	if err != nil {
		return nil, err
	}
	if err := p.Repo.AddRefresh(ctx, refresh); err != nil {
		return nil, err
	}
	return toks, nil
}

func (p *Provider) sign(principal *Principal) (*Tokens, *RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(AccessTTL)
	refreshExp := now.Add(RefreshTTL)

	accessToken, err := signHS256(AccessClaims{
		Email:    principal.Email,
		Name:     principal.Name,
		TenantID: principal.TenantID,
		Role:     principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}, p.AccessSecret)
	if err != nil {
		return nil, nil, err
	}

	jti := NewJTI()
	refreshToken, err := signHS256(RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        jti,
		},
	}, p.RefreshSecret)
	if err != nil {
		return nil, nil, err
	}

	userID, err := uuid.Parse(principal.UserID)
	if err != nil {
		return nil, nil, err
	}

	return &Tokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			AccessExp:    accessExp,
			RefreshExp:   refreshExp,
		}, &RefreshToken{
			Token:     Sha256Hex(refreshToken),
			UserID:    userID,
			JTI:       jti,
			ExpiresAt: refreshExp.Unix(),
		}, nil
}

func principalFromClaims(c *AccessClaims) *Principal {
	return &Principal{
		UserID:   c.Subject,
		Email:    c.Email,
		Name:     c.Name,
		TenantID: c.TenantID,
		Role:     c.Role,
	}
}
