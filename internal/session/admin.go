package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/logging"
)

type State int

const (
	LoggedOut State = iota
	Authorized
)

func (s State) String() string {
	if s == Authorized {
		return "authorized"
	}
	return "logged_out"
}

var ErrForbidden = errors.New("this account does not manage this restaurant")

// Provider is the part of the identity provider the admin session needs.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*identity.Principal, *identity.Tokens, error)
	SignOut(ctx context.Context, refreshToken string) error
	Subscribe(fn func(identity.SessionEvent)) func()
}

// Admin is the admin-surface session for one route tenant. Once signed in it
// follows the provider's events for its own user and re-evaluates
// authorization on each of them. Events of other users are ignored.
type Admin struct {
	provider Provider
	tenantID string

	mu        sync.Mutex
	state     State
	err       error
	principal *identity.Principal
	tokens    *identity.Tokens

	unsubscribe func()
}

func NewAdmin(p Provider, routeTenantID string) *Admin {
	a := &Admin{provider: p, tenantID: routeTenantID}
	a.unsubscribe = p.Subscribe(a.onChange)
	return a
}

func (a *Admin) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err is the error that last moved the session to LoggedOut, if any.
func (a *Admin) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Admin) Principal() *identity.Principal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.principal
}

func (a *Admin) Tokens() *identity.Tokens {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tokens
}

// SignIn submits credentials. A rejected login or a principal bound to a
// different tenant leaves the session LoggedOut with Err set; in the latter
// case the tokens the provider just issued are revoked.
func (a *Admin) SignIn(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "session.admin", "tenant_id", a.tenantID)

	principal, toks, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		a.fail(err)
		l.Warn("admin_signin_failed", "reason", "provider rejected credentials", "error", err)
		return err
	}

	if !IsAuthorized(principal.TenantID, a.tenantID) {
		// The provider already issued a session; revoke it before reporting.
		// Called without a.mu held since the provider notifies onChange.
		if err := a.provider.SignOut(ctx, toks.RefreshToken); err != nil {
			l.Error("admin_signin_revoke_failed", "error", err)
		}
		a.fail(ErrForbidden)
		l.Warn("admin_signin_failed", "reason", "tenant mismatch", "principal_tenant_id", principal.TenantID)
		return ErrForbidden
	}

	a.mu.Lock()
	a.state, a.err, a.principal, a.tokens = Authorized, nil, principal, toks
	a.mu.Unlock()
	return nil
}

func (a *Admin) SignOut(ctx context.Context) error {
	var refresh string
	if t := a.Tokens(); t != nil {
		refresh = t.RefreshToken
	}
	if err := a.provider.SignOut(ctx, refresh); err != nil {
		return err
	}

	a.mu.Lock()
	a.state, a.err, a.principal, a.tokens = LoggedOut, nil, nil, nil
	a.mu.Unlock()
	return nil
}

// Close stops listening to the provider.
func (a *Admin) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *Admin) onChange(ev identity.SessionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.principal == nil || ev.UserID != a.principal.UserID {
		return
	}

	switch {
	case ev.Principal == nil:
		a.state, a.err, a.principal, a.tokens = LoggedOut, nil, nil, nil
	case !IsAuthorized(ev.Principal.TenantID, a.tenantID):
		a.state, a.err, a.principal, a.tokens = LoggedOut, ErrForbidden, nil, nil
	default:
		a.state, a.err, a.principal = Authorized, nil, ev.Principal
	}
}

func (a *Admin) fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state, a.err, a.principal, a.tokens = LoggedOut, err, nil, nil
}
