package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/middleware/tenantmw"
	"github.com/Skotchmaster/orderdirect/internal/session"
)

const principalKey = "principal"

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*identity.Principal, *identity.Tokens, error)
}

type AutoRefreshMiddleware struct {
	AccessSecret []byte
	Refresher    Refresher
}

func NewAutoRefreshMiddleware(secret []byte, r Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{AccessSecret: secret, Refresher: r}
}

type ValidatorFunc func(c echo.Context, p *identity.Principal) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

// RequireTenantAdmin admits a principal only on routes of the tenant it was
// bound to at sign-in. It must run after tenantmw.Resolve.
func (m *AutoRefreshMiddleware) RequireTenantAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(c echo.Context, p *identity.Principal) error {
		t, ok := tenantmw.FromContext(c)
		if !ok || !session.IsAuthorized(p.TenantID, t.ID.String()) {
			logging.FromContext(c.Request().Context()).Warn("tenant_guard_denied",
				"status", 403, "principal_tenant_id", p.TenantID, "user_id", p.UserID)
			return echo.NewHTTPError(http.StatusForbidden, session.ErrForbidden.Error())
		}
		return nil
	})
}

// RequireCustomer admits only principals signed up as customers.
func (m *AutoRefreshMiddleware) RequireCustomer(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(c echo.Context, p *identity.Principal) error {
		if p.Role != identity.RoleCustomer {
			logging.FromContext(c.Request().Context()).Warn("customer_guard_denied",
				"status", 403, "role", p.Role, "user_id", p.UserID)
			return echo.NewHTTPError(http.StatusForbidden, "customer account required")
		}
		return nil
	})
}

// OptionalAuth attaches the principal of a valid access token and otherwise
// lets the request through anonymously. It never refreshes.
func (m *AutoRefreshMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
			if claims, err := identity.AccessClaimsFromToken(ck.Value, m.AccessSecret); err == nil {
				c.Set(principalKey, principalFromClaims(claims))
			}
		}
		return next(c)
	}
}

func principalFromClaims(claims *identity.AccessClaims) *identity.Principal {
	return &identity.Principal{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		TenantID: claims.TenantID,
		Role:     claims.Role,
	}
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie(AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := identity.AccessClaimsFromToken(accessCookie.Value, m.AccessSecret)
		if err == nil {
			return m.admit(c, next, validator, principalFromClaims(claims))
		}

		if !errors.Is(err, jwt.ErrTokenExpired) {
			ClearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		refreshCookie, rErr := c.Cookie(RefreshCookie)
		if rErr != nil || refreshCookie.Value == "" {
			ClearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}

		p, toks, refErr := m.Refresher.Refresh(c.Request().Context(), refreshCookie.Value)
		if refErr != nil {
			ClearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
		}
		SetAuthCookies(c, toks)

		return m.admit(c, next, validator, p)
	}
}

func (m *AutoRefreshMiddleware) admit(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc, p *identity.Principal) error {
	if validator != nil {
		if err := validator(c, p); err != nil {
			return err
		}
	}
	c.Set(principalKey, p)
	return next(c)
}

func PrincipalFromContext(c echo.Context) (*identity.Principal, bool) {
	p, ok := c.Get(principalKey).(*identity.Principal)
	return p, ok && p != nil
}
