package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/middleware/auth"
	"github.com/Skotchmaster/orderdirect/internal/middleware/tenantmw"
	"github.com/Skotchmaster/orderdirect/internal/session"
)

type AuthHTTP struct {
	Identity *identity.Provider
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	principal, toks, err := h.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	auth.SetAuthCookies(c, toks)
	l.Info("login_success", "user_id", principal.UserID)
	return c.JSON(http.StatusOK, principal)
}

// AdminLogin signs in on a restaurant's admin surface. A principal of another
// restaurant is refused and gets no cookies.
func (h *AuthHTTP) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.admin_login")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "admin_login_error", "invalid body", err)
	}

	admin := session.NewAdmin(h.Identity, t.ID.String())
	defer admin.Close()

	if err := admin.SignIn(ctx, req.Email, req.Password); err != nil {
		auth.ClearAuthCookies(c)
		return fail(l, "admin_login_error", err)
	}

	principal, toks := admin.Principal(), admin.Tokens()
	if principal == nil || toks == nil {
		l.Warn("admin_login_error", "status", 401, "reason", "signed out during sign-in")
		return echo.NewHTTPError(http.StatusUnauthorized, "session ended")
	}

	auth.SetAuthCookies(c, toks)
	l.Info("admin_login_success", "user_id", principal.UserID)
	return c.JSON(http.StatusOK, map[string]any{
		"state":     session.Authorized.String(),
		"principal": principal,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var refresh string
	if ck, err := c.Cookie(auth.RefreshCookie); err == nil {
		refresh = ck.Value
	}
	if err := h.Identity.SignOut(ctx, refresh); err != nil {
		return fail(l, "logout_error", err)
	}

	auth.ClearAuthCookies(c)
	l.Info("logout_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(auth.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	principal, toks, err := h.Identity.Refresh(ctx, ck.Value)
	if err != nil {
		auth.ClearAuthCookies(c)
		return fail(l, "refresh_error", err)
	}

	auth.SetAuthCookies(c, toks)
	return c.JSON(http.StatusOK, principal)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusOK, p)
}
