package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/middleware/auth"
	"github.com/Skotchmaster/orderdirect/internal/tenant"
)

type SignupHTTP struct {
	Tenants  *tenant.Service
	Identity *identity.Provider
}

type signupResponse struct {
	Restaurant *tenant.Tenant      `json:"restaurant"`
	Principal  *identity.Principal `json:"principal,omitempty"`
}

// Signup registers a restaurant and signs its owner in.
func (h *SignupHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tenant.signup")

	var req tenant.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "signup_error", "invalid body", err)
	}

	t, err := h.Tenants.Signup(ctx, req)
	if err != nil {
		return fail(l, "signup_error", err)
	}

	resp := signupResponse{Restaurant: t}
	principal, toks, err := h.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn("signup_signin_failed", "tenant_id", t.ID.String(), "error", err)
	} else {
		auth.SetAuthCookies(c, toks)
		resp.Principal = principal
	}

	l.Info("signup_success", "tenant_id", t.ID.String())
	return c.JSON(http.StatusCreated, resp)
}

func (h *SignupHTTP) Availability(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tenant.availability")

	slug := tenant.NormalizeSlug(c.Param("slug"))
	ok, err := h.Tenants.CheckSubdomainAvailability(ctx, slug)
	if err != nil {
		return fail(l, "availability_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"subdomain": slug,
		"available": ok,
	})
}
