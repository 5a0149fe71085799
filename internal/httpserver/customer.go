package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/customer"
	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/middleware/auth"
)

type CustomerHTTP struct {
	Customers *customer.Service
	Identity  *identity.Provider
}

type customerSession struct {
	Customer  *customer.Profile   `json:"customer"`
	Principal *identity.Principal `json:"principal"`
}

func customerID(c echo.Context, l *slog.Logger) (uuid.UUID, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		l.Warn("customer_subject_invalid", "status", 401, "user_id", p.UserID)
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return id, nil
}

// Signup creates a customer account and signs it in.
func (h *CustomerHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.signup")

	var req customer.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "customer_signup_error", "invalid body", err)
	}

	profile, err := h.Customers.Signup(ctx, req)
	if err != nil {
		return fail(l, "customer_signup_error", err)
	}

	resp := customerSession{Customer: profile}
	principal, toks, err := h.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn("customer_signup_signin_failed", "user_id", profile.UserID.String(), "error", err)
	} else {
		auth.SetAuthCookies(c, toks)
		resp.Principal = principal
	}

	l.Info("customer_signup_success", "user_id", profile.UserID.String())
	return c.JSON(http.StatusCreated, resp)
}

// Login signs in a customer account. Restaurant accounts are refused here and
// their freshly issued session is revoked.
func (h *CustomerHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "customer_login_error", "invalid body", err)
	}

	principal, toks, err := h.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "customer_login_error", err)
	}
	if principal.Role != identity.RoleCustomer {
		if err := h.Identity.SignOut(ctx, toks.RefreshToken); err != nil {
			l.Error("customer_login_revoke_failed", "error", err)
		}
		auth.ClearAuthCookies(c)
		l.Warn("customer_login_error", "status", 403, "reason", "not a customer account", "role", principal.Role)
		return echo.NewHTTPError(http.StatusForbidden, "customer account required")
	}

	userID, err := uuid.Parse(principal.UserID)
	if err != nil {
		return fail(l, "customer_login_error", err)
	}
	profile, err := h.Customers.GetProfile(ctx, userID)
	if err != nil {
		return fail(l, "customer_login_error", err)
	}

	auth.SetAuthCookies(c, toks)
	l.Info("customer_login_success", "user_id", principal.UserID)
	return c.JSON(http.StatusOK, customerSession{Customer: profile, Principal: principal})
}

func (h *CustomerHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.profile")

	id, err := customerID(c, l)
	if err != nil {
		return err
	}
	profile, err := h.Customers.GetProfile(ctx, id)
	if err != nil {
		return fail(l, "customer_profile_error", err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *CustomerHTTP) PatchProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.patch_profile")

	id, err := customerID(c, l)
	if err != nil {
		return err
	}
	var patch customer.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(l, "customer_profile_error", "invalid body", err)
	}

	profile, err := h.Customers.UpdateProfile(ctx, id, patch)
	if err != nil {
		return fail(l, "customer_profile_error", err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *CustomerHTTP) ListAddresses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.list_addresses")

	id, err := customerID(c, l)
	if err != nil {
		return err
	}
	addrs, err := h.Customers.ListAddresses(ctx, id)
	if err != nil {
		return fail(l, "list_addresses_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": addrs})
}

func (h *CustomerHTTP) AddAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.add_address")

	id, err := customerID(c, l)
	if err != nil {
		return err
	}
	var in customer.AddressInput
	if err := c.Bind(&in); err != nil {
		return badRequest(l, "add_address_error", "invalid body", err)
	}

	a, err := h.Customers.AddAddress(ctx, id, in)
	if err != nil {
		return fail(l, "add_address_error", err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *CustomerHTTP) PatchAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.patch_address")

	userID, err := customerID(c, l)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "patch_address_error")
	if err != nil {
		return err
	}
	var patch customer.AddressPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(l, "patch_address_error", "invalid body", err)
	}

	a, err := h.Customers.UpdateAddress(ctx, userID, id, patch)
	if err != nil {
		return fail(l, "patch_address_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *CustomerHTTP) SetDefaultAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.default_address")

	userID, err := customerID(c, l)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "default_address_error")
	if err != nil {
		return err
	}

	a, err := h.Customers.SetDefaultAddress(ctx, userID, id)
	if err != nil {
		return fail(l, "default_address_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *CustomerHTTP) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.delete_address")

	userID, err := customerID(c, l)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "delete_address_error")
	if err != nil {
		return err
	}

	if err := h.Customers.DeleteAddress(ctx, userID, id); err != nil {
		return fail(l, "delete_address_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckoutDetails is what the checkout form is prefilled with.
func (h *CustomerHTTP) CheckoutDetails(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.checkout_details")

	id, err := customerID(c, l)
	if err != nil {
		return err
	}
	contact, err := h.Customers.Contact(ctx, id)
	if err != nil {
		return fail(l, "checkout_details_error", err)
	}
	return c.JSON(http.StatusOK, contact)
}
