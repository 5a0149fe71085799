package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/cart"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/menu"
	"github.com/Skotchmaster/orderdirect/internal/middleware/tenantmw"
	"github.com/Skotchmaster/orderdirect/internal/pricing"
)

const CartCookie = "cart_session"

type CartHTTP struct {
	Carts *cart.Adapter
	Menu  *menu.Service
	Calc  pricing.Calculator
	TTL   time.Duration
}

type cartResponse struct {
	cart.Snapshot
	Totals    pricing.Totals `json:"totals"`
	ItemCount int            `json:"itemCount"`
}

func (h *CartHTTP) respond(c echo.Context, status int, s *cart.Session) error {
	cur := s.Cart()
	return c.JSON(status, cartResponse{
		Snapshot:  cur.Snapshot(),
		Totals:    cur.Totals(h.Calc),
		ItemCount: cur.ItemCount(),
	})
}

// session opens the caller's cart, issuing a new session cookie when the
// request carries none.
func (h *CartHTTP) session(c echo.Context) *cart.Session {
	id := ""
	if ck, err := c.Cookie(CartCookie); err == nil {
		if _, err := uuid.Parse(ck.Value); err == nil {
			id = ck.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	c.SetCookie(&http.Cookie{
		Name:     CartCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return cart.OpenSession(c.Request().Context(), h.Carts, id, h.Calc)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return h.respond(c, http.StatusOK, h.session(c))
}

type addItemRequest struct {
	MenuItemID string `json:"menuItemId"`
}

// AddItem adds one unit of a menu item of the route's restaurant. Adding from
// another restaurant replaces the cart.
func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "cart_add_error", "invalid body", err)
	}
	itemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		return badRequest(l, "cart_add_error", "menuItemId is not a uuid", err)
	}

	item, err := h.Menu.GetItem(ctx, t.ID, itemID)
	if err != nil {
		return fail(l, "cart_add_error", err)
	}
	if !item.Available {
		l.Warn("cart_add_error", "status", 409, "reason", "item unavailable", "item_id", itemID.String())
		return echo.NewHTTPError(http.StatusConflict, "item is not available")
	}

	s := h.session(c)
	s.AddItem(ctx, item.CartItem(), t.ID.String(), t.Name)
	return h.respond(c, http.StatusOK, s)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.set_quantity")

	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "cart_quantity_error", "invalid body", err)
	}
	if req.Quantity > cart.MaxQuantity {
		return badRequest(l, "cart_quantity_error", "quantity too large", nil)
	}

	s := h.session(c)
	s.SetQuantity(c.Request().Context(), c.Param("id"), req.Quantity)
	return h.respond(c, http.StatusOK, s)
}

type instructionsRequest struct {
	Instructions string `json:"instructions"`
}

func (h *CartHTTP) SetInstructions(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.set_instructions")

	var req instructionsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "cart_instructions_error", "invalid body", err)
	}

	s := h.session(c)
	s.SetInstructions(c.Request().Context(), c.Param("id"), req.Instructions)
	return h.respond(c, http.StatusOK, s)
}

type addOnsRequest struct {
	AddOns []cart.AddOn `json:"selectedAddOns"`
}

func (h *CartHTTP) SetAddOns(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.set_add_ons")

	var req addOnsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "cart_add_ons_error", "invalid body", err)
	}
	for _, a := range req.AddOns {
		if a.Price < 0 {
			return badRequest(l, "cart_add_ons_error", "add-on price cannot be negative", nil)
		}
	}

	s := h.session(c)
	s.SetAddOns(c.Request().Context(), c.Param("id"), req.AddOns)
	return h.respond(c, http.StatusOK, s)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	s := h.session(c)
	s.RemoveItem(c.Request().Context(), c.Param("id"))
	return h.respond(c, http.StatusOK, s)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	s := h.session(c)
	s.Clear(c.Request().Context())
	return h.respond(c, http.StatusOK, s)
}
