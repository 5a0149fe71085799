package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/customer"
	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/middleware/auth"
	"github.com/Skotchmaster/orderdirect/internal/middleware/tenantmw"
	"github.com/Skotchmaster/orderdirect/internal/order"
	"github.com/Skotchmaster/orderdirect/internal/util"
)

type OrderHTTP struct {
	Orders    *order.Service
	Watcher   order.Watcher
	Carts     *CartHTTP
	Customers *customer.Service
}

// prefill fills the contact fields the caller left empty from the signed-in
// customer's profile. Anonymous callers and other roles are left untouched.
func (h *OrderHTTP) prefill(c echo.Context, cust *order.Customer) {
	if h.Customers == nil || (cust.Name != "" && cust.Email != "" && cust.Phone != "") {
		return
	}
	p, ok := auth.PrincipalFromContext(c)
	if !ok || p.Role != identity.RoleCustomer {
		return
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return
	}

	ctx := c.Request().Context()
	contact, err := h.Customers.Contact(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("checkout_prefill_failed", "user_id", p.UserID, "error", err)
		return
	}
	if cust.Name == "" {
		cust.Name = contact.Name
	}
	if cust.Email == "" {
		cust.Email = contact.Email
	}
	if cust.Phone == "" {
		cust.Phone = contact.Phone
	}
}

// Checkout turns the caller's cart into an order and clears the cart.
func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	var cust order.Customer
	if err := c.Bind(&cust); err != nil {
		return badRequest(l, "checkout_error", "invalid body", err)
	}
	h.prefill(c, &cust)

	s := h.Carts.session(c)
	cur := s.Cart()
	if !cur.Bound() {
		return badRequest(l, "checkout_error", "cart is empty", nil)
	}
	if cur.TenantID() != t.ID.String() {
		return badRequest(l, "checkout_error", "cart belongs to another restaurant", nil)
	}

	o, err := h.Orders.Checkout(ctx, cur, cust)
	if err != nil {
		return fail(l, "checkout_error", err)
	}
	s.Clear(ctx)

	l.Info("checkout_success", "order_id", o.ID.String())
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	id, err := parseID(c, l, "get_order_error")
	if err != nil {
		return err
	}

	o, err := h.Orders.GetForTenant(ctx, t.ID, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

// Events streams an order as server-sent events: the current state first,
// then every status change until the order is closed or the client leaves.
func (h *OrderHTTP) Events(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.events")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	id, err := parseID(c, l, "order_events_error")
	if err != nil {
		return err
	}

	updates, err := h.Watcher.Watch(ctx, id)
	if err != nil {
		return fail(l, "order_events_error", err)
	}
	o, err := h.Orders.GetForTenant(ctx, t.ID, id)
	if err != nil {
		return fail(l, "order_events_error", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	for {
		if err := writeEvent(res, o); err != nil {
			return nil
		}
		if o.Status == order.StatusClosed {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-updates:
			if !ok {
				return nil
			}
			o = &next
		}
	}
}

func writeEvent(res *echo.Response, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: order\ndata: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Orders.ListByTenant(ctx, t.ID, offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": util.NewMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) Close(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.close")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	id, err := parseID(c, l, "close_order_error")
	if err != nil {
		return err
	}

	o, err := h.Orders.Close(ctx, t.ID, id)
	if err != nil {
		return fail(l, "close_order_error", err)
	}
	l.Info("close_order_success", "order_id", o.ID.String())
	return c.JSON(http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.set_status")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	id, err := parseID(c, l, "set_status_error")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_status_error", "invalid body", err)
	}

	o, err := h.Orders.SetStatus(ctx, t.ID, id, req.Status)
	if err != nil {
		return fail(l, "set_status_error", err)
	}
	return c.JSON(http.StatusOK, o)
}
