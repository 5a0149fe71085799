package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/menu"
	"github.com/Skotchmaster/orderdirect/internal/middleware/tenantmw"
	"github.com/Skotchmaster/orderdirect/internal/storefront"
)

type StoreHTTP struct {
	Menu *menu.Service
	QR   storefront.QR
}

func (h *StoreHTTP) GetStore(c echo.Context) error {
	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	return c.JSON(http.StatusOK, t.Public())
}

func (h *StoreHTTP) GetMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.menu")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	items, err := h.Menu.ListAvailable(ctx, t.ID)
	if err != nil {
		return fail(l, "menu_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *StoreHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.categories")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	cats, err := h.Menu.ListCategories(ctx, t.ID)
	if err != nil {
		return fail(l, "categories_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": cats})
}

func (h *StoreHTTP) QRCode(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "store.qr")

	t, ok := tenantmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	png, err := h.QR.PNG(t.Subdomain)
	if err != nil {
		if errors.Is(err, storefront.ErrNoBaseURL) {
			l.Warn("qr_error", "status", 404, "reason", "public base url not configured")
			return echo.NewHTTPError(http.StatusNotFound, "storefront link is not configured")
		}
		l.Error("qr_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render qr code")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
