package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/menu"
	"github.com/Skotchmaster/orderdirect/internal/middleware/tenantmw"
)

type MenuAdminHTTP struct {
	Menu *menu.Service
}

func (h *MenuAdminHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_items")

	t, _ := tenantmw.FromContext(c)
	items, err := h.Menu.ListItems(ctx, t.ID)
	if err != nil {
		return fail(l, "list_items_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *MenuAdminHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_item")

	t, _ := tenantmw.FromContext(c)
	var req menu.ItemInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_item_error", "invalid body", err)
	}

	item, err := h.Menu.CreateItem(ctx, t.ID, req)
	if err != nil {
		return fail(l, "create_item_error", err)
	}
	l.Info("create_item_success", "item_id", item.ID.String())
	return c.JSON(http.StatusCreated, item)
}

func (h *MenuAdminHTTP) PatchItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_item")

	t, _ := tenantmw.FromContext(c)
	id, err := parseID(c, l, "patch_item_error")
	if err != nil {
		return err
	}
	var req menu.ItemPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_item_error", "invalid body", err)
	}

	item, err := h.Menu.UpdateItem(ctx, t.ID, id, req)
	if err != nil {
		return fail(l, "patch_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

func (h *MenuAdminHTTP) SetAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_availability")

	t, _ := tenantmw.FromContext(c)
	id, err := parseID(c, l, "set_availability_error")
	if err != nil {
		return err
	}
	var req availabilityRequest
	if err := c.Bind(&req); err != nil || req.Available == nil {
		return badRequest(l, "set_availability_error", "available flag is required", err)
	}

	item, err := h.Menu.SetAvailability(ctx, t.ID, id, *req.Available)
	if err != nil {
		return fail(l, "set_availability_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuAdminHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_item")

	t, _ := tenantmw.FromContext(c)
	id, err := parseID(c, l, "delete_item_error")
	if err != nil {
		return err
	}
	if err := h.Menu.DeleteItem(ctx, t.ID, id); err != nil {
		return fail(l, "delete_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MenuAdminHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_categories")

	t, _ := tenantmw.FromContext(c)
	cats, err := h.Menu.ListCategories(ctx, t.ID)
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": cats})
}

func (h *MenuAdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	t, _ := tenantmw.FromContext(c)
	var req menu.CategoryInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category_error", "invalid body", err)
	}

	cat, err := h.Menu.CreateCategory(ctx, t.ID, req)
	if err != nil {
		return fail(l, "create_category_error", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// PatchCategory reports how many items a rename rewrote.
func (h *MenuAdminHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_category")

	t, _ := tenantmw.FromContext(c)
	id, err := parseID(c, l, "patch_category_error")
	if err != nil {
		return err
	}
	var req menu.CategoryPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_category_error", "invalid body", err)
	}

	cat, rewritten, err := h.Menu.UpdateCategory(ctx, t.ID, id, req)
	if err != nil {
		return fail(l, "patch_category_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"category":       cat,
		"itemsRewritten": rewritten,
	})
}

func (h *MenuAdminHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_category")

	t, _ := tenantmw.FromContext(c)
	id, err := parseID(c, l, "delete_category_error")
	if err != nil {
		return err
	}
	if err := h.Menu.DeleteCategory(ctx, t.ID, id); err != nil {
		return fail(l, "delete_category_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
