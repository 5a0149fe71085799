// Package tenantmw resolves the tenant named by a route's :slug parameter.
package tenantmw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/tenant"
)

const (
	SlugParam = "slug"
	tenantKey = "tenant"
)

// Resolve answers 404 for an unknown slug and stores the tenant in the
// context otherwise.
func Resolve(r *tenant.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("handler", "tenant.resolve")

			slug := c.Param(SlugParam)
			res, err := r.Resolve(ctx, slug)
			if err != nil {
				l.Error("resolve_tenant_error", "status", 500, "slug", slug, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot resolve restaurant")
			}
			if !res.Found() {
				l.Warn("resolve_tenant_error", "status", 404, "reason", "restaurant not found", "slug", slug)
				return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
			}

			t := res.Tenant()
			c.Set(tenantKey, t)
			req := c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("tenant_id", t.ID.String())))
			c.SetRequest(req)
			return next(c)
		}
	}
}

func FromContext(c echo.Context) (tenant.Tenant, bool) {
	t, ok := c.Get(tenantKey).(tenant.Tenant)
	return t, ok
}
