package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/cart"
	"github.com/Skotchmaster/orderdirect/internal/customer"
	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/menu"
	"github.com/Skotchmaster/orderdirect/internal/middleware/auth"
	"github.com/Skotchmaster/orderdirect/internal/middleware/csrf"
	"github.com/Skotchmaster/orderdirect/internal/middleware/tenantmw"
	"github.com/Skotchmaster/orderdirect/internal/order"
	"github.com/Skotchmaster/orderdirect/internal/pricing"
	"github.com/Skotchmaster/orderdirect/internal/storefront"
	"github.com/Skotchmaster/orderdirect/internal/tenant"
)

type Deps struct {
	Tenants   *tenant.Service
	Resolver  *tenant.Resolver
	Identity  *identity.Provider
	Customers *customer.Service
	Menu      *menu.Service
	Orders    *order.Service
	Watcher   order.Watcher
	Carts     *cart.Adapter
	Calc      pricing.Calculator
	CartTTL   time.Duration
	QR        storefront.QR
	CSRF      csrf.Config

	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := auth.NewAutoRefreshMiddleware(d.Identity.AccessSecret, d.Identity)

	signupH := &SignupHTTP{Tenants: d.Tenants, Identity: d.Identity}
	authH := &AuthHTTP{Identity: d.Identity}
	cartH := &CartHTTP{Carts: d.Carts, Menu: d.Menu, Calc: d.Calc, TTL: d.CartTTL}
	storeH := &StoreHTTP{Menu: d.Menu, QR: d.QR}
	orderH := &OrderHTTP{Orders: d.Orders, Watcher: d.Watcher, Carts: cartH, Customers: d.Customers}
	customerH := &CustomerHTTP{Customers: d.Customers, Identity: d.Identity}
	menuH := &MenuAdminHTTP{Menu: d.Menu}

	api := e.Group("/api/v1")
	api.POST("/signup", signupH.Signup)
	api.GET("/subdomains/:slug/availability", signupH.Availability)

	authG := api.Group("/auth")
	authG.POST("/login", authH.Login)
	authG.POST("/logout", authH.Logout)
	authG.POST("/refresh", authH.Refresh)
	authG.GET("/me", authH.Me, authMW.RequireAuth)

	custG := api.Group("/customer")
	custG.POST("/signup", customerH.Signup)
	custG.POST("/login", customerH.Login)
	custG.POST("/logout", authH.Logout)
	custG.GET("/me", customerH.Profile, authMW.RequireCustomer)
	custG.GET("/profile", customerH.Profile, authMW.RequireCustomer)
	custG.PATCH("/profile", customerH.PatchProfile, authMW.RequireCustomer)
	custG.GET("/checkout-details", customerH.CheckoutDetails, authMW.RequireCustomer)
	custG.GET("/addresses", customerH.ListAddresses, authMW.RequireCustomer)
	custG.POST("/addresses", customerH.AddAddress, authMW.RequireCustomer)
	custG.PATCH("/addresses/:id", customerH.PatchAddress, authMW.RequireCustomer)
	custG.PUT("/addresses/:id/default", customerH.SetDefaultAddress, authMW.RequireCustomer)
	custG.DELETE("/addresses/:id", customerH.DeleteAddress, authMW.RequireCustomer)

	cartG := api.Group("/cart")
	cartG.GET("", cartH.GetCart)
	cartG.DELETE("", cartH.Clear)
	cartG.PATCH("/items/:id", cartH.SetQuantity)
	cartG.PUT("/items/:id/instructions", cartH.SetInstructions)
	cartG.PUT("/items/:id/add-ons", cartH.SetAddOns)
	cartG.DELETE("/items/:id", cartH.RemoveItem)

	store := api.Group("/stores/:slug", tenantmw.Resolve(d.Resolver))
	store.GET("", storeH.GetStore)
	store.GET("/menu", storeH.GetMenu)
	store.GET("/categories", storeH.Categories)
	store.GET("/qr.png", storeH.QRCode)
	store.POST("/cart/items", cartH.AddItem)
	store.POST("/checkout", orderH.Checkout, authMW.OptionalAuth)
	store.GET("/orders/:id", orderH.GetOrder)
	store.GET("/orders/:id/events", orderH.Events)
	store.POST("/admin/login", authH.AdminLogin)

	admin := store.Group("/admin", authMW.RequireTenantAdmin, csrf.Middleware(d.CSRF))
	admin.GET("/menu", menuH.ListItems)
	admin.POST("/menu", menuH.CreateItem)
	admin.PATCH("/menu/:id", menuH.PatchItem)
	admin.PUT("/menu/:id/availability", menuH.SetAvailability)
	admin.DELETE("/menu/:id", menuH.DeleteItem)
	admin.GET("/categories", menuH.ListCategories)
	admin.POST("/categories", menuH.CreateCategory)
	admin.PATCH("/categories/:id", menuH.PatchCategory)
	admin.DELETE("/categories/:id", menuH.DeleteCategory)
	admin.GET("/orders", orderH.List)
	admin.POST("/orders/:id/close", orderH.Close)
	admin.PUT("/orders/:id/status", orderH.SetStatus)
}
