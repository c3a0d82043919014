// Package httpserver exposes the storefront and admin console over HTTP.
// Every handler is display/CRUD glue: bind, call the matching client
// service, map the normalized error back onto a status code.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/admin"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/authstate"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/shop"
)

type Deps struct {
	Auth     *authstate.State
	Catalog  *shop.Catalog
	Cart     *shop.Cart
	Wishlist *shop.Wishlist
	Orders   *shop.Orders
	Invoices shop.Invoices
	Admin    *admin.Service

	Log *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		// Nothing user-facing is served until initialization resolves.
		if d.Auth.Current().Loading {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	for _, m := range Common() {
		e.Use(m)
	}
	e.Use(RequestLogger(d.Log))

	h := &handlers{deps: d}

	auth := e.Group("/api/v1/auth")
	auth.POST("/login", h.login)
	auth.POST("/signup", h.signup)
	auth.POST("/verify-otp", h.verifyOTP)
	auth.POST("/resend-verification", h.resendVerification)
	auth.POST("/forgot-password", h.forgotPassword)
	auth.POST("/reset-password", h.resetPassword)
	auth.POST("/logout", h.logout)
	auth.POST("/refresh", h.refresh, RequireAuth(d.Auth))
	auth.GET("/session", h.session)
	auth.POST("/change-password", h.changePassword, RequireAuth(d.Auth))

	e.GET("/api/v1/products", h.listProducts)
	e.GET("/api/v1/products/:id", h.getProduct)

	api := e.Group("/api/v1", RequireAuth(d.Auth))
	api.GET("/cart", h.cartItems)
	api.POST("/cart", h.cartAdd)
	api.PATCH("/cart/:id", h.cartUpdate)
	api.DELETE("/cart/:id", h.cartRemove)
	api.DELETE("/cart", h.cartClear)

	api.GET("/wishlist", h.wishlistItems)
	api.POST("/wishlist", h.wishlistAdd)
	api.DELETE("/wishlist/:id", h.wishlistRemove)
	api.POST("/wishlist/:id/move-to-cart", h.wishlistMove)

	api.POST("/orders", h.checkout)
	api.GET("/orders", h.listOrders)
	api.GET("/orders/:id", h.getOrder)
	api.POST("/orders/:id/cancel", h.cancelOrder)
	api.GET("/orders/:id/track", h.trackOrder)
	api.GET("/orders/:id/invoice", h.invoice)

	adm := e.Group("/api/v1/admin", RequireAuth(d.Auth), RequireAdmin(d.Auth))
	adm.GET("/orders", h.adminOrders)
	adm.PATCH("/orders/:id", h.adminUpdateOrder)
	adm.POST("/products", h.adminCreateProduct)
	adm.PATCH("/products/:id", h.adminUpdateProduct)
	adm.DELETE("/products/:id", h.adminDeleteProduct)
	adm.GET("/users", h.adminUsers)
	adm.PATCH("/users/:id/block", h.adminBlockUser)
	adm.PATCH("/users/:id/unblock", h.adminUnblockUser)
}
