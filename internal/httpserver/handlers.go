package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/admin"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/shop"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
)

type handlers struct {
	deps *Deps
}

// httpError maps a normalized pipeline failure onto this server's response.
// A request that never reached the backend is a bad gateway, not our 500.
func httpError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == 0 {
			return echo.NewHTTPError(http.StatusBadGateway, "backend unreachable")
		}
		return echo.NewHTTPError(apiErr.Status, echo.Map{
			"code":    apiErr.Code,
			"message": apiErr.Message,
			"details": apiErr.Details,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	return page, size
}

// ---- auth ----

func (h *handlers) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res := h.deps.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if !res.Success {
		return c.JSON(loginFailureStatus(res.Code), res)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": h.deps.Auth.Current().User})
}

// loginFailureStatus maps the failure class back onto a status: local
// validation is the caller's fault, a blocked account is forbidden,
// everything else is bad credentials.
func loginFailureStatus(code string) int {
	switch code {
	case "validation":
		return http.StatusBadRequest
	case api.CodeUserBlocked:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

func (h *handlers) signup(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res := h.deps.Auth.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	return c.JSON(resultStatus(res.Success, http.StatusBadRequest), res)
}

func (h *handlers) verifyOTP(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res := h.deps.Auth.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	return c.JSON(resultStatus(res.Success, http.StatusBadRequest), res)
}

func (h *handlers) resendVerification(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res := h.deps.Auth.ResendVerification(c.Request().Context(), req.Email)
	return c.JSON(resultStatus(res.Success, http.StatusBadRequest), res)
}

func (h *handlers) forgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res := h.deps.Auth.ForgotPassword(c.Request().Context(), req.Email)
	return c.JSON(resultStatus(res.Success, http.StatusBadRequest), res)
}

func (h *handlers) resetPassword(c echo.Context) error {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res := h.deps.Auth.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword)
	return c.JSON(resultStatus(res.Success, http.StatusBadRequest), res)
}

func (h *handlers) changePassword(c echo.Context) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res := h.deps.Auth.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword)
	return c.JSON(resultStatus(res.Success, http.StatusBadRequest), res)
}

func (h *handlers) refresh(c echo.Context) error {
	if err := h.deps.Auth.Refresh(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "token refreshed"})
}

func (h *handlers) logout(c echo.Context) error {
	h.deps.Auth.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *handlers) session(c echo.Context) error {
	snap := h.deps.Auth.Current()
	return c.JSON(http.StatusOK, echo.Map{
		"user":     snap.User,
		"is_admin": snap.IsAdmin,
		"loading":  snap.Loading,
	})
}

func resultStatus(success bool, failStatus int) int {
	if success {
		return http.StatusOK
	}
	return failStatus
}

// ---- catalog ----

func (h *handlers) listProducts(c echo.Context) error {
	page, size := pageParams(c)
	products, err := h.deps.Catalog.List(c.Request().Context(), page, size, c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *handlers) getProduct(c echo.Context) error {
	product, err := h.deps.Catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

// ---- cart ----

func (h *handlers) cartItems(c echo.Context) error {
	items, err := h.deps.Cart.Items(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *handlers) cartAdd(c echo.Context) error {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.deps.Cart.Add(c.Request().Context(), req.ProductID, req.Quantity); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *handlers) cartUpdate(c echo.Context) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.deps.Cart.UpdateQuantity(c.Request().Context(), c.Param("id"), req.Quantity); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handlers) cartRemove(c echo.Context) error {
	if err := h.deps.Cart.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handlers) cartClear(c echo.Context) error {
	if err := h.deps.Cart.Clear(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

// ---- wishlist ----

func (h *handlers) wishlistItems(c echo.Context) error {
	items, err := h.deps.Wishlist.Items(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *handlers) wishlistAdd(c echo.Context) error {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.deps.Wishlist.Add(c.Request().Context(), req.ProductID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *handlers) wishlistRemove(c echo.Context) error {
	if err := h.deps.Wishlist.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handlers) wishlistMove(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.deps.Wishlist.Items(ctx)
	if err != nil {
		return httpError(err)
	}
	for _, item := range items {
		if item.ID == c.Param("id") {
			if err := h.deps.Wishlist.MoveToCart(ctx, item); err != nil {
				return httpError(err)
			}
			return c.NoContent(http.StatusOK)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "wishlist item not found")
}

// ---- orders ----

func (h *handlers) checkout(c echo.Context) error {
	var req shop.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	order, err := h.deps.Orders.Checkout(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *handlers) listOrders(c echo.Context) error {
	page, size := pageParams(c)
	orders, err := h.deps.Orders.List(c.Request().Context(), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *handlers) getOrder(c echo.Context) error {
	order, err := h.deps.Orders.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *handlers) cancelOrder(c echo.Context) error {
	if err := h.deps.Orders.Cancel(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handlers) trackOrder(c echo.Context) error {
	events, err := h.deps.Orders.Track(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *handlers) invoice(c echo.Context) error {
	ctx := c.Request().Context()
	order, err := h.deps.Orders.Get(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	doc, err := h.deps.Invoices.Render(order, currentUser(c))
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}

// ---- admin ----

func (h *handlers) adminOrders(c echo.Context) error {
	page, size := pageParams(c)
	orders, err := h.deps.Admin.Orders(c.Request().Context(), c.QueryParam("status"), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *handlers) adminUpdateOrder(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	order, err := h.deps.Admin.UpdateOrderStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *handlers) adminCreateProduct(c echo.Context) error {
	var in admin.ProductInput
	if err := c.Bind(&in); err != nil || in.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	product, err := h.deps.Admin.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *handlers) adminUpdateProduct(c echo.Context) error {
	var in admin.ProductInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	product, err := h.deps.Admin.UpdateProduct(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *handlers) adminDeleteProduct(c echo.Context) error {
	if err := h.deps.Admin.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handlers) adminUsers(c echo.Context) error {
	page, size := pageParams(c)
	users, err := h.deps.Admin.Users(c.Request().Context(), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *handlers) adminBlockUser(c echo.Context) error {
	if err := h.deps.Admin.BlockUser(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handlers) adminUnblockUser(c echo.Context) error {
	if err := h.deps.Admin.UnblockUser(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}
