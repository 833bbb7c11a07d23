package storeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/checkout"
	"github.com/nukesul/boody/internal/pricing"
	"github.com/nukesul/boody/internal/webserver"
)

func registerCheckoutRoutes() {
	webserver.ApiPOST("/checkout/open", openCheckout)
	webserver.ApiPOST("/checkout/back", backToCart)
	webserver.ApiPOST("/checkout/promo", applyPromo)
	webserver.ApiPOST("/checkout/delivery", setDelivery)
	webserver.ApiGET("/checkout/totals", getTotals)
	webserver.ApiPOST("/checkout/order", placeOrder)
}

func openCheckout(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := flow.OpenCheckout(sid); err != nil {
		return fail(c, http.StatusConflict, "INVALID_STATE", "Open the cart before checking out", nil)
	}
	return renderTotals(c, sid)
}

func backToCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := flow.Back(sid); err != nil {
		return fail(c, http.StatusConflict, "INVALID_STATE", "Checkout is not open", nil)
	}
	return renderCart(c, sid)
}

type promoPayload struct {
	Code string `json:"code"`
}

func applyPromo(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var payload promoPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse promo code", err.Error())
	}
	payload.Code = strings.TrimSpace(payload.Code)
	if payload.Code == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Promo code is required", nil)
	}

	if _, err := flow.ApplyPromoCode(c.Request().Context(), sid, payload.Code); err != nil {
		if errors.Is(err, catalog.ErrPromoInvalid) {
			return fail(c, http.StatusUnprocessableEntity, "PROMO_INVALID", "Promo code is invalid or expired", nil)
		}
		return fail(c, http.StatusBadGateway, "PROMO_CHECK_FAILED", "Unable to verify promo code", err.Error())
	}
	return renderTotals(c, sid)
}

type deliveryPayload struct {
	Option string `json:"option"`
}

func setDelivery(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var payload deliveryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse delivery option", err.Error())
	}
	if err := flow.SetDeliveryOption(sid, payload.Option); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DELIVERY", "Delivery option must be pickup or delivery", nil)
	}
	return renderTotals(c, sid)
}

type totalsView struct {
	Subtotal     string  `json:"subtotal"`
	PromoCode    string  `json:"promo_code,omitempty"`
	PromoPercent float64 `json:"promo_percent,omitempty"`
	DeliveryCost string  `json:"delivery_cost"`
	Total        string  `json:"total"`
	State        string  `json:"state"`
}

func renderTotals(c echo.Context, sid string) error {
	totals, err := flow.Totals(c.Request().Context(), sid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "CHECKOUT_ERROR", "Unable to compute totals", err.Error())
	}
	return ok(c, totalsView{
		Subtotal:     pricing.FormatPrice(totals.Subtotal),
		PromoCode:    totals.PromoCode,
		PromoPercent: totals.PromoPercent,
		DeliveryCost: pricing.FormatPrice(totals.DeliveryCost),
		Total:        pricing.FormatPrice(totals.Total),
		State:        string(flow.SessionState(sid)),
	})
}

func getTotals(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	return renderTotals(c, sid)
}

func placeOrder(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	order, err := flow.PlaceOrder(c.Request().Context(), sid)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	case err != nil:
		return fail(c, http.StatusBadGateway, "ORDER_FAILED", "Order submission failed, your cart is untouched", err.Error())
	}
	return ok(c, map[string]interface{}{
		"order_id": order.ID,
		"total":    pricing.FormatPrice(order.Total),
		"status":   order.Status,
	})
}
