package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/nukesul/boody/internal/cart"
	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/pricing"
	"github.com/nukesul/boody/internal/webserver"
)

func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart)
	webserver.ApiPOST("/cart/items", addCartItem)
	webserver.ApiPUT("/cart/items/:index", updateCartItem)
	webserver.ApiDELETE("/cart/items/:index", removeCartItem)
	webserver.ApiPOST("/cart/open", openCart)
}

type cartView struct {
	Lines    []cartLineView `json:"lines"`
	Subtotal string         `json:"subtotal"`
}

type cartLineView struct {
	domain.CartItem
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

func renderCart(c echo.Context, sessionID string) error {
	lines, err := cartStore.Lines(c.Request().Context(), sessionID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "CART_ERROR", "Unable to load cart", err.Error())
	}
	view := cartView{
		Lines:    make([]cartLineView, 0, len(lines)),
		Subtotal: pricing.FormatPrice(cart.SubtotalOf(lines)),
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, cartLineView{
			CartItem:  line,
			UnitPrice: pricing.FormatPrice(line.FinalPrice),
			LineTotal: pricing.FormatPrice(line.LineTotal()),
		})
	}
	return ok(c, view)
}

func getCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	return renderCart(c, sid)
}

type addItemPayload struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
}

func addCartItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}

	_, err = cartStore.Add(c.Request().Context(), sid, payload.ProductID, domain.SizeTag(payload.Size))
	switch {
	case errors.Is(err, cart.ErrInvalidSize), errors.Is(err, cart.ErrNotPurchasable):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case err != nil:
		return fail(c, http.StatusBadRequest, "ADD_FAILED", "Unable to add product", err.Error())
	}
	return renderCart(c, sid)
}

type updateItemPayload struct {
	Quantity int `json:"quantity"`
}

func updateCartItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	index := cast.ToInt(c.Param("index"))
	var payload updateItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity", err.Error())
	}

	err = cartStore.SetQuantity(c.Request().Context(), sid, index, payload.Quantity)
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be at least 1", nil)
	case errors.Is(err, cart.ErrLineNotFound):
		return fail(c, http.StatusNotFound, "LINE_NOT_FOUND", "No cart line at that position", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "CART_ERROR", "Unable to update cart", err.Error())
	}
	return renderCart(c, sid)
}

func removeCartItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	index := cast.ToInt(c.Param("index"))
	err = cartStore.Remove(c.Request().Context(), sid, index)
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		return fail(c, http.StatusNotFound, "LINE_NOT_FOUND", "No cart line at that position", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "CART_ERROR", "Unable to update cart", err.Error())
	}
	return renderCart(c, sid)
}

func openCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := flow.OpenCart(sid); err != nil {
		return fail(c, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	}
	return renderCart(c, sid)
}
