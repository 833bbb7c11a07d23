package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nukesul/boody/internal/cart"
	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/checkout"
	"github.com/nukesul/boody/internal/webserver"
)

// Storefront handlers. Everything here is scoped to the cookie
// session; there is no authentication.

var (
	client    *catalog.Client
	cstore    *catalog.Store
	cartStore *cart.Store
	flow      *checkout.Flow
)

// Init wires the handler dependencies and registers all storefront
// routes.
func Init(cl *catalog.Client, cs *catalog.Store, crt *cart.Store, f *checkout.Flow) {
	client = cl
	cstore = cs
	cartStore = crt
	flow = f

	registerCatalogRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
	registerStoryViewerRoutes()
	registerAuthRoutes()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

// sessionID resolves the storefront session or fails the request. The
// error is non-nil whenever the failure response was written, so a
// handler that sees it must stop: nothing may mutate state under an
// unresolved session id.
func sessionID(c echo.Context) (string, error) {
	sid, err := webserver.SessionID(c)
	if err != nil {
		_ = fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Unable to resolve session", err.Error())
		return "", errors.Wrap(err, "resolve session")
	}
	return sid, nil
}
