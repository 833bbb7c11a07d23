package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nukesul/boody/internal/webserver"
)

func registerAuthRoutes() {
	webserver.ApiPOST("/login", loginUser)
	webserver.ApiPOST("/register", registerUser)
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p credentialsPayload) validate() string {
	if p.Username == "" || p.Password == "" {
		return "Username and password are required"
	}
	return ""
}

// loginUser proxies storefront sign-in upstream; the resulting token is
// handed to the caller unchanged. The cart session is a separate cookie
// and keeps working whether or not the user is signed in.
func loginUser(c echo.Context) error {
	var payload credentialsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", err.Error())
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	result, err := client.Login(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Invalid username or password", nil)
	}
	return ok(c, result)
}

func registerUser(c echo.Context) error {
	var payload credentialsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", err.Error())
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	result, err := client.Register(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REGISTER_FAILED", "Unable to create account", err.Error())
	}
	return ok(c, result)
}
