package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nukesul/boody/internal/webserver"
)

func registerAuthRoutes() {
	// login sits outside the JWT group
	webserver.PubPOST("/admin/login", adminLogin)
	webserver.AdminGET("/session", adminSession)
}

type adminLoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// adminLogin verifies credentials upstream and returns a gateway JWT
// that wraps the upstream bearer token. Later admin calls carry only
// the gateway token; the upstream one never reaches the browser.
func adminLogin(c echo.Context) error {
	var payload adminLoginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", err.Error())
	}
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	result, err := client.AdminLogin(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		zap.L().Info("admin login rejected", zap.String("username", payload.Username))
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Invalid username or password", nil)
	}

	token, err := webserver.IssueAdminToken(appCfg.Web.JwtSecret, payload.Username, result.Token)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Unable to issue session token", err.Error())
	}
	zap.L().Info("admin login", zap.String("username", payload.Username))
	return ok(c, map[string]interface{}{
		"token":    token,
		"username": payload.Username,
	})
}

func adminSession(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"username": webserver.AdminUsername(c),
	})
}
