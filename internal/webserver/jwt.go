package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// The gateway does not verify upstream credentials itself. After a
// successful proxied /admin/login it issues its own JWT carrying the
// upstream bearer token; admin handlers pull that token back out and
// forward it on every upstream call.

const adminTokenTTL = 12 * time.Hour

type AdminClaims struct {
	Username string `json:"username"`
	ApiToken string `json:"api_token"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs a gateway admin JWT wrapping the upstream
// token.
func IssueAdminToken(secret, username, apiToken string) (string, error) {
	claims := &AdminClaims{
		Username: username,
		ApiToken: apiToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(adminTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseAdminToken(secret string) func(c echo.Context, auth string) (interface{}, error) {
	return func(c echo.Context, auth string) (interface{}, error) {
		token, err := jwt.ParseWithClaims(auth, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			return nil, err
		}
		if !token.Valid {
			return nil, errors.New("invalid admin token")
		}
		return token, nil
	}
}

// RemoteToken extracts the upstream bearer token stored in the admin
// JWT. Empty when the request carries no valid token.
func RemoteToken(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return ""
	}
	return claims.ApiToken
}

// AdminUsername returns the logged-in operator name from the token.
func AdminUsername(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return ""
	}
	return claims.Username
}
