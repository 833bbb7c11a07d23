package webserver

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/nukesul/boody/pkg/common"
)

const (
	sessionName = "boody_session"
	sessionKey  = "sid"
)

// SessionID resolves the storefront session for a request, creating
// one on first contact. The id scopes the server-synced cart and the
// checkout state; there is no module-global user.
func SessionID(c echo.Context) (string, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", err
	}
	if sid, ok := sess.Values[sessionKey].(string); ok && sid != "" {
		return sid, nil
	}

	sid := common.UUID()
	sess.Values[sessionKey] = sid
	sess.Options.Path = "/"
	sess.Options.HttpOnly = true
	sess.Options.MaxAge = 86400 * 7
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", err
	}
	return sid, nil
}
