package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/checkout"
	"github.com/nukesul/boody/internal/webserver"
)

// Admin panel endpoints. Catalog writes are proxied upstream with the
// operator's bearer token; order exports and price summaries are
// served from the gateway's own data.

var (
	appCfg *config.AppConfig
	client *catalog.Client
	cstore *catalog.Store
	orders checkout.OrderRepository
)

// Init wires the admin handler dependencies and registers all admin
// routes.
func Init(cfg *config.AppConfig, cl *catalog.Client, cs *catalog.Store, ord checkout.OrderRepository) {
	appCfg = cfg
	client = cl
	cstore = cs
	orders = ord

	registerAuthRoutes()
	registerResourceRoutes()
	registerProductRoutes()
	registerStoryRoutes()
	registerOrderRoutes()
	registerSummaryRoutes()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// parsePagination reads page/perPage query params with sane bounds.
func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = 20
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

// failUpstream maps a proxied mutation error onto the response,
// keeping the upstream status and body so the panel can show them.
func failUpstream(c echo.Context, err error) error {
	var merr *catalog.MutationError
	if errors.As(err, &merr) {
		return fail(c, merr.Status, "UPSTREAM_REJECTED", "Upstream rejected the request", merr.Body)
	}
	return fail(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Upstream request failed", err.Error())
}

func parseIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// remoteToken pulls the upstream bearer token out of the admin JWT.
func remoteToken(c echo.Context) string {
	return webserver.RemoteToken(c)
}
