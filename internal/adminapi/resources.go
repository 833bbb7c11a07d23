package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/webserver"
)

// Plain JSON resources share one CRUD proxy; products and stories are
// handled separately because their writes are multipart.

func registerResourceRoutes() {
	registerJSONResource("branches", func() interface{} { return &[]domain.Branch{} })
	registerJSONResource("categories", func() interface{} { return &[]domain.Category{} })
	registerJSONResource("subcategories", func() interface{} { return &[]domain.Subcategory{} })
	registerJSONResource("discounts", func() interface{} { return &[]domain.Discount{} })
	registerJSONResource("promo-codes", func() interface{} { return &[]domain.PromoCode{} })
}

func registerJSONResource(resource string, newList func() interface{}) {
	webserver.AdminGET("/"+resource, listResource(resource, newList))
	webserver.AdminPOST("/"+resource, createResource(resource))
	webserver.AdminPUT("/"+resource+"/:id", updateResource(resource))
	webserver.AdminDELETE("/"+resource+"/:id", deleteResource(resource))
}

func listResource(resource string, newList func() interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		out := newList()
		if err := client.AdminList(c.Request().Context(), remoteToken(c), resource, out); err != nil {
			return failUpstream(c, err)
		}
		return ok(c, out)
	}
}

func createResource(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload map[string]interface{}
		if err := c.Bind(&payload); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payload", err.Error())
		}
		var out map[string]interface{}
		if err := client.CreateJSON(c.Request().Context(), remoteToken(c), resource, payload, &out); err != nil {
			return failUpstream(c, err)
		}
		return ok(c, out)
	}
}

func updateResource(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseIDParam(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid resource ID", nil)
		}
		var payload map[string]interface{}
		if err := c.Bind(&payload); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payload", err.Error())
		}
		var out map[string]interface{}
		if err := client.UpdateJSON(c.Request().Context(), remoteToken(c), resource, id, payload, &out); err != nil {
			return failUpstream(c, err)
		}
		return ok(c, out)
	}
}

func deleteResource(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseIDParam(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid resource ID", nil)
		}
		if err := client.Delete(c.Request().Context(), remoteToken(c), resource, id); err != nil {
			return failUpstream(c, err)
		}
		return ok(c, map[string]interface{}{"deleted": id})
	}
}
