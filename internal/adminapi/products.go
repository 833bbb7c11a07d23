package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/webserver"
)

type productForm struct {
	Name          string   `form:"name"`
	Description   string   `form:"description"`
	BranchID      *int64   `form:"branch_id"`
	CategoryID    *int64   `form:"category_id"`
	SubcategoryID *int64   `form:"sub_category_id"`
	PriceSmall    *float64 `form:"price_small"`
	PriceMedium   *float64 `form:"price_medium"`
	PriceLarge    *float64 `form:"price_large"`
	PriceSingle   *float64 `form:"price_single"`
}

func registerProductRoutes() {
	webserver.AdminGET("/products", listProducts)
	webserver.AdminPOST("/products", createProduct)
	webserver.AdminPUT("/products/:id", updateProduct)
	webserver.AdminDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	var out []domain.Product
	if err := client.AdminList(c.Request().Context(), remoteToken(c), "products", &out); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, out)
}

func createProduct(c echo.Context) error {
	var form productForm
	if err := c.Bind(&form); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Product name is required", nil)
	}
	if form.CategoryID == nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category is required", nil)
	}

	fields, err := formFields(&form)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to encode product", err.Error())
	}
	file, err := readUpload(c, "image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err.Error())
	}

	var out domain.Product
	if err := client.CreateMultipart(c.Request().Context(), remoteToken(c), "products", fields, file, &out); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, out)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var form productForm
	if err := c.Bind(&form); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}

	fields, err := formFields(&form)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to encode product", err.Error())
	}
	file, err := readUpload(c, "image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err.Error())
	}

	var out domain.Product
	if err := client.UpdateMultipart(c.Request().Context(), remoteToken(c), "products", id, fields, file, &out); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, out)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := client.Delete(c.Request().Context(), remoteToken(c), "products", id); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, map[string]interface{}{"deleted": id})
}
