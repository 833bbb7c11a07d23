package storeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/pricing"
	"github.com/nukesul/boody/internal/webserver"
)

func registerCatalogRoutes() {
	webserver.ApiGET("/catalog", getCatalog)
	webserver.ApiGET("/branches/:id/products", listBranchProducts)
	webserver.ApiGET("/stories", listStories)
	webserver.PubGET("/product-image/:key", getProductImage)
}

// productView decorates a product with its discounted price range for
// the listing grid.
type productView struct {
	domain.Product
	DiscountPercent float64 `json:"discount_percent"`
	PriceMin        string  `json:"price_min"`
	PriceMax        string  `json:"price_max"`
}

func toView(p domain.Product, discounts []domain.Discount) productView {
	min, max := pricing.PriceRange(&p, discounts)
	return productView{
		Product:         p,
		DiscountPercent: pricing.CatalogDiscountPercent(discounts, p.ID),
		PriceMin:        pricing.FormatPrice(min),
		PriceMax:        pricing.FormatPrice(max),
	}
}

// getCatalog returns the whole storefront snapshot in one shot, the
// way the landing page loads it.
func getCatalog(c echo.Context) error {
	cat, err := cstore.Snapshot()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "CATALOG_NOT_LOADED", "Catalog is not loaded yet", err.Error())
	}

	views := make([]productView, 0, len(cat.Products))
	for _, p := range cat.Products {
		views = append(views, toView(p, cat.Discounts))
	}

	return ok(c, map[string]interface{}{
		"branches":      cat.Branches,
		"categories":    cat.Categories,
		"subcategories": cat.Subcategories,
		"products":      views,
		"discounts":     cat.Discounts,
		"stories":       cat.Stories,
	})
}

func listBranchProducts(c echo.Context) error {
	branchID := cast.ToInt64(c.Param("id"))
	if branchID <= 0 {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid branch ID", nil)
	}
	if _, err := cstore.Branch(branchID); err != nil {
		return fail(c, http.StatusNotFound, "BRANCH_NOT_FOUND", "Branch not found", nil)
	}

	categoryID := cast.ToInt64(c.QueryParam("category"))
	products := cstore.BranchProducts(branchID, categoryID)
	discounts := cstore.Discounts()

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p, discounts))
	}
	return ok(c, views)
}

func listStories(c echo.Context) error {
	cat, err := cstore.Snapshot()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "CATALOG_NOT_LOADED", "Catalog is not loaded yet", err.Error())
	}
	return ok(c, cat.Stories)
}

// getProductImage proxies one image from the upstream store. Keys that
// arrive with the legacy bucket prefix are normalized first.
func getProductImage(c echo.Context) error {
	key := c.Param("key")
	if idx := strings.Index(key, "boody-images/"); idx >= 0 {
		key = key[idx+len("boody-images/"):]
	}
	data, ctype, err := client.ProductImage(c.Request().Context(), key)
	if err != nil {
		return fail(c, http.StatusBadGateway, "IMAGE_ERROR", "Unable to load image", err.Error())
	}
	return c.Blob(http.StatusOK, ctype, data)
}
