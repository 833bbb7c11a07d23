package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/webserver"
	"github.com/nukesul/boody/pkg/common"
)

func registerOrderRoutes() {
	webserver.AdminGET("/orders", listOrders)
	webserver.AdminGET("/orders/export", exportOrders)
}

// orderRange reads the optional start/end query params. Zero times
// mean an open bound.
func orderRange(c echo.Context) (from, to time.Time) {
	if s := c.QueryParam("start"); s != "" {
		if t, err := common.ParseTime(s); err == nil {
			from = t
		}
	}
	if s := c.QueryParam("end"); s != "" {
		if t, err := common.ParseTime(s); err == nil {
			to = t
		}
	}
	return from, to
}

func listOrders(c echo.Context) error {
	from, to := orderRange(c)
	page, pageSize := parsePagination(c)
	rows, total, err := orders.List(c.Request().Context(), from, to, (page-1)*pageSize, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func exportOrders(c echo.Context) error {
	from, to := orderRange(c)
	rows, _, err := orders.List(c.Request().Context(), from, to, 0, 0)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	switch c.QueryParam("format") {
	case "xlsx":
		return exportOrdersXlsx(c, rows)
	default:
		return exportOrdersCsv(c, rows)
	}
}

func exportOrdersCsv(c echo.Context, rows []domain.Order) error {
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to encode orders", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

var orderSheetHeader = []string{"ID", "Status", "Delivery", "Delivery cost", "Promo code", "Promo %", "Subtotal", "Total", "Created"}

func exportOrdersXlsx(c echo.Context, rows []domain.Order) error {
	const sheet = "Sheet1"
	f := excelize.NewFile()

	for col, title := range orderSheetHeader {
		f.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+col), title)
	}
	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.Status,
			row.DeliveryOption,
			row.DeliveryCost.InexactFloat64(),
			row.PromoCode,
			row.PromoPercent,
			row.Subtotal.InexactFloat64(),
			row.Total.InexactFloat64(),
			row.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			f.SetCellValue(sheet, fmt.Sprintf("%c%d", 'A'+col, i+2), v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to encode orders", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
