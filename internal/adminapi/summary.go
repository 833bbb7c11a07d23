package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/nukesul/boody/internal/pricing"
	"github.com/nukesul/boody/internal/webserver"
	"github.com/nukesul/boody/pkg/common"
	"github.com/nukesul/boody/pkg/metrics"
)

func registerSummaryRoutes() {
	webserver.AdminGET("/summary/prices", priceSummary)
	webserver.AdminGET("/metrics/:name", metricsRange)
}

type priceSummaryView struct {
	CategoryID int64   `json:"category_id"`
	Category   string  `json:"category"`
	Products   int     `json:"products"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
}

// priceSummary aggregates base prices per category from the cached
// catalog.
func priceSummary(c echo.Context) error {
	cat, err := cstore.Snapshot()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "CATALOG_NOT_LOADED", "Catalog is not loaded yet", nil)
	}

	byCategory := map[int64][]float64{}
	for i := range cat.Products {
		p := &cat.Products[i]
		if !p.Purchasable() {
			continue
		}
		base := pricing.BasePrice(p, "")
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], base.InexactFloat64())
	}

	names := make(map[int64]string, len(cat.Categories))
	for _, cg := range cat.Categories {
		names[cg.ID] = cg.Name
	}

	views := make([]priceSummaryView, 0, len(byCategory))
	for _, cg := range cat.Categories {
		prices := byCategory[cg.ID]
		if len(prices) == 0 {
			continue
		}
		min, _ := stats.Min(prices)
		max, _ := stats.Max(prices)
		mean, _ := stats.Mean(prices)
		median, _ := stats.Median(prices)
		mean, _ = stats.Round(mean, 2)
		median, _ = stats.Round(median, 2)
		views = append(views, priceSummaryView{
			CategoryID: cg.ID,
			Category:   names[cg.ID],
			Products:   len(prices),
			Min:        min,
			Max:        max,
			Mean:       mean,
			Median:     median,
		})
	}
	return ok(c, views)
}

type metricPointView struct {
	Timestamp int64 `json:"timestamp"`
	Value     int64 `json:"value"`
}

// metricsRange reads one gauge or counter series from the embedded
// metrics store. Defaults to the last hour.
func metricsRange(c echo.Context) error {
	name := c.Param("name")
	end := time.Now()
	start := end.Add(-time.Hour)
	if s := c.QueryParam("start"); s != "" {
		if t, err := common.ParseTime(s); err == nil {
			start = t
		}
	}
	if s := c.QueryParam("end"); s != "" {
		if t, err := common.ParseTime(s); err == nil {
			end = t
		}
	}

	points, err := metrics.QueryRange(name, start.Unix(), end.Unix())
	if err != nil {
		return ok(c, []metricPointView{})
	}
	views := make([]metricPointView, 0, len(points))
	for _, p := range points {
		views = append(views, metricPointView{Timestamp: p.Timestamp, Value: int64(p.Value)})
	}
	return ok(c, views)
}
