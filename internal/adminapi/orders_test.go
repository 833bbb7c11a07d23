package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/webserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fakeOrderRepo records the window it was asked for and serves rows
// from memory the way the gorm repository would.
type fakeOrderRepo struct {
	rows      []domain.Order
	gotOffset int
	gotLimit  int
}

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) error {
	f.rows = append(f.rows, *order)
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context, _, _ time.Time, offset, limit int) ([]domain.Order, int64, error) {
	f.gotOffset, f.gotLimit = offset, limit
	total := int64(len(f.rows))
	rows := f.rows
	if limit > 0 {
		if offset > len(rows) {
			offset = len(rows)
		}
		end := offset + limit
		if end > len(rows) {
			end = len(rows)
		}
		rows = rows[offset:end]
	}
	return rows, total, nil
}

func testAdminServer(t *testing.T, repo *fakeOrderRepo) (*echo.Echo, string) {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Web.JwtSecret = "admin-test-secret"
	srv := webserver.Init(&cfg)
	Init(&cfg, nil, nil, repo)

	token, err := webserver.IssueAdminToken(cfg.Web.JwtSecret, "admin", "upstream-token")
	require.NoError(t, err)
	return srv.Echo(), token
}

func adminGet(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListOrdersPaginatesInRepository(t *testing.T) {
	repo := &fakeOrderRepo{}
	for i := 1; i <= 5; i++ {
		repo.rows = append(repo.rows, domain.Order{
			ID:     int64(i),
			Status: domain.OrderStatusSubmitted,
		})
	}
	e, token := testAdminServer(t, repo)

	rec := adminGet(e, "/admapi/orders?page=2&perPage=2", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// the window is pushed into the repository, not sliced afterwards
	assert.Equal(t, 2, repo.gotOffset)
	assert.Equal(t, 2, repo.gotLimit)

	var body struct {
		Data     []domain.Order `json:"data"`
		Total    int64          `json:"total"`
		Page     int            `json:"page"`
		PageSize int            `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, int64(3), body.Data[0].ID)
	assert.Equal(t, int64(5), body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.PageSize)
}

func TestExportOrdersFetchesFullRange(t *testing.T) {
	repo := &fakeOrderRepo{}
	for i := 1; i <= 3; i++ {
		repo.rows = append(repo.rows, domain.Order{ID: int64(i), Status: domain.OrderStatusSubmitted})
	}
	e, token := testAdminServer(t, repo)

	rec := adminGet(e, "/admapi/orders/export", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, repo.gotLimit)
	for i := 1; i <= 3; i++ {
		assert.Contains(t, rec.Body.String(), fmt.Sprintf("%d,%s", i, domain.OrderStatusSubmitted))
	}
}

func TestOrdersRequireValidToken(t *testing.T) {
	e, _ := testAdminServer(t, &fakeOrderRepo{})

	forged, err := webserver.IssueAdminToken("other-secret", "admin", "upstream-token")
	require.NoError(t, err)

	rec := adminGet(e, "/admapi/orders", forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
