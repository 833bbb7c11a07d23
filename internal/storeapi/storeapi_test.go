package storeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/cart"
	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/checkout"
	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/stories"
	"github.com/nukesul/boody/internal/webserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// memRepository keeps cart lines in memory for handler tests.
type memRepository struct {
	items []domain.CartItem
	seq   time.Time
}

func newMemRepository() *memRepository {
	return &memRepository{seq: time.Now()}
}

func (m *memRepository) List(_ context.Context, sessionID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, it := range m.items {
		if it.SessionID == sessionID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memRepository) Save(_ context.Context, item *domain.CartItem) error {
	m.seq = m.seq.Add(time.Millisecond)
	item.CreatedAt = m.seq
	item.UpdatedAt = m.seq
	m.items = append(m.items, *item)
	return nil
}

func (m *memRepository) UpdateQuantity(_ context.Context, id int64, quantity int) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Quantity = quantity
			return nil
		}
	}
	return cart.ErrLineNotFound
}

func (m *memRepository) Delete(_ context.Context, id int64) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return cart.ErrLineNotFound
}

func (m *memRepository) Clear(_ context.Context, sessionID string) error {
	var kept []domain.CartItem
	for _, it := range m.items {
		if it.SessionID != sessionID {
			kept = append(kept, it)
		}
	}
	m.items = kept
	return nil
}

func (m *memRepository) DeleteStale(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeChecker struct {
	codes map[string]float64
}

func (f *fakeChecker) CheckPromoCode(_ context.Context, code string) (*domain.PromoInfo, error) {
	pct, ok := f.codes[code]
	if !ok {
		return nil, catalog.ErrPromoInvalid
	}
	return &domain.PromoInfo{Code: code, DiscountPercent: pct}, nil
}

type fakeSubmitter struct {
	calls []*catalog.OrderRequest
}

func (f *fakeSubmitter) SubmitOrder(_ context.Context, req *catalog.OrderRequest) error {
	f.calls = append(f.calls, req)
	return nil
}

func fp(v float64) *float64 { return &v }

type serverEnv struct {
	e         *echo.Echo
	repo      *memRepository
	submitter *fakeSubmitter
}

// testServer boots a full router with the storefront routes registered
// and in-memory backends behind them.
func testServer(t *testing.T, sessionSecret string) *serverEnv {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Web.SessionSecret = sessionSecret
	srv := webserver.Init(&cfg)

	cstore := catalog.NewStore(nil)
	cstore.Override(&domain.Catalog{
		Products: []domain.Product{
			{ID: 1, Name: "Pepperoni", BranchID: 1, CategoryID: 1,
				PriceSmall: fp(450), PriceMedium: fp(550), PriceLarge: fp(650)},
			{ID: 2, Name: "Cola", BranchID: 1, CategoryID: 2, PriceSingle: fp(120)},
			{ID: 3, Name: "Margherita", BranchID: 1, CategoryID: 1, PriceSingle: fp(450)},
		},
		Discounts: []domain.Discount{{ID: 1, ProductID: 3, DiscountPercent: 10}},
		Stories:   []domain.Story{{ID: 1}, {ID: 2}},
	})

	repo := newMemRepository()
	cartStore := cart.NewStore(repo, cstore)
	checker := &fakeChecker{codes: map[string]float64{"SAVE10": 10}}
	submitter := &fakeSubmitter{}
	flow := checkout.NewFlow(cartStore, checker, submitter, nil, EventBus.New(), 200)

	Init(nil, cstore, cartStore, flow)
	return &serverEnv{e: srv.Echo(), repo: repo, submitter: submitter}
}

func (s *serverEnv) do(method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type cartEnvelope struct {
	Data cartView `json:"data"`
}

type totalsEnvelope struct {
	Data totalsView `json:"data"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func sessionCookies(t *testing.T, rec *httptest.ResponseRecorder) []*http.Cookie {
	t.Helper()
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "first contact must issue a session cookie")
	return cookies
}

func TestSessionCookieIssuedOnFirstContact(t *testing.T) {
	env := testServer(t, "storefront-secret")

	rec := env.do(http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "boody_session" && ck.Value != "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCartRoundTrip(t *testing.T) {
	env := testServer(t, "storefront-secret")

	// product 3: 450 with a 10% catalog discount -> unit 405
	rec := env.do(http.MethodPost, "/api/cart/items", `{"product_id":3}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := sessionCookies(t, rec)

	rec = env.do(http.MethodGet, "/api/cart", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var view cartEnvelope
	decodeBody(t, rec, &view)
	require.Len(t, view.Data.Lines, 1)
	assert.Equal(t, "405.00", view.Data.Lines[0].UnitPrice)
	assert.Equal(t, "405.00", view.Data.Subtotal)

	rec = env.do(http.MethodPut, "/api/cart/items/0", `{"quantity":3}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &view)
	require.Len(t, view.Data.Lines, 1)
	assert.Equal(t, 3, view.Data.Lines[0].Quantity)
	assert.Equal(t, "1 215.00", view.Data.Subtotal)

	rec = env.do(http.MethodDelete, "/api/cart/items/0", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &view)
	assert.Empty(t, view.Data.Lines)
}

func TestCartsAreSessionScoped(t *testing.T) {
	env := testServer(t, "storefront-secret")

	rec := env.do(http.MethodPost, "/api/cart/items", `{"product_id":2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := sessionCookies(t, rec)

	// a fresh browser gets its own empty cart
	rec = env.do(http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view cartEnvelope
	decodeBody(t, rec, &view)
	assert.Empty(t, view.Data.Lines)

	rec = env.do(http.MethodGet, "/api/cart", "", first)
	decodeBody(t, rec, &view)
	assert.Len(t, view.Data.Lines, 1)
}

func TestUndecodableSessionStopsMutations(t *testing.T) {
	env := testServer(t, "secret-one")
	rec := env.do(http.MethodGet, "/api/cart", "", nil)
	cookies := sessionCookies(t, rec)

	// rotate the session secret: the old cookie no longer authenticates
	env2 := testServer(t, "secret-two")
	rec = env2.do(http.MethodPost, "/api/cart/items", `{"product_id":3}`, cookies)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "SESSION_ERROR", body.Code)
	// nothing may be written under an unresolved session id
	assert.Empty(t, env2.repo.items)
}

func TestPromoErrorMapping(t *testing.T) {
	env := testServer(t, "storefront-secret")

	rec := env.do(http.MethodPost, "/api/cart/items", `{"product_id":3}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := sessionCookies(t, rec)

	rec = env.do(http.MethodPost, "/api/checkout/promo", `{"code":"BOGUS"}`, cookies)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "PROMO_INVALID", body.Code)

	rec = env.do(http.MethodPost, "/api/checkout/promo", `{"code":"  "}`, cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decodeBody(t, rec, &body)
	assert.Equal(t, "INVALID_REQUEST", body.Code)

	// 450 * 0.9 subtotal, then the promo once: 405 * 0.9 = 364.50
	rec = env.do(http.MethodPost, "/api/checkout/promo", `{"code":"SAVE10"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var totals totalsEnvelope
	decodeBody(t, rec, &totals)
	assert.Equal(t, "405.00", totals.Data.Subtotal)
	assert.Equal(t, "364.50", totals.Data.Total)
}

func TestPlaceOrderEmptyCartRejected(t *testing.T) {
	env := testServer(t, "storefront-secret")

	rec := env.do(http.MethodGet, "/api/cart", "", nil)
	cookies := sessionCookies(t, rec)

	rec = env.do(http.MethodPost, "/api/checkout/order", "", cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "EMPTY_CART", body.Code)
	assert.Empty(t, env.submitter.calls)
}

func TestClosedViewersArePruned(t *testing.T) {
	playersMu.Lock()
	players = map[string]*stories.Player{}
	playersMu.Unlock()

	closed := stories.NewPlayer(time.Hour, nil)
	closed.Open([]domain.Story{{ID: 1}})
	closed.Close()
	playersMu.Lock()
	players["gone"] = closed
	playersMu.Unlock()

	_ = sessionPlayer("here")

	playersMu.Lock()
	_, staleKept := players["gone"]
	_, freshKept := players["here"]
	playersMu.Unlock()
	assert.False(t, staleKept)
	assert.True(t, freshKept)
}
