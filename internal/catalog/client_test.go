package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nukesul/boody/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.RemoteConfig{BaseURL: srv.URL, Timeout: 5})
}

func catalogStub() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/branches", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Center","address":"Chuy 1","phone":"555"}]`))
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":2,"name":"Pizza"}]`))
	})
	mux.HandleFunc("/subcategories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		// upstream sends numeric columns as strings
		_, _ = w.Write([]byte(`[{"id":7,"name":"Pepperoni","branch_id":1,"category_id":2,` +
			`"price_small":"450","price_medium":"550","price_large":"650"}]`))
	})
	mux.HandleFunc("/discounts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"product_id":7,"discount_percent":10}]`))
	})
	mux.HandleFunc("/stories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"image":"boody-images/story1.jpg"}]`))
	})
	return mux
}

func TestFetchAll(t *testing.T) {
	client := testClient(t, catalogStub())

	cat, err := client.FetchAll(context.Background())
	require.NoError(t, err)

	require.Len(t, cat.Products, 1)
	p := cat.Products[0]
	assert.Equal(t, "Pepperoni", p.Name)
	require.NotNil(t, p.PriceSmall)
	assert.InDelta(t, 450, *p.PriceSmall, 0.001)
	require.NotNil(t, p.PriceLarge)
	assert.InDelta(t, 650, *p.PriceLarge, 0.001)
	assert.Nil(t, p.PriceSingle)
	assert.True(t, p.MultiSize())

	assert.Len(t, cat.Branches, 1)
	assert.Len(t, cat.Categories, 1)
	assert.Len(t, cat.Discounts, 1)
	assert.Len(t, cat.Stories, 1)
}

func TestFetchAllNamesFailedResource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/discounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := testClient(t, mux)

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load discounts")
}

func TestCheckPromoCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/promo-codes/check/BOODY10", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"BOODY10","discount_percent":10}`))
	})
	mux.HandleFunc("/promo-codes/check/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	client := testClient(t, mux)

	info, err := client.CheckPromoCode(context.Background(), "BOODY10")
	require.NoError(t, err)
	assert.Equal(t, "BOODY10", info.Code)
	assert.InDelta(t, 10, info.DiscountPercent, 0.001)

	_, err = client.CheckPromoCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrPromoInvalid)
}

func TestSubmitOrder(t *testing.T) {
	var got OrderRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	client := testClient(t, mux)

	err := client.SubmitOrder(context.Background(), &OrderRequest{
		Items:          []OrderRequestItem{{ProductID: 7, Size: "small", Quantity: 2, UnitPrice: 405}},
		DeliveryOption: "delivery",
		DeliveryCost:   200,
		Total:          1010,
	})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(7), got.Items[0].ProductID)
	assert.InDelta(t, 1010, got.Total, 0.001)
}

func TestSubmitOrderUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client := testClient(t, mux)

	err := client.SubmitOrder(context.Background(), &OrderRequest{Total: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
