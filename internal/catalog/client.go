package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/json-iterator/go/extra"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	// the upstream API encodes some numeric columns as strings
	extra.RegisterFuzzyDecoders()
}

var (
	// ErrPromoInvalid marks a promo code the upstream rejected:
	// unknown, inactive or expired.
	ErrPromoInvalid = errors.New("invalid promo code")
)

// Client talks to the upstream catalog API. It is safe for concurrent
// use; every call is a single request-response round trip.
type Client struct {
	baseURL string
	timeout time.Duration
}

func NewClient(cfg config.RemoteConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{baseURL: cfg.BaseURL, timeout: timeout}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// getJSON fetches path and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	var (
		code int
		body []byte
	)
	err := gout.GET(c.url(path)).
		WithContext(ctx).
		SetTimeout(c.timeout).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return errors.Errorf("unexpected status %d", code)
	}
	return json.Unmarshal(body, out)
}

func (c *Client) FetchBranches(ctx context.Context) ([]domain.Branch, error) {
	var out []domain.Branch
	if err := c.getJSON(ctx, "/branches", &out); err != nil {
		return nil, errors.Wrap(err, "load branches")
	}
	return out, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.getJSON(ctx, "/categories", &out); err != nil {
		return nil, errors.Wrap(err, "load categories")
	}
	return out, nil
}

func (c *Client) FetchSubcategories(ctx context.Context) ([]domain.Subcategory, error) {
	var out []domain.Subcategory
	if err := c.getJSON(ctx, "/subcategories", &out); err != nil {
		return nil, errors.Wrap(err, "load subcategories")
	}
	return out, nil
}

func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.getJSON(ctx, "/products", &out); err != nil {
		return nil, errors.Wrap(err, "load products")
	}
	return out, nil
}

func (c *Client) FetchDiscounts(ctx context.Context) ([]domain.Discount, error) {
	var out []domain.Discount
	if err := c.getJSON(ctx, "/discounts", &out); err != nil {
		return nil, errors.Wrap(err, "load discounts")
	}
	return out, nil
}

func (c *Client) FetchStories(ctx context.Context) ([]domain.Story, error) {
	var out []domain.Story
	if err := c.getJSON(ctx, "/stories", &out); err != nil {
		return nil, errors.Wrap(err, "load stories")
	}
	return out, nil
}

// CheckPromoCode validates a promo code against the upstream endpoint.
// Any non-200 answer is reported as ErrPromoInvalid so callers can
// show the inline "invalid promo" message.
func (c *Client) CheckPromoCode(ctx context.Context, code string) (*domain.PromoInfo, error) {
	var (
		status int
		body   []byte
	)
	err := gout.GET(c.url("/promo-codes/check/" + code)).
		WithContext(ctx).
		SetTimeout(c.timeout).
		Code(&status).
		BindBody(&body).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "check promo code")
	}
	if status != http.StatusOK {
		return nil, ErrPromoInvalid
	}
	var info domain.PromoInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.Wrap(err, "check promo code")
	}
	if info.Code == "" {
		info.Code = code
	}
	return &info, nil
}

// OrderRequest is the order submission payload.
type OrderRequest struct {
	Items []OrderRequestItem `json:"items"`

	DeliveryOption string  `json:"delivery_option"`
	DeliveryCost   float64 `json:"delivery_cost"`
	PromoCode      string  `json:"promo_code,omitempty"`
	Total          float64 `json:"total"`
}

type OrderRequestItem struct {
	ProductID int64   `json:"product_id"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// SubmitOrder posts an order. There is no retry; a failure is terminal
// for this attempt and the caller keeps the cart intact.
func (c *Client) SubmitOrder(ctx context.Context, order *OrderRequest) error {
	var code int
	err := gout.POST(c.url("/orders")).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetJSON(order).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "submit order")
	}
	if code < 200 || code >= 300 {
		return errors.Errorf("submit order: unexpected status %d", code)
	}
	return nil
}

// AuthResult is the upstream login answer.
type AuthResult struct {
	Token string                 `json:"token"`
	User  map[string]interface{} `json:"user"`
}

func (c *Client) login(ctx context.Context, path, username, password string) (*AuthResult, error) {
	var (
		code int
		body []byte
	)
	err := gout.POST(c.url(path)).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetJSON(gout.H{"username": username, "password": password}).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "login")
	}
	if code != http.StatusOK {
		return nil, errors.Errorf("login failed with status %d", code)
	}
	var out AuthResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "login")
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	return c.login(ctx, "/login", username, password)
}

func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AuthResult, error) {
	return c.login(ctx, "/admin/login", username, password)
}

// Register creates a storefront account upstream and returns the same
// token shape Login does, so the caller can sign the user in directly.
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	var (
		code int
		body []byte
	)
	err := gout.POST(c.url("/register")).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetJSON(gout.H{"username": username, "password": password}).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "register")
	}
	if code < 200 || code >= 300 {
		return nil, errors.Errorf("register failed with status %d", code)
	}
	var out AuthResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "register")
	}
	return &out, nil
}

// ProductImage streams one image through the upstream proxy endpoint.
func (c *Client) ProductImage(ctx context.Context, key string) ([]byte, string, error) {
	var (
		code int
		body []byte
		hdr  struct {
			ContentType string `header:"Content-Type"`
		}
	)
	err := gout.GET(c.url("/product-image/" + key)).
		WithContext(ctx).
		SetTimeout(c.timeout).
		Code(&code).
		BindHeader(&hdr).
		BindBody(&body).
		Do()
	if err != nil {
		return nil, "", errors.Wrap(err, "load product image")
	}
	if code != http.StatusOK {
		return nil, "", errors.Errorf("load product image: status %d", code)
	}
	ctype := hdr.ContentType
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return body, ctype, nil
}

func bearer(token string) string {
	return fmt.Sprintf("Bearer %s", token)
}

// FetchAll loads every storefront collection concurrently and joins
// before returning. A failure of any one fetch aborts the whole load;
// the returned error names the resource that failed, nothing is
// silently defaulted to empty.
func (c *Client) FetchAll(ctx context.Context) (*domain.Catalog, error) {
	var cat domain.Catalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		cat.Branches, err = c.FetchBranches(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.Categories, err = c.FetchCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.Subcategories, err = c.FetchSubcategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.Products, err = c.FetchProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.Discounts, err = c.FetchDiscounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.Stories, err = c.FetchStories(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &cat, nil
}
