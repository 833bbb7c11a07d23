package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nukesul/boody/internal/domain"
)

func fp(v float64) *float64 { return &v }

func TestBasePriceSinglePrice(t *testing.T) {
	p := &domain.Product{ID: 1, PriceSingle: fp(12)}

	// a single-price product yields the same value whatever size the
	// caller passes or omits
	assert.True(t, BasePrice(p, domain.SizeNone).Equal(decimal.NewFromInt(12)))
	assert.True(t, BasePrice(p, domain.SizeSmall).IsZero())

	p2 := &domain.Product{ID: 2, PriceSingle: fp(350.5)}
	assert.Equal(t, "350.5", BasePrice(p2, domain.SizeNone).String())
}

func TestBasePriceSizedTiers(t *testing.T) {
	p := &domain.Product{
		ID:          3,
		PriceSmall:  fp(390),
		PriceMedium: fp(490),
		PriceLarge:  fp(590),
	}

	assert.Equal(t, "390", BasePrice(p, domain.SizeSmall).String())
	assert.Equal(t, "490", BasePrice(p, domain.SizeMedium).String())
	assert.Equal(t, "590", BasePrice(p, domain.SizeLarge).String())

	// no size given: minimum of the present tiers
	assert.Equal(t, "390", BasePrice(p, domain.SizeNone).String())
}

func TestBasePriceMissingTier(t *testing.T) {
	p := &domain.Product{ID: 4, PriceMedium: fp(490)}

	assert.True(t, BasePrice(p, domain.SizeSmall).IsZero())
	assert.Equal(t, "490", BasePrice(p, domain.SizeNone).String())
}

func TestBasePriceUnpurchasable(t *testing.T) {
	p := &domain.Product{ID: 5}
	assert.True(t, BasePrice(p, domain.SizeNone).IsZero())
	assert.False(t, p.Purchasable())
}

func TestDiscountedPrice(t *testing.T) {
	base := decimal.NewFromInt(12)

	// d=m=0 keeps the base untouched
	assert.True(t, DiscountedPrice(base, 0, 0).Equal(base))

	// multiplicative, not additive
	got := DiscountedPrice(base, 10, 10)
	assert.Equal(t, "9.72", got.StringFixed(2))

	// full discount bottoms out at zero, never negative
	assert.True(t, DiscountedPrice(base, 100, 100).IsZero())
	assert.False(t, DiscountedPrice(base, 150, 0).IsNegative())
}

func TestDiscountedPriceMonotonic(t *testing.T) {
	base := decimal.NewFromFloat(100)
	prev := DiscountedPrice(base, 0, 0)
	for d := float64(5); d <= 100; d += 5 {
		cur := DiscountedPrice(base, d, 0)
		require.True(t, cur.LessThanOrEqual(prev), "discount %v should not raise the price", d)
		prev = cur
	}

	prev = DiscountedPrice(base, 30, 0)
	for m := float64(5); m <= 100; m += 5 {
		cur := DiscountedPrice(base, 30, m)
		require.True(t, cur.LessThanOrEqual(prev), "promo %v should not raise the price", m)
		prev = cur
	}
}

func TestDiscountedPriceClampsPercent(t *testing.T) {
	base := decimal.NewFromInt(10)
	assert.True(t, DiscountedPrice(base, -20, 0).Equal(base))
	assert.True(t, DiscountedPrice(base, 0, -5).Equal(base))
	assert.True(t, DiscountedPrice(base, 200, 0).IsZero())
}

func TestCatalogDiscountPercent(t *testing.T) {
	discounts := []domain.Discount{
		{ID: 1, ProductID: 7, DiscountPercent: 10},
		{ID: 2, ProductID: 7, DiscountPercent: 50}, // duplicate, ignored
		{ID: 3, ProductID: 8, DiscountPercent: 25},
	}

	assert.Equal(t, float64(10), CatalogDiscountPercent(discounts, 7))
	assert.Equal(t, float64(25), CatalogDiscountPercent(discounts, 8))
	assert.Equal(t, float64(0), CatalogDiscountPercent(discounts, 9))
}

func TestPriceRange(t *testing.T) {
	p := &domain.Product{
		ID:          7,
		PriceSmall:  fp(400),
		PriceMedium: fp(500),
		PriceLarge:  fp(600),
	}
	discounts := []domain.Discount{{ID: 1, ProductID: 7, DiscountPercent: 10}}

	min, max := PriceRange(p, discounts)
	assert.Equal(t, "360.00", min.StringFixed(2))
	assert.Equal(t, "540.00", max.StringFixed(2))

	single := &domain.Product{ID: 8, PriceSingle: fp(250)}
	min, max = PriceRange(single, nil)
	assert.True(t, min.Equal(max))
	assert.Equal(t, "250.00", min.StringFixed(2))
}
