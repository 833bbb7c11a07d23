package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nukesul/boody/internal/domain"
)

// Package pricing implements the storefront price rules: tiered base
// prices, multiplicative catalog/promo discounts and display
// formatting. All functions are pure.

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// BasePrice returns the unit price before discounts.
//
// When size is given the matching tier is returned, or zero if the
// product has no such tier. Without a size the single price wins when
// present; otherwise the minimum of the tiers that exist is used, so a
// listing can show a "from" price without forcing a size choice.
func BasePrice(p *domain.Product, size domain.SizeTag) decimal.Decimal {
	switch size {
	case domain.SizeSmall:
		return fromPtr(p.PriceSmall)
	case domain.SizeMedium:
		return fromPtr(p.PriceMedium)
	case domain.SizeLarge:
		return fromPtr(p.PriceLarge)
	}

	if p.PriceSingle != nil {
		return fromPtr(p.PriceSingle)
	}

	min := zero
	for _, tier := range []*float64{p.PriceSmall, p.PriceMedium, p.PriceLarge} {
		if tier == nil {
			continue
		}
		v := decimal.NewFromFloat(*tier)
		if min.IsZero() || v.LessThan(min) {
			min = v
		}
	}
	return min
}

// DiscountedPrice applies the catalog discount and promo percentages
// multiplicatively to base. Percentages are clamped to [0,100]; the
// result is never negative.
func DiscountedPrice(base decimal.Decimal, discountPercent, promoPercent float64) decimal.Decimal {
	if base.IsNegative() {
		return zero
	}
	price := base.
		Mul(hundred.Sub(ClampPercent(discountPercent))).Div(hundred).
		Mul(hundred.Sub(ClampPercent(promoPercent))).Div(hundred)
	if price.IsNegative() {
		return zero
	}
	return price
}

// CatalogDiscountPercent finds the discount for a product. The first
// match wins when duplicates exist.
func CatalogDiscountPercent(discounts []domain.Discount, productID int64) float64 {
	for _, d := range discounts {
		if d.ProductID == productID {
			return d.DiscountPercent
		}
	}
	return 0
}

// PriceRange is the discounted min/max across a product's price tiers,
// used for "from X to Y" listings.
func PriceRange(p *domain.Product, discounts []domain.Discount) (min, max decimal.Decimal) {
	pct := CatalogDiscountPercent(discounts, p.ID)
	for _, tier := range []*float64{p.PriceSmall, p.PriceMedium, p.PriceLarge, p.PriceSingle} {
		if tier == nil {
			continue
		}
		v := DiscountedPrice(decimal.NewFromFloat(*tier), pct, 0)
		if min.IsZero() && max.IsZero() {
			min, max = v, v
			continue
		}
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}
	return min, max
}

// ClampPercent forces a percentage into [0,100].
func ClampPercent(pct float64) decimal.Decimal {
	if pct < 0 {
		return zero
	}
	if pct > 100 {
		return hundred
	}
	return decimal.NewFromFloat(pct)
}

func fromPtr(v *float64) decimal.Decimal {
	if v == nil {
		return zero
	}
	return decimal.NewFromFloat(*v)
}
