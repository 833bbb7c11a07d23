package domain

// Wire entities served by the upstream catalog API. Field names follow
// the remote snake_case payloads.

type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Subcategory struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

// Product carries either per-size prices or a single price. A product
// is purchasable when at least one of the four is present.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	BranchID      int64    `json:"branch_id"`
	CategoryID    int64    `json:"category_id"`
	SubcategoryID *int64   `json:"sub_category_id"`
	PriceSmall    *float64 `json:"price_small"`
	PriceMedium   *float64 `json:"price_medium"`
	PriceLarge    *float64 `json:"price_large"`
	PriceSingle   *float64 `json:"price_single"`
	Image         string   `json:"image"`
}

// Purchasable reports whether any price tier is set.
func (p *Product) Purchasable() bool {
	return p.PriceSmall != nil || p.PriceMedium != nil ||
		p.PriceLarge != nil || p.PriceSingle != nil
}

// MultiSize reports whether the product uses small/medium/large tiers.
func (p *Product) MultiSize() bool {
	return p.PriceSmall != nil || p.PriceMedium != nil || p.PriceLarge != nil
}

type Discount struct {
	ID              int64   `json:"id"`
	ProductID       int64   `json:"product_id"`
	DiscountPercent float64 `json:"discount_percent"`
}

type PromoCode struct {
	ID              int64   `json:"id"`
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount_percent"`
	ExpiresAt       string  `json:"expires_at"`
	IsActive        bool    `json:"is_active"`
}

type Story struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

// PromoInfo is the upstream answer to a promo-code check.
type PromoInfo struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Catalog is one consistent load of every storefront collection.
type Catalog struct {
	Branches      []Branch
	Categories    []Category
	Subcategories []Subcategory
	Products      []Product
	Discounts     []Discount
	Stories       []Story
}
