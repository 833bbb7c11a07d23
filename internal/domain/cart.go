package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SizeTag is the cart line size slot: small/medium/large, or empty for
// single-price items.
type SizeTag string

const (
	SizeNone   SizeTag = ""
	SizeSmall  SizeTag = "small"
	SizeMedium SizeTag = "medium"
	SizeLarge  SizeTag = "large"
)

func (s SizeTag) Valid() bool {
	switch s {
	case SizeNone, SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// CartItem is a server-synced cart line. FinalPrice is the unit price
// snapshotted at add time (base price with the catalog discount
// applied); quantity changes never recompute it.
type CartItem struct {
	ID          int64           `gorm:"primaryKey" json:"id,string"`
	SessionID   string          `gorm:"index;size:64" json:"-"`
	ProductID   int64           `gorm:"index" json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        SizeTag         `gorm:"size:16" json:"size"`
	Quantity    int             `json:"quantity"`
	FinalPrice  decimal.Decimal `gorm:"type:numeric(14,2)" json:"final_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_item"
}

// LineTotal is FinalPrice * Quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.FinalPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
