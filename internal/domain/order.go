package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DeliveryOptionPickup   = "pickup"
	DeliveryOptionDelivery = "delivery"
)

const (
	OrderStatusSubmitted = "submitted"
	OrderStatusFailed    = "failed"
)

// Order is the local copy of a placed order, kept for export and
// metrics. The authoritative record lives in the upstream API.
type Order struct {
	ID             int64           `gorm:"primaryKey" json:"id,string" csv:"id"`
	SessionID      string          `gorm:"index;size:64" json:"-" csv:"-"`
	Status         string          `gorm:"size:32" json:"status" csv:"status"`
	DeliveryOption string          `gorm:"size:32" json:"delivery_option" csv:"delivery_option"`
	DeliveryCost   decimal.Decimal `gorm:"type:numeric(14,2)" json:"delivery_cost" csv:"delivery_cost"`
	PromoCode      string          `gorm:"size:64" json:"promo_code" csv:"promo_code"`
	PromoPercent   float64         `json:"promo_percent" csv:"promo_percent"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(14,2)" json:"subtotal" csv:"subtotal"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2)" json:"total" csv:"total"`
	CreatedAt      time.Time       `json:"created_at" csv:"created_at"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID" json:"items" csv:"-"`
}

func (Order) TableName() string {
	return "checkout_order"
}

type OrderItem struct {
	ID          int64           `gorm:"primaryKey" json:"id,string"`
	OrderID     int64           `gorm:"index" json:"order_id,string"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        SizeTag         `gorm:"size:16" json:"size"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2)" json:"unit_price"`
}

func (OrderItem) TableName() string {
	return "checkout_order_item"
}
