package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item as served by the backend.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Category      string           `json:"category"`
	ImageURL      *string          `json:"image_url,omitempty"`
	IsNew         bool             `json:"is_new"`
	IsSale        bool             `json:"is_sale"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"review_count"`
	StockQuantity int              `json:"stock_quantity"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CartLineItem is a product snapshot paired with a quantity.
type CartLineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price * quantity using the snapshotted price.
func (c CartLineItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
