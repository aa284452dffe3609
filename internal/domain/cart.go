package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID          int64            `db:"id" json:"id"`
	UserID      int64            `db:"user_id" json:"userId"`
	ProductID   int64            `db:"product_id" json:"productId"`
	Quantity    int32            `db:"quantity" json:"quantity"`
	VariantInfo VariantSelection `db:"variant_info" json:"variantInfo"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
}

// CartLine is a cart item joined with its product.
type CartLine struct {
	CartItem
	Product Product `json:"product"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

type Cart struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func NewCart(lines []CartLine) *Cart {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	if lines == nil {
		lines = []CartLine{}
	}

	return &Cart{Items: lines, Subtotal: subtotal}
}

type WatchlistItem struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	ProductID int64     `db:"product_id" json:"productId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	Product   *Product  `json:"product,omitempty"`
}
