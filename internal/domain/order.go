package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return status, true
	}

	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an order may move from s to target.
// Statuses only move forward one step at a time; any non-terminal status
// may be cancelled.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}

	return nextStatus[s] == target
}

type Order struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"userId"`
	Status          OrderStatus     `db:"status" json:"status"`
	Total           decimal.Decimal `db:"total" json:"total"`
	Address         string          `db:"address" json:"address"`
	PaymentMethod   *string         `db:"payment_method" json:"paymentMethod,omitempty"`
	PaymentIntentID *string         `db:"payment_intent_id" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

type OrderItem struct {
	ID          int64            `db:"id" json:"id"`
	OrderID     int64            `db:"order_id" json:"orderId"`
	ProductID   int64            `db:"product_id" json:"productId"`
	Quantity    int32            `db:"quantity" json:"quantity"`
	Price       decimal.Decimal  `db:"price" json:"price"`
	VariantInfo VariantSelection `db:"variant_info" json:"variantInfo"`
	ProductName string           `json:"productName,omitempty"`
}

type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

type OrderItemInput struct {
	ProductID   int64            `json:"productId" validate:"gt=0"`
	Quantity    int32            `json:"quantity" validate:"gte=1"`
	Price       decimal.Decimal  `json:"price"`
	VariantInfo VariantSelection `json:"variantInfo"`
	// CartItemID is set when the item was checked out from a cart line.
	CartItemID int64 `json:"-"`
}

type CreateOrderInput struct {
	UserID        int64
	Address       string           `json:"address"`
	Items         []OrderItemInput `json:"items" validate:"dive"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod *string          `json:"paymentMethod"`
}

func Subtotal(items []OrderItemInput) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}

	return subtotal
}

// TotalWithTax applies taxRate to subtotal and rounds to cents.
func TotalWithTax(subtotal, taxRate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(1).Add(taxRate)).Round(2)
}
