package domain

import "github.com/shopspring/decimal"

const (
	AggregateOrder = "order"

	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
)

type OrderItemEvent struct {
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderCreatedEvent struct {
	OrderID int64            `json:"order_id"`
	UserID  int64            `json:"user_id"`
	Total   decimal.Decimal  `json:"total"`
	Items   []OrderItemEvent `json:"items"`
}

type OrderCancelledEvent struct {
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}
