package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	// PaymentType defaults to CASH when empty.
	PaymentType string          `json:"payment_type" validate:"omitempty,oneof=CASH CARD ONLINE"`
	Discount    decimal.Decimal `json:"discount"     validate:"min=0"`
	Note        *string         `json:"note"         validate:"omitempty,max=500"`
	CustomerID  *string         `json:"customer_id"  validate:"omitempty,uuid"`
}

type RefundOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// OrderListQuery is bound from the query string of GET /v1/orders.
// Empty values match everything.
type OrderListQuery struct {
	BranchID    string `form:"branch_id"    validate:"omitempty,uuid"`
	CustomerID  string `form:"customer_id"  validate:"omitempty,uuid"`
	CashierID   string `form:"cashier_id"   validate:"omitempty,uuid"`
	PaymentType string `form:"payment_type" validate:"omitempty,oneof=CASH CARD ONLINE"`
	Status      string `form:"status"       validate:"omitempty,oneof=COMPLETED REFUNDED"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	BranchID    string              `json:"branch_id"`
	CashierID   string              `json:"cashier_id"`
	CustomerID  *string             `json:"customer_id"`
	Items       []OrderItemResponse `json:"items"`
	Discount    decimal.Decimal     `json:"discount"`
	Note        *string             `json:"note"`
	PaymentType string              `json:"payment_type"`
	Status      string              `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	CreatedAt   string              `json:"created_at"`
}

type RefundResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	Reason      string          `json:"reason"`
	Amount      decimal.Decimal `json:"amount"`
	CashierID   string          `json:"cashier_id"`
	BranchID    string          `json:"branch_id"`
	PaymentType string          `json:"payment_type"`
	CreatedAt   string          `json:"created_at"`
}

type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}
