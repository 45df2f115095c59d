package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is the payload of order.created and order.refunded.
type OrderEvent struct {
	OrderID     string           `json:"order_id"`
	BranchID    string           `json:"branch_id"`
	CashierID   string           `json:"cashier_id"`
	Status      string           `json:"status"`
	PaymentType string           `json:"payment_type"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Items       []OrderEventItem `json:"items"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// LowStockAlert is the payload mailed when products fall below the threshold.
type LowStockAlert struct {
	BranchID  string          `json:"branch_id"`
	OrderID   string          `json:"order_id"`
	Threshold int             `json:"threshold"`
	Products  []LowStockEntry `json:"products"`
}

type LowStockEntry struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stock_quantity"`
}
