package dto

import "github.com/shopspring/decimal"

// ShiftByDateQuery is bound from GET /v1/shifts/by-date. An empty cashier_id
// means the caller.
type ShiftByDateQuery struct {
	CashierID string `form:"cashier_id" validate:"omitempty,uuid"`
	Date      string `form:"date"       validate:"required,datetime=2006-01-02"`
}

// ShiftListQuery is bound from GET /v1/shifts.
type ShiftListQuery struct {
	BranchID  string `form:"branch_id"  validate:"omitempty,uuid"`
	CashierID string `form:"cashier_id" validate:"omitempty,uuid"`
}

type PaymentSummaryResponse struct {
	PaymentType      string          `json:"payment_type"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       decimal.Decimal `json:"percentage"`
}

type TopProductResponse struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	QuantitySold int    `json:"quantity_sold"`
}

type ShiftResponse struct {
	ID                 string                   `json:"id"`
	CashierID          string                   `json:"cashier_id"`
	BranchID           string                   `json:"branch_id"`
	ShiftStart         string                   `json:"shift_start"`
	ShiftEnd           *string                  `json:"shift_end"`
	Open               bool                     `json:"open"`
	TotalSales         decimal.Decimal          `json:"total_sales"`
	TotalRefunds       decimal.Decimal          `json:"total_refunds"`
	NetSale            decimal.Decimal          `json:"net_sale"`
	TotalOrders        int                      `json:"total_orders"`
	PaymentSummaries   []PaymentSummaryResponse `json:"payment_summaries"`
	TopSellingProducts []TopProductResponse     `json:"top_selling_products"`
	RecentOrders       []OrderResponse          `json:"recent_orders"`
	Refunds            []RefundResponse         `json:"refunds"`
}
