package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus moves COMPLETED -> REFUNDED once and never back.
type OrderStatus string

const (
	OrderCompleted OrderStatus = "COMPLETED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

// PaymentType is how an order was paid.
type PaymentType string

const (
	PaymentCash   PaymentType = "CASH"
	PaymentCard   PaymentType = "CARD"
	PaymentOnline PaymentType = "ONLINE"
)

// Valid reports whether p is a known payment type.
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// Order is a completed sale. Items are written and deleted together with it.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashierID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_cashier_created"`
	CustomerID  *uuid.UUID      `gorm:"type:uuid;index"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Note        *string
	PaymentType PaymentType     `gorm:"type:varchar(16);not null;default:'CASH'"`
	Status      OrderStatus     `gorm:"type:varchar(16);not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_orders_cashier_created"`
	UpdatedAt   time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one line of an order. UnitPrice and Subtotal are snapshots
// taken when the order was created and never recomputed.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null;check:chk_order_items_quantity_positive,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
