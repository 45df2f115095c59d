package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Refund is the immutable record written when an order is refunded.
// Amount always equals the refunded order's TotalAmount.
type Refund struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Reason      string          `gorm:"not null;default:''"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashierID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_refunds_cashier_created"`
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentType PaymentType     `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_refunds_cashier_created"`
}
