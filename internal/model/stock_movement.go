package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement types.
const (
	MovementSale   = "sale"
	MovementRefund = "refund"
)

// StockMovement records every change the ledger applies to a product's stock.
// Rows are append-only.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchID    *uuid.UUID `gorm:"type:uuid;index"`
	Type        string     `gorm:"type:varchar(20);not null"`
	Quantity    int        `gorm:"not null"` // positive = in, negative = out
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid;index"` // order id
	CreatedAt   time.Time
}
