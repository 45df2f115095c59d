package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShiftReport is a cashier's work session. It is open while ShiftEnd is nil;
// a cashier has at most one open report (partial unique index, see infra).
type ShiftReport struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShiftStart   time.Time       `gorm:"not null;index"`
	ShiftEnd     *time.Time      `gorm:"index"`
	TotalSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalRefunds decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	NetSale      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalOrders  int             `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	PaymentSummaries   []ShiftPaymentSummary `gorm:"foreignKey:ShiftReportID;constraint:OnDelete:CASCADE"`
	TopSellingProducts []ShiftTopProduct     `gorm:"foreignKey:ShiftReportID;constraint:OnDelete:CASCADE"`
	RecentOrders       []Order               `gorm:"many2many:shift_report_recent_orders"`
	Refunds            []Refund              `gorm:"many2many:shift_report_refunds"`
}

// Open reports whether the shift has not been closed yet.
func (s *ShiftReport) Open() bool { return s.ShiftEnd == nil }

// ShiftPaymentSummary is the per-payment-type breakdown of a shift.
type ShiftPaymentSummary struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftReportID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentType      PaymentType     `gorm:"type:varchar(16);not null"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionCount int             `gorm:"not null"`
	Percentage       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
}

// ShiftTopProduct is one entry of a shift's best-sellers list.
type ShiftTopProduct struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftReportID uuid.UUID `gorm:"type:uuid;not null;index"`
	Rank          int       `gorm:"not null"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null"`
	Name          string    `gorm:"not null"`
	SKU           string    `gorm:"column:sku"`
	QuantitySold  int       `gorm:"not null"`
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Store{},
		&Branch{},
		&User{},
		&Customer{},
		&Category{},
		&Product{},
		&Inventory{},
		&Order{},
		&OrderItem{},
		&Refund{},
		&StockMovement{},
		&ShiftReport{},
		&ShiftPaymentSummary{},
		&ShiftTopProduct{},
	}
}
