package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. StockQuantity is the global stock across all
// branches; branch-local counts live in Inventory.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID     *uuid.UUID `gorm:"type:uuid;index"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"index;not null"`
	SKU         string     `gorm:"column:sku;uniqueIndex;not null"`
	Brand       *string
	Description *string
	// ListPrice is the printed (MRP) price; SellingPrice is what the register charges.
	ListPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock_quantity >= 0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}

// Category groups products inside a store catalog.
type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID     *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the plural the rest of the schema uses.
func (Category) TableName() string { return "categories" }
