package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the branch-local stock count for one product. A branch may not
// track a product at all, in which case no row exists.
type Inventory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_branch"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_branch;index"`
	Quantity  int       `gorm:"not null;default:0;check:chk_inventories_quantity_non_negative,quantity >= 0"`
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (Inventory) TableName() string { return "inventories" }
