package repository

import (
	"context"
	"errors"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository reads the catalog and applies stock changes. Only the
// inventory ledger calls the *Tx stock methods.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	CreateInventory(ctx context.Context, inv *model.Inventory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindInventory(ctx context.Context, productID, branchID uuid.UUID) (*model.Inventory, error)
	// AdjustStockTx adds delta to the global stock unless the result would be
	// negative. It returns the new stock and whether the row was updated.
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, bool, error)
	// LockInventoryTx returns the branch row locked until tx ends, or nil when
	// the branch does not track the product.
	LockInventoryTx(tx *gorm.DB, productID, branchID uuid.UUID) (*model.Inventory, error)
	SetInventoryQuantityTx(tx *gorm.DB, inventoryID uuid.UUID, qty int) error
	ListBelowStock(ctx context.Context, ids []uuid.UUID, threshold int) ([]model.Product, error)
	CountBelowStock(ctx context.Context, threshold int) (int64, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) CreateInventory(ctx context.Context, inv *model.Inventory) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "product %s not found", id)
	}
	return &p, nil
}

func (r *productRepo) FindInventory(ctx context.Context, productID, branchID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		First(&inv).Error
	if err != nil {
		return nil, notFound(err, "inventory for product %s not found", productID)
	}
	return &inv, nil
}

func (r *productRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, bool, error) {
	var updated []model.Product
	res := tx.Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock_quantity"}}}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if res.Error != nil {
		return 0, false, translate(res.Error)
	}
	if res.RowsAffected == 0 || len(updated) == 0 {
		return 0, false, nil
	}
	return updated[0].StockQuantity, true, nil
}

func (r *productRepo) LockInventoryTx(tx *gorm.DB, productID, branchID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (r *productRepo) SetInventoryQuantityTx(tx *gorm.DB, inventoryID uuid.UUID, qty int) error {
	return translate(tx.Model(&model.Inventory{}).
		Where("id = ?", inventoryID).
		Update("quantity", qty).Error)
}

func (r *productRepo) ListBelowStock(ctx context.Context, ids []uuid.UUID, threshold int) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND stock_quantity < ?", ids, threshold).
		Order("stock_quantity ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) CountBelowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("stock_quantity < ?", threshold).
		Count(&n).Error
	return n, err
}
