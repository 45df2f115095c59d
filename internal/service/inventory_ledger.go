package service

import (
	"context"
	"sort"

	"retailpos/internal/apierror"
	"retailpos/internal/metrics"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockLine is one product quantity to reserve or release.
type StockLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// InventoryLedger is the only writer of product stock and branch inventory.
// Global stock and the branch row (when the branch tracks the product) move
// together inside the caller's transaction.
//
// The *Tx methods join an enclosing transaction; the others open their own.
type InventoryLedger struct {
	txr       repository.Transactor
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewInventoryLedger(txr repository.Transactor, products repository.ProductRepository, movements repository.StockMovementRepository) *InventoryLedger {
	return &InventoryLedger{txr: txr, products: products, movements: movements}
}

// Decrement removes qty of a product from global stock and from the branch.
func (l *InventoryLedger) Decrement(ctx context.Context, productID, branchID uuid.UUID, qty int) error {
	return runTx(ctx, l.txr, func(tx *gorm.DB) error {
		return l.DecrementTx(tx, productID, branchID, qty, nil)
	})
}

// Increment puts qty of a product back.
func (l *InventoryLedger) Increment(ctx context.Context, productID, branchID uuid.UUID, qty int) error {
	return runTx(ctx, l.txr, func(tx *gorm.DB) error {
		return l.IncrementTx(tx, productID, branchID, qty, nil)
	})
}

// Reserve decrements every line or none of them.
func (l *InventoryLedger) Reserve(ctx context.Context, branchID uuid.UUID, lines []StockLine) error {
	return runTx(ctx, l.txr, func(tx *gorm.DB) error {
		return l.ReserveTx(tx, branchID, lines, nil)
	})
}

// Release increments every line or none of them.
func (l *InventoryLedger) Release(ctx context.Context, branchID uuid.UUID, lines []StockLine) error {
	return runTx(ctx, l.txr, func(tx *gorm.DB) error {
		return l.ReleaseTx(tx, branchID, lines, nil)
	})
}

// DecrementTx fails with InsufficientStock when either the global stock or
// the branch row holds less than qty. Any write it made before failing is
// discarded with the enclosing transaction.
func (l *InventoryLedger) DecrementTx(tx *gorm.DB, productID, branchID uuid.UUID, qty int, orderID *uuid.UUID) error {
	if qty <= 0 {
		return apierror.InvalidState("quantity must be positive, got %d", qty)
	}

	after, ok, err := l.products.AdjustStockTx(tx, productID, -qty)
	if err != nil {
		return err
	}
	if !ok {
		metrics.StockRejections.Inc()
		return apierror.InsufficientStock("insufficient stock for product %s", productID)
	}

	inv, err := l.products.LockInventoryTx(tx, productID, branchID)
	if err != nil {
		return err
	}
	if inv != nil {
		if inv.Quantity < qty {
			metrics.StockRejections.Inc()
			return apierror.InsufficientStock("insufficient stock for product %s at branch %s", productID, branchID)
		}
		if err := l.products.SetInventoryQuantityTx(tx, inv.ID, inv.Quantity-qty); err != nil {
			return err
		}
	}

	return l.record(tx, productID, branchID, model.MovementSale, -qty, after, orderID)
}

// IncrementTx always succeeds for a positive qty. A branch without an
// inventory row for the product is left without one.
func (l *InventoryLedger) IncrementTx(tx *gorm.DB, productID, branchID uuid.UUID, qty int, orderID *uuid.UUID) error {
	if qty <= 0 {
		return apierror.InvalidState("quantity must be positive, got %d", qty)
	}

	after, ok, err := l.products.AdjustStockTx(tx, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.NotFound("product %s not found", productID)
	}

	inv, err := l.products.LockInventoryTx(tx, productID, branchID)
	if err != nil {
		return err
	}
	if inv != nil {
		if err := l.products.SetInventoryQuantityTx(tx, inv.ID, inv.Quantity+qty); err != nil {
			return err
		}
	}

	return l.record(tx, productID, branchID, model.MovementRefund, qty, after, orderID)
}

// ReserveTx decrements the lines in ascending product id order so that
// concurrent orders lock rows in the same sequence.
func (l *InventoryLedger) ReserveTx(tx *gorm.DB, branchID uuid.UUID, lines []StockLine, orderID *uuid.UUID) error {
	for _, line := range lockOrder(lines) {
		if err := l.DecrementTx(tx, line.ProductID, branchID, line.Quantity, orderID); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseTx increments the lines in the same order ReserveTx uses.
func (l *InventoryLedger) ReleaseTx(tx *gorm.DB, branchID uuid.UUID, lines []StockLine, orderID *uuid.UUID) error {
	for _, line := range lockOrder(lines) {
		if err := l.IncrementTx(tx, line.ProductID, branchID, line.Quantity, orderID); err != nil {
			return err
		}
	}
	return nil
}

func (l *InventoryLedger) record(tx *gorm.DB, productID, branchID uuid.UUID, kind string, delta, after int, orderID *uuid.UUID) error {
	branch := branchID
	reason := "order sale"
	if kind == model.MovementRefund {
		reason = "order refund"
	}
	return l.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		BranchID:    &branch,
		Type:        kind,
		Quantity:    delta,
		StockBefore: after - delta,
		StockAfter:  after,
		Reason:      reason,
		ReferenceID: orderID,
	})
}

func lockOrder(lines []StockLine) []StockLine {
	sorted := make([]StockLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})
	return sorted
}
