package repository

import (
	"context"
	"time"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows order listings. Nil fields match everything; set fields
// combine with AND.
type OrderFilter struct {
	BranchID    *uuid.UUID
	CashierID   *uuid.UUID
	CustomerID  *uuid.UUID
	PaymentType *model.PaymentType
	Status      *model.OrderStatus
	From        *time.Time // created_at >= From
	To          *time.Time // created_at <= To
	Until       *time.Time // created_at < Until
	Limit       int        // 0 = unlimited
}

type OrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	// MarkRefundedTx flips COMPLETED to REFUNDED and reports whether this call
	// did it. A false result means the order was not COMPLETED any more.
	MarkRefundedTx(tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	ListTx(tx *gorm.DB, filter OrderFilter) ([]model.Order, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

// CreateTx writes the order row and then its items.
func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
		return translate(err)
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	if len(o.Items) == 0 {
		return nil
	}
	return translate(tx.Omit(clause.Associations).Create(&o.Items).Error)
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *orderRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	if err := tx.Preload("Items.Product").First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order %s not found", id)
	}
	return &o, nil
}

func (r *orderRepo) MarkRefundedTx(tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, model.OrderCompleted).
		Updates(map[string]any{"status": model.OrderRefunded, "updated_at": at})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	return r.ListTx(r.db.WithContext(ctx), filter)
}

func (r *orderRepo) ListTx(tx *gorm.DB, filter OrderFilter) ([]model.Order, error) {
	q := tx.Model(&model.Order{})
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.CashierID != nil {
		q = q.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PaymentType != nil {
		q = q.Where("payment_type = ?", *filter.PaymentType)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Until != nil {
		q = q.Where("created_at < ?", *filter.Until)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var orders []model.Order
	err := q.Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, translate(err)
}
