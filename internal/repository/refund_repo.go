package repository

import (
	"context"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefundFilter narrows refund listings; nil fields match everything.
type RefundFilter struct {
	BranchID  *uuid.UUID
	CashierID *uuid.UUID
	From      *time.Time // created_at >= From
	To        *time.Time // created_at <= To
	Limit     int
}

type RefundRepository interface {
	CreateTx(tx *gorm.DB, rf *model.Refund) error
	List(ctx context.Context, filter RefundFilter) ([]model.Refund, error)
	ListTx(tx *gorm.DB, filter RefundFilter) ([]model.Refund, error)
}

type refundRepo struct{ db *gorm.DB }

func NewRefundRepository(db *gorm.DB) RefundRepository { return &refundRepo{db: db} }

func (r *refundRepo) CreateTx(tx *gorm.DB, rf *model.Refund) error {
	err := tx.Create(rf).Error
	if isUniqueViolation(err, "idx_refunds_order_id") {
		return apierror.InvalidState("order %s is already refunded", rf.OrderID)
	}
	return translate(err)
}

func (r *refundRepo) List(ctx context.Context, filter RefundFilter) ([]model.Refund, error) {
	return r.ListTx(r.db.WithContext(ctx), filter)
}

func (r *refundRepo) ListTx(tx *gorm.DB, filter RefundFilter) ([]model.Refund, error) {
	q := tx.Model(&model.Refund{})
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.CashierID != nil {
		q = q.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var refunds []model.Refund
	err := q.Order("created_at DESC").Find(&refunds).Error
	return refunds, translate(err)
}
