package repository

import (
	"context"
	"errors"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OpenShiftIndex is the partial unique index allowing one open shift per cashier.
const OpenShiftIndex = "idx_shift_reports_open_cashier"

const (
	recentOrdersJoinTable = "shift_report_recent_orders"
	refundsJoinTable      = "shift_report_refunds"
)

// ShiftFilter narrows shift listings; nil fields match everything.
type ShiftFilter struct {
	BranchID  *uuid.UUID
	CashierID *uuid.UUID
	Limit     int
}

type ShiftRepository interface {
	CreateTx(tx *gorm.DB, s *model.ShiftReport) error
	// FindOpenByCashierTx returns the cashier's open shift locked for the rest
	// of tx, or nil when there is none.
	FindOpenByCashierTx(tx *gorm.DB, cashierID uuid.UUID) (*model.ShiftReport, error)
	FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*model.ShiftReport, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ShiftReport, error)
	// FindLatestStarted returns the cashier's most recent shift whose start
	// lies in [from, until).
	FindLatestStarted(ctx context.Context, cashierID uuid.UUID, from, until time.Time) (*model.ShiftReport, error)
	// SaveSnapshotTx overwrites the report's totals, end time and derived lists.
	SaveSnapshotTx(tx *gorm.DB, s *model.ShiftReport) error
	List(ctx context.Context, filter ShiftFilter) ([]model.ShiftReport, error)
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) CreateTx(tx *gorm.DB, s *model.ShiftReport) error {
	err := tx.Omit(clause.Associations).Create(s).Error
	if isUniqueViolation(err, OpenShiftIndex) {
		return apierror.InvalidState("shift already started")
	}
	return translate(err)
}

func (r *shiftRepo) FindOpenByCashierTx(tx *gorm.DB, cashierID uuid.UUID) (*model.ShiftReport, error) {
	var s model.ShiftReport
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cashier_id = ? AND shift_end IS NULL", cashierID).
		Order("shift_start DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *shiftRepo) FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*model.ShiftReport, error) {
	var s model.ShiftReport
	err := r.db.WithContext(ctx).
		Where("cashier_id = ? AND shift_end IS NULL", cashierID).
		Order("shift_start DESC").
		First(&s).Error
	if err != nil {
		return nil, notFound(err, "no open shift for cashier %s", cashierID)
	}
	return &s, nil
}

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ShiftReport, error) {
	var s model.ShiftReport
	if err := r.withChildren(r.db.WithContext(ctx)).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "shift %s not found", id)
	}
	return &s, nil
}

func (r *shiftRepo) FindLatestStarted(ctx context.Context, cashierID uuid.UUID, from, until time.Time) (*model.ShiftReport, error) {
	var s model.ShiftReport
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("cashier_id = ? AND shift_start >= ? AND shift_start < ?", cashierID, from, until).
		Order("shift_start DESC").
		First(&s).Error
	if err != nil {
		return nil, notFound(err, "no shift for cashier %s on %s", cashierID, from.Format(time.DateOnly))
	}
	return &s, nil
}

func (r *shiftRepo) SaveSnapshotTx(tx *gorm.DB, s *model.ShiftReport) error {
	err := tx.Model(&model.ShiftReport{}).Where("id = ?", s.ID).Updates(map[string]any{
		"shift_end":     s.ShiftEnd,
		"total_sales":   s.TotalSales,
		"total_refunds": s.TotalRefunds,
		"net_sale":      s.NetSale,
		"total_orders":  s.TotalOrders,
	}).Error
	if err != nil {
		return translate(err)
	}

	if err := tx.Where("shift_report_id = ?", s.ID).Delete(&model.ShiftPaymentSummary{}).Error; err != nil {
		return translate(err)
	}
	for i := range s.PaymentSummaries {
		s.PaymentSummaries[i].ShiftReportID = s.ID
	}
	if len(s.PaymentSummaries) > 0 {
		if err := tx.Create(&s.PaymentSummaries).Error; err != nil {
			return translate(err)
		}
	}

	if err := tx.Where("shift_report_id = ?", s.ID).Delete(&model.ShiftTopProduct{}).Error; err != nil {
		return translate(err)
	}
	for i := range s.TopSellingProducts {
		s.TopSellingProducts[i].ShiftReportID = s.ID
	}
	if len(s.TopSellingProducts) > 0 {
		if err := tx.Create(&s.TopSellingProducts).Error; err != nil {
			return translate(err)
		}
	}

	orderIDs := make([]uuid.UUID, len(s.RecentOrders))
	for i, o := range s.RecentOrders {
		orderIDs[i] = o.ID
	}
	if err := replaceLinks(tx, recentOrdersJoinTable, "order_id", s.ID, orderIDs); err != nil {
		return err
	}
	refundIDs := make([]uuid.UUID, len(s.Refunds))
	for i, rf := range s.Refunds {
		refundIDs[i] = rf.ID
	}
	return replaceLinks(tx, refundsJoinTable, "refund_id", s.ID, refundIDs)
}

// replaceLinks rewrites the many2many join rows of one report.
func replaceLinks(tx *gorm.DB, table, column string, reportID uuid.UUID, ids []uuid.UUID) error {
	if err := tx.Exec("DELETE FROM "+table+" WHERE shift_report_id = ?", reportID).Error; err != nil {
		return translate(err)
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]map[string]any, len(ids))
	for i, id := range ids {
		rows[i] = map[string]any{"shift_report_id": reportID, column: id}
	}
	return translate(tx.Table(table).Create(rows).Error)
}

func (r *shiftRepo) List(ctx context.Context, filter ShiftFilter) ([]model.ShiftReport, error) {
	q := r.db.WithContext(ctx).Model(&model.ShiftReport{})
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.CashierID != nil {
		q = q.Where("cashier_id = ?", *filter.CashierID)
	}
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var shifts []model.ShiftReport
	err := q.Preload("PaymentSummaries").
		Order("shift_start DESC").
		Limit(limit).
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) withChildren(q *gorm.DB) *gorm.DB {
	return q.Preload("PaymentSummaries").
		Preload("TopSellingProducts", func(db *gorm.DB) *gorm.DB { return db.Order("rank ASC") }).
		Preload("RecentOrders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("RecentOrders.Items.Product").
		Preload("Refunds", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
}
