package service

import (
	"context"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/metrics"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ShiftService runs each cashier's NO_SHIFT -> OPEN -> CLOSED cycle.
type ShiftService interface {
	StartShift(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error)
	EndShift(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error)
	// GetCurrentShiftProgress computes the open shift's aggregates up to now
	// without writing anything.
	GetCurrentShiftProgress(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error)
	// RefreshShiftProgress computes the same snapshot and stores it on the
	// still-open report.
	RefreshShiftProgress(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error)
	GetShiftByCashierAndDate(ctx context.Context, cashierID uuid.UUID, date time.Time) (*model.ShiftReport, error)
	GetShift(ctx context.Context, id uuid.UUID) (*model.ShiftReport, error)
	ListShiftsByBranch(ctx context.Context, branchID uuid.UUID) ([]model.ShiftReport, error)
	ListShiftsByCashier(ctx context.Context, cashierID uuid.UUID) ([]model.ShiftReport, error)
}

type shiftService struct {
	txr     repository.Transactor
	callers CallerResolver
	users   repository.UserRepository
	shifts  repository.ShiftRepository
	orders  repository.OrderRepository
	refunds repository.RefundRepository
	opts    options
}

func NewShiftService(
	txr repository.Transactor,
	callers CallerResolver,
	users repository.UserRepository,
	shifts repository.ShiftRepository,
	orders repository.OrderRepository,
	refunds repository.RefundRepository,
	opts ...Option,
) ShiftService {
	return &shiftService{
		txr:     txr,
		callers: callers,
		users:   users,
		shifts:  shifts,
		orders:  orders,
		refunds: refunds,
		opts:    buildOptions(opts),
	}
}

// ── StartShift ────────────────────────────────────────────────────────────────
// The cashier row lock serializes concurrent starts; the partial unique index
// on open shifts rejects anything that slips past it.

func (s *shiftService) StartShift(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error) {
	cashier, err := s.callers.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	branchID, err := cashierBranch(cashier)
	if err != nil {
		return nil, err
	}

	var report *model.ShiftReport
	txErr := runTx(ctx, s.txr, func(tx *gorm.DB) error {
		if err := s.users.LockByIDTx(tx, cashier.ID); err != nil {
			return err
		}
		open, err := s.shifts.FindOpenByCashierTx(tx, cashier.ID)
		if err != nil {
			return err
		}
		if open != nil {
			return apierror.InvalidState("shift already started at %s", open.ShiftStart.In(s.opts.loc).Format(time.DateTime))
		}

		r := &model.ShiftReport{
			ID:         uuid.New(),
			CashierID:  cashier.ID,
			BranchID:   branchID,
			ShiftStart: s.opts.now(),
		}
		if err := s.shifts.CreateTx(tx, r); err != nil {
			return err
		}
		report = r
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("shift_id", report.ID.String()).
		Str("cashier_id", report.CashierID.String()).
		Str("branch_id", report.BranchID.String()).
		Msg("shift started")
	return report, nil
}

// ── EndShift ──────────────────────────────────────────────────────────────────

func (s *shiftService) EndShift(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error) {
	report, err := s.persistSnapshot(ctx, callerID, true)
	if err != nil {
		return nil, err
	}

	metrics.ShiftsClosed.Inc()
	log.Info().
		Str("shift_id", report.ID.String()).
		Str("cashier_id", report.CashierID.String()).
		Str("total_sales", report.TotalSales.StringFixed(2)).
		Str("net_sale", report.NetSale.StringFixed(2)).
		Int("total_orders", report.TotalOrders).
		Msg("shift closed")
	return report, nil
}

func (s *shiftService) RefreshShiftProgress(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error) {
	return s.persistSnapshot(ctx, callerID, false)
}

// persistSnapshot recomputes the open shift under the cashier lock and
// stores it; closing also sets ShiftEnd, which makes the report final.
func (s *shiftService) persistSnapshot(ctx context.Context, callerID uuid.UUID, closing bool) (*model.ShiftReport, error) {
	var report *model.ShiftReport
	txErr := runTx(ctx, s.txr, func(tx *gorm.DB) error {
		if err := s.users.LockByIDTx(tx, callerID); err != nil {
			return err
		}
		r, err := s.shifts.FindOpenByCashierTx(tx, callerID)
		if err != nil {
			return err
		}
		if r == nil {
			return apierror.NotFound("no open shift for cashier %s", callerID)
		}

		end := s.opts.now()
		orders, err := s.orders.ListTx(tx, repository.OrderFilter{CashierID: &callerID, From: &r.ShiftStart, To: &end})
		if err != nil {
			return err
		}
		refunds, err := s.refunds.ListTx(tx, repository.RefundFilter{CashierID: &callerID, From: &r.ShiftStart, To: &end})
		if err != nil {
			return err
		}

		applySummary(r, Summarize(orders, refunds, s.opts.summary), refunds)
		if closing {
			r.ShiftEnd = &end
		}
		if err := s.shifts.SaveSnapshotTx(tx, r); err != nil {
			return err
		}
		report = r
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return report, nil
}

// ── GetCurrentShiftProgress ───────────────────────────────────────────────────

func (s *shiftService) GetCurrentShiftProgress(ctx context.Context, callerID uuid.UUID) (*model.ShiftReport, error) {
	r, err := s.shifts.FindOpenByCashier(ctx, callerID)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	orders, err := s.orders.List(ctx, repository.OrderFilter{CashierID: &callerID, From: &r.ShiftStart, To: &now})
	if err != nil {
		return nil, err
	}
	refunds, err := s.refunds.List(ctx, repository.RefundFilter{CashierID: &callerID, From: &r.ShiftStart, To: &now})
	if err != nil {
		return nil, err
	}

	applySummary(r, Summarize(orders, refunds, s.opts.summary), refunds)
	return r, nil
}

// ── Lookups ───────────────────────────────────────────────────────────────────

func (s *shiftService) GetShiftByCashierAndDate(ctx context.Context, cashierID uuid.UUID, date time.Time) (*model.ShiftReport, error) {
	from, until := dayBounds(date, s.opts.loc)
	return s.shifts.FindLatestStarted(ctx, cashierID, from, until)
}

func (s *shiftService) GetShift(ctx context.Context, id uuid.UUID) (*model.ShiftReport, error) {
	return s.shifts.FindByID(ctx, id)
}

func (s *shiftService) ListShiftsByBranch(ctx context.Context, branchID uuid.UUID) ([]model.ShiftReport, error) {
	return s.shifts.List(ctx, repository.ShiftFilter{BranchID: &branchID})
}

func (s *shiftService) ListShiftsByCashier(ctx context.Context, cashierID uuid.UUID) ([]model.ShiftReport, error) {
	return s.shifts.List(ctx, repository.ShiftFilter{CashierID: &cashierID})
}

// applySummary copies a Summary onto the report, replacing its derived lists.
func applySummary(r *model.ShiftReport, sum Summary, refunds []model.Refund) {
	r.TotalSales = sum.TotalSales
	r.TotalRefunds = sum.TotalRefunds
	r.NetSale = sum.NetSale
	r.TotalOrders = sum.TotalOrders

	r.PaymentSummaries = make([]model.ShiftPaymentSummary, len(sum.PaymentSummaries))
	for i, ps := range sum.PaymentSummaries {
		r.PaymentSummaries[i] = model.ShiftPaymentSummary{
			ShiftReportID:    r.ID,
			PaymentType:      ps.PaymentType,
			TotalAmount:      ps.TotalAmount,
			TransactionCount: ps.TransactionCount,
			Percentage:       ps.Percentage,
		}
	}

	r.TopSellingProducts = make([]model.ShiftTopProduct, len(sum.TopProducts))
	for i, p := range sum.TopProducts {
		r.TopSellingProducts[i] = model.ShiftTopProduct{
			ShiftReportID: r.ID,
			Rank:          i + 1,
			ProductID:     p.ProductID,
			Name:          p.Name,
			SKU:           p.SKU,
			QuantitySold:  p.Quantity,
		}
	}

	r.RecentOrders = sum.RecentOrders
	r.Refunds = refunds
}
