package service

import (
	"context"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/metrics"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultRecentOrders = 5

type OrderService interface {
	CreateOrder(ctx context.Context, callerID uuid.UUID, req dto.CreateOrderRequest) (*model.Order, error)
	RefundOrder(ctx context.Context, callerID, orderID uuid.UUID, reason string) (*model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// ListOrders returns the branch's orders matching every non-nil filter field.
	ListOrders(ctx context.Context, branchID uuid.UUID, filter repository.OrderFilter) ([]model.Order, error)
	ListByCashier(ctx context.Context, cashierID uuid.UUID) ([]model.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	ListTodayByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Order, error)
	ListRecentByBranch(ctx context.Context, branchID uuid.UUID, limit int) ([]model.Order, error)
	ListRefundsByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Refund, error)
}

type orderService struct {
	txr       repository.Transactor
	callers   CallerResolver
	products  repository.ProductRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	refunds   repository.RefundRepository
	ledger    *InventoryLedger
	events    EventPublisher
	opts      options
}

func NewOrderService(
	txr repository.Transactor,
	callers CallerResolver,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	refunds repository.RefundRepository,
	ledger *InventoryLedger,
	events EventPublisher,
	opts ...Option,
) OrderService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &orderService{
		txr:       txr,
		callers:   callers,
		products:  products,
		customers: customers,
		orders:    orders,
		refunds:   refunds,
		ledger:    ledger,
		events:    events,
		opts:      buildOptions(opts),
	}
}

// ── CreateOrder ───────────────────────────────────────────────────────────────
// One transaction:
//   1. resolve every product (NotFound)
//   2. snapshot unit price and subtotal per line
//   3. reserve stock for all lines (InsufficientStock aborts everything)
//   4. persist order + items as COMPLETED
// The order.created event goes out after commit.

func (s *orderService) CreateOrder(ctx context.Context, callerID uuid.UUID, req dto.CreateOrderRequest) (*model.Order, error) {
	cashier, err := s.callers.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	branchID, err := cashierBranch(cashier)
	if err != nil {
		return nil, err
	}

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}
	if req.Discount.IsNegative() {
		return nil, apierror.InvalidState("discount cannot be negative")
	}
	paymentType := model.PaymentType(req.PaymentType)
	if paymentType == "" {
		paymentType = model.PaymentCash
	}
	if !paymentType.Valid() {
		return nil, apierror.InvalidState("unknown payment type %q", req.PaymentType)
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, apierror.NotFound("customer %q not found", *req.CustomerID)
		}
		if _, err := s.customers.FindByID(ctx, id); err != nil {
			return nil, err
		}
		customerID = &id
	}

	var order *model.Order
	txErr := runTx(ctx, s.txr, func(tx *gorm.DB) error {
		o := &model.Order{
			ID:          uuid.New(),
			BranchID:    branchID,
			CashierID:   cashier.ID,
			CustomerID:  customerID,
			Discount:    req.Discount,
			Note:        req.Note,
			PaymentType: paymentType,
			Status:      model.OrderCompleted,
			CreatedAt:   s.opts.now(),
		}

		subtotal := decimal.Zero
		for _, line := range lines {
			p, err := s.products.FindByIDTx(tx, line.ProductID)
			if err != nil {
				return err
			}
			lineTotal := p.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			o.Items = append(o.Items, model.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.SellingPrice,
				Subtotal:  lineTotal,
				Product:   p,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		if err := s.ledger.ReserveTx(tx, branchID, lines, &o.ID); err != nil {
			return err
		}

		o.TotalAmount = decimal.Max(decimal.Zero, subtotal.Sub(req.Discount))
		if err := s.orders.CreateTx(tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	metrics.OrdersCreated.WithLabelValues(string(order.PaymentType)).Inc()
	log.Info().
		Str("order_id", order.ID.String()).
		Str("cashier_id", order.CashierID.String()).
		Str("branch_id", order.BranchID.String()).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("order created")
	s.publish(ctx, TopicOrderCreated, order)

	return order, nil
}

// mergeLines validates quantities and folds repeated products into one line,
// keeping first-seen order.
func mergeLines(items []dto.OrderItemRequest) ([]StockLine, error) {
	if len(items) == 0 {
		return nil, apierror.InvalidState("order has no items")
	}
	var lines []StockLine
	idx := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apierror.NotFound("product %q not found", it.ProductID)
		}
		if it.Quantity <= 0 {
			return nil, apierror.InvalidState("quantity for product %s must be positive", id)
		}
		if i, ok := idx[id]; ok {
			lines[i].Quantity += it.Quantity
			continue
		}
		idx[id] = len(lines)
		lines = append(lines, StockLine{ProductID: id, Quantity: it.Quantity})
	}
	return lines, nil
}

// ── RefundOrder ───────────────────────────────────────────────────────────────
// The status flip is a compare-and-swap, so of two concurrent refunds exactly
// one restores stock; the other fails with InvalidState.

func (s *orderService) RefundOrder(ctx context.Context, callerID, orderID uuid.UUID, reason string) (*model.Order, error) {
	caller, err := s.callers.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	txErr := runTx(ctx, s.txr, func(tx *gorm.DB) error {
		o, err := s.orders.FindByIDTx(tx, orderID)
		if err != nil {
			return err
		}
		if o.Status == model.OrderRefunded {
			return apierror.InvalidState("order %s is already refunded", o.ID)
		}

		now := s.opts.now()
		swapped, err := s.orders.MarkRefundedTx(tx, o.ID, now)
		if err != nil {
			return err
		}
		if !swapped {
			return apierror.InvalidState("order %s is already refunded", o.ID)
		}

		lines := make([]StockLine, len(o.Items))
		for i, it := range o.Items {
			lines[i] = StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
		}
		if err := s.ledger.ReleaseTx(tx, o.BranchID, lines, &o.ID); err != nil {
			return err
		}

		if err := s.refunds.CreateTx(tx, &model.Refund{
			OrderID:     o.ID,
			Reason:      reason,
			Amount:      o.TotalAmount,
			CashierID:   caller.ID,
			BranchID:    o.BranchID,
			PaymentType: o.PaymentType,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		o.Status = model.OrderRefunded
		o.UpdatedAt = now
		order = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	metrics.OrdersRefunded.Inc()
	log.Info().
		Str("order_id", order.ID.String()).
		Str("cashier_id", caller.ID.String()).
		Str("branch_id", order.BranchID.String()).
		Str("amount", order.TotalAmount.StringFixed(2)).
		Msg("order refunded")
	s.publish(ctx, TopicOrderRefunded, order)

	return order, nil
}

func (s *orderService) publish(ctx context.Context, topic string, o *model.Order) {
	if err := s.events.Publish(ctx, topic, newOrderEvent(o, s.opts.now())); err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("order_id", o.ID.String()).Msg("event publish failed")
	}
}

// ── Projections ───────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, branchID uuid.UUID, filter repository.OrderFilter) ([]model.Order, error) {
	filter.BranchID = &branchID
	return s.orders.List(ctx, filter)
}

func (s *orderService) ListByCashier(ctx context.Context, cashierID uuid.UUID) ([]model.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{CashierID: &cashierID})
}

func (s *orderService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{CustomerID: &customerID})
}

func (s *orderService) ListTodayByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Order, error) {
	from, until := dayBounds(s.opts.now(), s.opts.loc)
	return s.orders.List(ctx, repository.OrderFilter{BranchID: &branchID, From: &from, Until: &until})
}

func (s *orderService) ListRecentByBranch(ctx context.Context, branchID uuid.UUID, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultRecentOrders
	}
	return s.orders.List(ctx, repository.OrderFilter{BranchID: &branchID, Limit: limit})
}

func (s *orderService) ListRefundsByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Refund, error) {
	return s.refunds.List(ctx, repository.RefundFilter{BranchID: &branchID})
}
